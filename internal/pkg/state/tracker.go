// Package state maintains the running model of MIDI controller state and
// answers the scope and precondition queries the evaluation engine asks.
package state

import (
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

type noteKey struct {
	channel uint8
	key     uint8
}

type controlKey struct {
	channel uint8
	control uint8
}

// Tracker accumulates MIDI state from the message stream: the set of held
// notes, the last seen control values, programs and pitch bend per channel.
// It is mutated only by the main loop, before rule evaluation.
type Tracker struct {
	notesOn   map[noteKey]struct{}
	controls  map[controlKey]uint16
	programs  map[uint8]uint8
	pitchBend map[uint8]uint16
}

func NewTracker() *Tracker {
	return &Tracker{
		notesOn:   make(map[noteKey]struct{}),
		controls:  make(map[controlKey]uint16),
		programs:  make(map[uint8]uint8),
		pitchBend: make(map[uint8]uint16),
	}
}

// Update folds one message into the state. NoteOn inserts (idempotently),
// NoteOff removes if present, the value messages overwrite; everything else
// leaves the state untouched.
func (t *Tracker) Update(msg midi.Message) {
	switch msg.Type {
	case midi.MessageNoteOn:
		t.notesOn[noteKey{msg.Channel, msg.Key}] = struct{}{}
	case midi.MessageNoteOff:
		delete(t.notesOn, noteKey{msg.Channel, msg.Key})
	case midi.MessageControlChange:
		t.controls[controlKey{msg.Channel, msg.Control}] = msg.Value
	case midi.MessageProgramChange:
		t.programs[msg.Channel] = msg.Program
	case midi.MessagePitchBendChange:
		t.pitchBend[msg.Channel] = msg.Value
	}
}

// Matches answers a precondition query: does any entry of the relevant
// collection satisfy every supplied field matcher?
func (t *Tracker) Matches(p macro.MidiPrecondition) bool {
	switch p.Kind {
	case macro.PreconditionNoteOn:
		for note := range t.notesOn {
			if match.MatchesOpt(p.Channel, uint32(note.channel)) &&
				match.MatchesOpt(p.Key, uint32(note.key)) {
				return true
			}
		}
		return false

	case macro.PreconditionControl:
		for control, value := range t.controls {
			if match.MatchesOpt(p.Channel, uint32(control.channel)) &&
				match.MatchesOpt(p.Control, uint32(control.control)) &&
				match.MatchesOpt(p.Value, uint32(value)) {
				return true
			}
		}
		return false

	case macro.PreconditionProgram:
		for channel, program := range t.programs {
			if match.MatchesOpt(p.Channel, uint32(channel)) &&
				match.MatchesOpt(p.Program, uint32(program)) {
				return true
			}
		}
		return false

	case macro.PreconditionPitchBend:
		for channel, value := range t.pitchBend {
			if match.MatchesOpt(p.Channel, uint32(channel)) &&
				match.MatchesOpt(p.Value, uint32(value)) {
				return true
			}
		}
		return false

	default:
		// extensibility hook, nothing beyond midi is tracked yet
		return true
	}
}
