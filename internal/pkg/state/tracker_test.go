package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

func numPtr(m match.Number) *match.Number {
	return &m
}

func noteOn(channel, key uint8) midi.Message {
	return midi.Message{Type: midi.MessageNoteOn, Channel: channel, Key: key, Velocity: 64}
}

func noteOff(channel, key uint8) midi.Message {
	return midi.Message{Type: midi.MessageNoteOff, Channel: channel, Key: key}
}

func TestTrackerNotesOn(t *testing.T) {
	tr := NewTracker()

	held := macro.MidiPrecondition{
		Kind:    macro.PreconditionNoteOn,
		Channel: numPtr(match.Val(0)),
		Key:     numPtr(match.Val(60)),
	}

	assert.False(t, tr.Matches(held))

	tr.Update(noteOn(0, 60))
	assert.True(t, tr.Matches(held))

	// releasing another key leaves the held one alone
	tr.Update(noteOff(0, 61))
	assert.True(t, tr.Matches(held))

	tr.Update(noteOff(0, 60))
	assert.False(t, tr.Matches(held))

	// note off for a key that was never on is not an error
	tr.Update(noteOff(3, 10))
	assert.False(t, tr.Matches(held))
}

func TestTrackerNoteOnIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Update(noteOn(0, 60))
	tr.Update(noteOn(0, 60))

	any := macro.MidiPrecondition{Kind: macro.PreconditionNoteOn}
	assert.True(t, tr.Matches(any))

	// one note off is enough to clear a doubled note on
	tr.Update(noteOff(0, 60))
	assert.False(t, tr.Matches(any))
}

func TestTrackerControlOverwrite(t *testing.T) {
	tr := NewTracker()
	tr.Update(midi.Message{Type: midi.MessageControlChange, Channel: 0, Control: 7, Value: 127})

	high := macro.MidiPrecondition{
		Kind:    macro.PreconditionControl,
		Channel: numPtr(match.Val(0)),
		Control: numPtr(match.Val(7)),
		Value:   numPtr(match.Range(uptr(100), nil)),
	}
	assert.True(t, tr.Matches(high))

	tr.Update(midi.Message{Type: midi.MessageControlChange, Channel: 0, Control: 7, Value: 32})
	assert.False(t, tr.Matches(high))
}

func TestTrackerProgramAndPitchBend(t *testing.T) {
	tr := NewTracker()
	tr.Update(midi.Message{Type: midi.MessageProgramChange, Channel: 2, Program: 9})
	tr.Update(midi.Message{Type: midi.MessagePitchBendChange, Channel: 1, Value: 9000})

	assert.True(t, tr.Matches(macro.MidiPrecondition{
		Kind:    macro.PreconditionProgram,
		Channel: numPtr(match.Val(2)),
		Program: numPtr(match.Val(9)),
	}))
	assert.False(t, tr.Matches(macro.MidiPrecondition{
		Kind:    macro.PreconditionProgram,
		Channel: numPtr(match.Val(3)),
	}))

	assert.True(t, tr.Matches(macro.MidiPrecondition{
		Kind:  macro.PreconditionPitchBend,
		Value: numPtr(match.Val(9000)),
	}))
}

func TestTrackerIgnoresOtherMessages(t *testing.T) {
	tr := NewTracker()
	tr.Update(midi.Message{Type: midi.MessageOther})
	tr.Update(midi.Message{Type: midi.MessagePolyAftertouch, Channel: 0, Key: 60, Value: 10})
	tr.Update(midi.Message{Type: midi.MessageChannelAftertouch, Channel: 0, Value: 10})

	assert.False(t, tr.Matches(macro.MidiPrecondition{Kind: macro.PreconditionNoteOn}))
	assert.False(t, tr.Matches(macro.MidiPrecondition{Kind: macro.PreconditionControl}))
	assert.False(t, tr.Matches(macro.MidiPrecondition{Kind: macro.PreconditionProgram}))
	assert.False(t, tr.Matches(macro.MidiPrecondition{Kind: macro.PreconditionPitchBend}))
}

func TestTrackerAbsentMatchersMatchAnything(t *testing.T) {
	tr := NewTracker()
	tr.Update(noteOn(5, 42))
	assert.True(t, tr.Matches(macro.MidiPrecondition{Kind: macro.PreconditionNoteOn}))
	assert.True(t, tr.Matches(macro.MidiPrecondition{
		Kind: macro.PreconditionNoteOn,
		Key:  numPtr(match.Val(42)),
	}))
}
