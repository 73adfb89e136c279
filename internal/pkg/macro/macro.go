// Package macro holds the declarative rule model: what to match and what
// to do. Values are built once by the config processor and stay immutable
// until the whole set is replaced on reload.
package macro

import (
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

// MidiEventMatcher is a predicate over a single incoming MIDI message.
// Type must agree with the message's variant tag; each non-nil field matcher
// must accept its field. Nil field matchers accept anything.
type MidiEventMatcher struct {
	Type     midi.MessageType
	Channel  *match.Number
	Key      *match.Number
	Velocity *match.Number
	Control  *match.Number
	Program  *match.Number
	Value    *match.Number
}

// Matches reports whether the matcher accepts msg.
func (m MidiEventMatcher) Matches(msg midi.Message) bool {
	if m.Type != msg.Type {
		return false
	}
	switch msg.Type {
	case midi.MessageNoteOff, midi.MessageNoteOn:
		return match.MatchesOpt(m.Channel, uint32(msg.Channel)) &&
			match.MatchesOpt(m.Key, uint32(msg.Key)) &&
			match.MatchesOpt(m.Velocity, uint32(msg.Velocity))
	case midi.MessagePolyAftertouch:
		return match.MatchesOpt(m.Channel, uint32(msg.Channel)) &&
			match.MatchesOpt(m.Key, uint32(msg.Key)) &&
			match.MatchesOpt(m.Value, uint32(msg.Value))
	case midi.MessageControlChange:
		return match.MatchesOpt(m.Channel, uint32(msg.Channel)) &&
			match.MatchesOpt(m.Control, uint32(msg.Control)) &&
			match.MatchesOpt(m.Value, uint32(msg.Value))
	case midi.MessageProgramChange:
		return match.MatchesOpt(m.Channel, uint32(msg.Channel)) &&
			match.MatchesOpt(m.Program, uint32(msg.Program))
	case midi.MessageChannelAftertouch, midi.MessagePitchBendChange:
		return match.MatchesOpt(m.Channel, uint32(msg.Channel)) &&
			match.MatchesOpt(m.Value, uint32(msg.Value))
	default:
		return false
	}
}

// EventMatcher couples a MIDI event matcher with preconditions that must
// hold for this particular matcher to count.
type EventMatcher struct {
	Midi          MidiEventMatcher
	Preconditions []Precondition
}

// PreconditionKind selects the state collection a MidiPrecondition queries.
type PreconditionKind uint8

const (
	PreconditionNoteOn PreconditionKind = iota
	PreconditionControl
	PreconditionProgram
	PreconditionPitchBend
	PreconditionOther
)

// MidiPrecondition is an existential query against the accumulated MIDI
// state: it holds when at least one entry of the relevant collection
// satisfies every supplied field matcher.
type MidiPrecondition struct {
	Kind    PreconditionKind
	Channel *match.Number
	Key     *match.Number
	Control *match.Number
	Program *match.Number
	Value   *match.Number
}

// Precondition wraps a MidiPrecondition with an optional negation.
type Precondition struct {
	Invert bool
	Midi   MidiPrecondition
}

// Scope restricts a macro to desktop windows matching the supplied fields.
// A scope with no matcher set is never stored; builders collapse it to nil.
type Scope struct {
	WindowClass        *match.String
	WindowName         *match.String
	ExecutablePath     *match.String
	ExecutableBasename *match.String
}

func (s *Scope) isEmpty() bool {
	return s == nil ||
		(s.WindowClass == nil && s.WindowName == nil &&
			s.ExecutablePath == nil && s.ExecutableBasename == nil)
}

// Normalize collapses an empty scope to nil.
func (s *Scope) Normalize() *Scope {
	if s.isEmpty() {
		return nil
	}
	return s
}

// ControlAction steers the main loop from within a macro.
type ControlAction string

const (
	ControlReloadMacros ControlAction = "reload_macros"
	ControlRestart      ControlAction = "restart"
	ControlExit         ControlAction = "exit"
)

// SupportedControlActions enumerates valid control action names for the
// config processor.
var SupportedControlActions = map[ControlAction]bool{
	ControlReloadMacros: true,
	ControlRestart:      true,
	ControlExit:         true,
}

// ActionType selects the Action variant.
type ActionType uint8

const (
	ActionKeySequence ActionType = iota
	ActionEnterText
	ActionShell
	ActionWait
	ActionControl
)

// DefaultKeyDelay is the inter-key delay applied when an action does not
// set one, in microseconds.
const DefaultKeyDelay uint32 = 100

// Action is one executable step of a macro.
type Action struct {
	Type ActionType

	// ActionKeySequence, ActionEnterText
	Sequence string
	Text     string
	Count    int
	Delay    *uint32 // microseconds

	// ActionShell
	Command string
	Args    []string
	EnvVars [][2]string

	// ActionWait
	Duration uint64 // microseconds

	// ActionControl
	Control ControlAction
}

// Macro is one declarative rule: a disjunction of event matchers, optional
// guards, and the actions to run on match.
type Macro struct {
	Name          string
	MatchEvents   []EventMatcher
	Preconditions []Precondition
	Actions       []Action
	Scope         *Scope
}
