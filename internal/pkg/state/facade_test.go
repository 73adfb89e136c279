package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michd/mmpd-sub000/internal/pkg/focus"
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

func uptr(v uint32) *uint32 {
	return &v
}

func strPtr(m match.String) *match.String {
	return &m
}

// stubFocus serves a fixed window, or none.
type stubFocus struct {
	window *focus.Window
}

func (s stubFocus) FocusedWindow() *focus.Window {
	return s.window
}

func inkscapeWindow() *focus.Window {
	return &focus.Window{
		WindowClass:        []string{"inkscape", "Inkscape"},
		WindowName:         "drawing.svg - Inkscape",
		ExecutablePath:     "/usr/bin/inkscape",
		ExecutableBasename: "inkscape",
	}
}

func TestScopeAbsentOrEmptyAlwaysMatches(t *testing.T) {
	f := NewFacade(NewTracker(), stubFocus{window: inkscapeWindow()})

	assert.True(t, f.MatchesScope(nil))
	// all four matchers unset behaves identically to no scope
	assert.True(t, f.MatchesScope(&macro.Scope{}))
}

func TestScopeFailsOpenWithoutWindowInfo(t *testing.T) {
	f := NewFacade(NewTracker(), stubFocus{window: nil})

	scope := &macro.Scope{WindowClass: strPtr(match.Is("Inkscape"))}
	assert.True(t, f.MatchesScope(scope))
}

func TestScopeWindowClassAnyEntry(t *testing.T) {
	f := NewFacade(NewTracker(), stubFocus{window: inkscapeWindow()})

	// matches either the instance or the class string
	assert.True(t, f.MatchesScope(&macro.Scope{WindowClass: strPtr(match.Is("Inkscape"))}))
	assert.True(t, f.MatchesScope(&macro.Scope{WindowClass: strPtr(match.Is("inkscape"))}))
	assert.False(t, f.MatchesScope(&macro.Scope{WindowClass: strPtr(match.Is("firefox"))}))
}

func TestScopeConjunction(t *testing.T) {
	f := NewFacade(NewTracker(), stubFocus{window: inkscapeWindow()})

	assert.True(t, f.MatchesScope(&macro.Scope{
		WindowClass: strPtr(match.Is("Inkscape")),
		WindowName:  strPtr(match.EndsWith("Inkscape")),
	}))
	assert.False(t, f.MatchesScope(&macro.Scope{
		WindowClass: strPtr(match.Is("Inkscape")),
		WindowName:  strPtr(match.Is("GIMP")),
	}))
}

func TestScopeExecutableFields(t *testing.T) {
	f := NewFacade(NewTracker(), stubFocus{window: inkscapeWindow()})

	assert.True(t, f.MatchesScope(&macro.Scope{
		ExecutablePath:     strPtr(match.StartsWith("/usr/bin/")),
		ExecutableBasename: strPtr(match.Is("inkscape")),
	}))

	// window without executable info cannot satisfy an executable matcher
	bare := inkscapeWindow()
	bare.ExecutablePath = ""
	bare.ExecutableBasename = ""
	f = NewFacade(NewTracker(), stubFocus{window: bare})
	assert.False(t, f.MatchesScope(&macro.Scope{
		ExecutableBasename: strPtr(match.Is("inkscape")),
	}))
}

func TestPreconditionInvert(t *testing.T) {
	tr := NewTracker()
	f := NewFacade(tr, stubFocus{})

	conditions := []macro.MidiPrecondition{
		{Kind: macro.PreconditionNoteOn},
		{Kind: macro.PreconditionNoteOn, Key: numPtr(match.Val(60))},
		{Kind: macro.PreconditionControl, Value: numPtr(match.Range(uptr(100), nil))},
		{Kind: macro.PreconditionProgram},
		{Kind: macro.PreconditionPitchBend},
	}

	check := func() {
		for _, c := range conditions {
			plain := f.MatchesPrecondition(macro.Precondition{Midi: c})
			inverted := f.MatchesPrecondition(macro.Precondition{Invert: true, Midi: c})
			assert.Equal(t, plain, !inverted)
		}
	}

	check()
	f.Update(midi.Message{Type: midi.MessageNoteOn, Channel: 0, Key: 60, Velocity: 1})
	f.Update(midi.Message{Type: midi.MessageControlChange, Channel: 0, Control: 7, Value: 127})
	check()
	f.Update(midi.Message{Type: midi.MessageControlChange, Channel: 0, Control: 7, Value: 32})
	check()
}
