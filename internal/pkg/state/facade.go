package state

import (
	"github.com/michd/mmpd-sub000/internal/pkg/focus"
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

// Facade unifies the MIDI state tracker and the focused-window lookup
// behind the query surface the evaluation engine uses.
type Facade struct {
	tracker *Tracker
	focus   focus.Adapter
}

func NewFacade(tracker *Tracker, focusAdapter focus.Adapter) *Facade {
	return &Facade{tracker: tracker, focus: focusAdapter}
}

// Update folds one message into the tracked MIDI state.
func (f *Facade) Update(msg midi.Message) {
	f.tracker.Update(msg)
}

// MatchesScope checks the focused window against a macro scope. A nil or
// empty scope always matches. When the focus adapter has no window
// information the scope matches as well; scope guards fail open rather
// than disable every scoped macro when the focus backend is broken.
func (f *Facade) MatchesScope(scope *macro.Scope) bool {
	scope = scope.Normalize()
	if scope == nil {
		return true
	}

	window := f.focus.FocusedWindow()
	if window == nil {
		return true
	}

	if scope.WindowName != nil && !scope.WindowName.Matches(window.WindowName) {
		return false
	}

	if scope.WindowClass != nil {
		var any bool
		for _, class := range window.WindowClass {
			if scope.WindowClass.Matches(class) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if !matchesOptField(scope.ExecutablePath, window.ExecutablePath) {
		return false
	}
	if !matchesOptField(scope.ExecutableBasename, window.ExecutableBasename) {
		return false
	}

	return true
}

// matchesOptField treats an empty window field as absent.
func matchesOptField(m *match.String, value string) bool {
	if m == nil {
		return true
	}
	if value == "" {
		return false
	}
	return m.Matches(value)
}

// MatchesPrecondition evaluates the underlying MIDI query against the
// tracked state and applies the invert flag.
func (f *Facade) MatchesPrecondition(p macro.Precondition) bool {
	return f.tracker.Matches(p.Midi) != p.Invert
}
