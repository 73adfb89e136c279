// Package engine evaluates incoming MIDI messages against the macro set
// and dispatches the actions of the first match.
package engine

import (
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
	"github.com/michd/mmpd-sub000/internal/pkg/state"
)

// Evaluator walks the macro list in declaration order and returns the
// first macro whose scope, preconditions and one of its event matchers
// all accept the message. Ties are impossible: first match wins.
type Evaluator struct {
	state *state.Facade
}

func NewEvaluator(st *state.Facade) *Evaluator {
	return &Evaluator{state: st}
}

// Evaluate returns the first matching macro, or nil when the message
// matches nothing and is to be ignored.
func (e *Evaluator) Evaluate(macros []macro.Macro, msg midi.Message) *macro.Macro {
	for i := range macros {
		m := &macros[i]

		if m.Scope != nil && !e.state.MatchesScope(m.Scope) {
			continue
		}
		if !e.preconditionsHold(m.Preconditions) {
			continue
		}

		for _, matcher := range m.MatchEvents {
			if !e.preconditionsHold(matcher.Preconditions) {
				continue
			}
			if matcher.Midi.Matches(msg) {
				return m
			}
		}
	}
	return nil
}

func (e *Evaluator) preconditionsHold(ps []macro.Precondition) bool {
	for _, p := range ps {
		if !e.state.MatchesPrecondition(p) {
			return false
		}
	}
	return true
}
