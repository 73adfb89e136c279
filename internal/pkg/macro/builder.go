package macro

import "errors"

var (
	ErrNoMatchEvents = errors.New("macro needs at least one matching event")
	ErrNoActions     = errors.New("macro needs at least one action")
)

// Builder assembles a Macro stepwise; the config processor feeds it field
// by field as it walks the document. Build freezes the value.
type Builder struct {
	m Macro
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Name(name string) *Builder {
	b.m.Name = name
	return b
}

func (b *Builder) MatchEvent(e EventMatcher) *Builder {
	b.m.MatchEvents = append(b.m.MatchEvents, e)
	return b
}

func (b *Builder) Precondition(p Precondition) *Builder {
	b.m.Preconditions = append(b.m.Preconditions, p)
	return b
}

func (b *Builder) Action(a Action) *Builder {
	b.m.Actions = append(b.m.Actions, a)
	return b
}

// Scope attaches the enclosing scope; empty scopes collapse to none.
func (b *Builder) Scope(s *Scope) *Builder {
	b.m.Scope = s.Normalize()
	return b
}

// Build validates the required fields and returns the frozen macro.
func (b *Builder) Build() (Macro, error) {
	if len(b.m.MatchEvents) == 0 {
		return Macro{}, ErrNoMatchEvents
	}
	if len(b.m.Actions) == 0 {
		return Macro{}, ErrNoActions
	}
	return b.m, nil
}
