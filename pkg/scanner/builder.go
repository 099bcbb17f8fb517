package scanner

import "errors"

var errNoCurrentState = errors.New("transition declared before any state")

// Builder provides a fluent API for declaring tables.
//
//	table, err := scanner.NewBuilder().
//		State("start").
//		On(scanner.Char('"'), "read", scanner.Skip()).
//		Otherwise("start", scanner.WithAdvance(scanner.AdvanceChar())).
//		State("read").
//		On(scanner.Char('"'), scanner.Exit, scanner.Skip()).
//		Otherwise("read", scanner.Collect()).
//		Build()
type Builder struct {
	defs []StateDef
	err  error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// State starts a new state. Subsequent transitions are added to it.
func (b *Builder) State(name string) *Builder {
	b.defs = append(b.defs, StateDef{Name: name})
	return b
}

// On appends a transition to the current state.
func (b *Builder) On(m Matcher, next string, opts ...TransitionOption) *Builder {
	return b.add(On(m, next, opts...))
}

// Otherwise appends a Default transition to the current state.
func (b *Builder) Otherwise(next string, opts ...TransitionOption) *Builder {
	return b.add(Otherwise(next, opts...))
}

// Transition appends a prepared transition to the current state.
func (b *Builder) Transition(tr Transition) *Builder {
	return b.add(tr)
}

func (b *Builder) add(tr Transition) *Builder {
	if len(b.defs) == 0 {
		if b.err == nil {
			b.err = newConfigError("", -1, "%v", errNoCurrentState)
		}
		return b
	}
	cur := &b.defs[len(b.defs)-1]
	cur.Transitions = append(cur.Transitions, tr)
	return b
}

// Build validates the declared states and returns the table.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	return Build(b.defs...)
}

// Definitions returns a copy of the declared states.
func (b *Builder) Definitions() []StateDef {
	out := make([]StateDef, len(b.defs))
	for i, d := range b.defs {
		out[i] = StateDef{Name: d.Name, Transitions: append([]Transition(nil), d.Transitions...)}
	}
	return out
}
