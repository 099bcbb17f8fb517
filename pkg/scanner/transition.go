package scanner

// CombineFunc folds matched text into the accumulator and returns the new
// accumulator value. acc is nil until something has been accumulated.
type CombineFunc func(acc any, text string) any

// MapFunc transforms matched text before it is appended to the result.
type MapFunc func(text string) string

// AdvanceFunc moves the cursor after a transition matched. It owns cursor
// movement entirely; the engine does not move the cursor around it.
type AdvanceFunc func(cur Cursor, m Match) error

type accumulateKind uint8

const (
	accumulateNone accumulateKind = iota
	accumulateMatch
	accumulateGroup
	accumulateCombine
	accumulateMap
)

// Accumulate describes what a transition appends to the result. The zero
// value accumulates nothing.
type Accumulate struct {
	kind    accumulateKind
	group   int
	combine CombineFunc
	mapper  MapFunc
}

// AccumulateMatch appends the whole matched text.
func AccumulateMatch() Accumulate {
	return Accumulate{kind: accumulateMatch}
}

// AccumulateGroup appends the text of capture group n of a regex match.
// Group 0 is the whole match.
func AccumulateGroup(n int) Accumulate {
	return Accumulate{kind: accumulateGroup, group: n}
}

// AccumulateWith replaces the accumulator with fn(acc, matched text).
func AccumulateWith(fn CombineFunc) Accumulate {
	return Accumulate{kind: accumulateCombine, combine: fn}
}

// AccumulateMap appends fn(matched text). Unlike AccumulateWith it writes
// into the existing result, so it stays linear over long inputs.
func AccumulateMap(fn MapFunc) Accumulate {
	return Accumulate{kind: accumulateMap, mapper: fn}
}

// IsZero reports whether nothing is accumulated.
func (a Accumulate) IsZero() bool { return a.kind == accumulateNone }

type advanceKind uint8

const (
	advanceNone advanceKind = iota
	advanceChar
	advanceMatch
	advanceGroup
	advanceFunc
)

// Advance describes how a transition moves the cursor. The zero value
// leaves the cursor where it is.
type Advance struct {
	kind  advanceKind
	group int
	fn    AdvanceFunc
}

// AdvanceChar moves the cursor by one character.
func AdvanceChar() Advance {
	return Advance{kind: advanceChar}
}

// AdvanceMatch moves the cursor to the end of the match.
func AdvanceMatch() Advance {
	return Advance{kind: advanceMatch}
}

// AdvanceGroup moves the cursor to the end of capture group n of a regex
// match. Group 0 is the whole match.
func AdvanceGroup(n int) Advance {
	return Advance{kind: advanceGroup, group: n}
}

// AdvanceWith hands cursor movement to fn.
func AdvanceWith(fn AdvanceFunc) Advance {
	return Advance{kind: advanceFunc, fn: fn}
}

// IsZero reports whether the cursor is left untouched.
func (a Advance) IsZero() bool { return a.kind == advanceNone }

// Transition is one entry of a state's ordered transition list.
type Transition struct {
	Match      Matcher
	Accumulate Accumulate
	Advance    Advance
	Next       string // state name or Exit
}

// TransitionOption configures a transition built with On.
type TransitionOption func(*Transition)

// On creates a transition to next taken when m accepts.
func On(m Matcher, next string, opts ...TransitionOption) Transition {
	t := Transition{Match: m, Next: next}
	for _, opt := range opts {
		if opt != nil {
			opt(&t)
		}
	}
	return t
}

// Otherwise creates a Default transition to next.
func Otherwise(next string, opts ...TransitionOption) Transition {
	return On(Default{}, next, opts...)
}

// WithAccumulate sets what a transition appends to the result.
func WithAccumulate(a Accumulate) TransitionOption {
	return func(t *Transition) { t.Accumulate = a }
}

// WithAdvance sets how a transition moves the cursor.
func WithAdvance(a Advance) TransitionOption {
	return func(t *Transition) { t.Advance = a }
}

// Collect accumulates the whole match and moves past it.
func Collect() TransitionOption {
	return func(t *Transition) {
		t.Accumulate = AccumulateMatch()
		t.Advance = AdvanceMatch()
	}
}

// Skip moves past the match without accumulating it.
func Skip() TransitionOption {
	return func(t *Transition) {
		t.Advance = AdvanceMatch()
	}
}
