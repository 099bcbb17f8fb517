package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/scankit/pkg/logger"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 256

// Result is the outcome of a scan.
type Result struct {
	// Value is the accumulated value, or the fallback's value when the input
	// ran out. It is nil when nothing was accumulated.
	Value any
	// Found is false when the input ran out before Exit and no fallback was
	// supplied. This is the "no result" signal, not an error.
	Found bool
	// Exited reports whether the scan ended through an Exit transition.
	Exited bool
	// Pos is the cursor position when the scan stopped.
	Pos int
	// Steps is the number of transitions taken.
	Steps int
}

// Text returns Value when it is a string and "" otherwise.
func (r Result) Text() string {
	s, _ := r.Value.(string)
	return s
}

// accumulator keeps text in a builder so long scans append in amortized
// constant time. A combine function may replace it with any value.
type accumulator struct {
	buf   strings.Builder
	value any
	boxed bool
	set   bool
}

func (a *accumulator) current() any {
	switch {
	case !a.set:
		return nil
	case a.boxed:
		return a.value
	default:
		return a.buf.String()
	}
}

// appendText adds text to the accumulator. A []string accumulator gains an
// element; any other non-string value is rendered with fmt.Sprint first.
func (a *accumulator) appendText(s string) {
	a.set = true
	if a.boxed {
		if list, ok := a.value.([]string); ok {
			a.value = append(list, s)
			return
		}
		rendered := ""
		if a.value != nil {
			rendered = fmt.Sprint(a.value)
		}
		a.reset(rendered)
	}
	a.buf.WriteString(s)
}

func (a *accumulator) combine(fn CombineFunc, text string) {
	v := fn(a.current(), text)
	a.set = true
	if s, ok := v.(string); ok {
		a.reset(s)
		return
	}
	a.value = v
	a.boxed = true
}

func (a *accumulator) reset(s string) {
	a.buf = strings.Builder{}
	a.buf.WriteString(s)
	a.value = nil
	a.boxed = false
}

// Run scans cur starting in the initial state until an Exit transition is
// taken or the input is exhausted. The cursor is left where the scan
// stopped, which is also reported in Result.Pos.
//
// Within a state, regex transitions are tried first, then character
// transitions, then the default; inside each group the first declared
// transition that accepts wins.
func (t *Table) Run(ctx context.Context, cur Cursor, opts ...RunOption) (Result, error) {
	if cur == nil {
		return Result{}, ErrNilCursor
	}

	var cfg runConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	state := 0
	if cfg.start != "" {
		idx, ok := t.index[cfg.start]
		if !ok {
			return Result{Pos: cur.Pos()}, fmt.Errorf("%w: '%s'", ErrUnknownState, cfg.start)
		}
		state = idx
	}

	trace := cfg.logger != nil && cfg.logger.Enabled(ctx, slog.LevelDebug)

	var acc accumulator
	steps := 0
	for {
		if cur.Done() {
			res := Result{Pos: cur.Pos(), Steps: steps}
			if cfg.fallback != nil {
				res.Value = cfg.fallback(acc.current())
				res.Found = true
			}
			if trace {
				cfg.logger.DebugContext(ctx, "scan reached end of input",
					logger.State(t.states[state].name),
					logger.Steps(steps),
					slog.Bool("found", res.Found),
				)
			}
			return res, nil
		}

		if steps%cancelCheckInterval == 0 && steps > 0 {
			if err := ctx.Err(); err != nil {
				return Result{Pos: cur.Pos(), Steps: steps}, fmt.Errorf("scan interrupted in state '%s': %w", t.states[state].name, err)
			}
		}

		st := &t.states[state]
		if cfg.maxSteps > 0 && steps >= cfg.maxSteps {
			return Result{Pos: cur.Pos(), Steps: steps}, &StepLimitError{State: st.name, Pos: cur.Pos(), Limit: cfg.maxSteps}
		}

		tr, m, ok := st.selectTransition(cur)
		if !ok {
			return Result{Pos: cur.Pos(), Steps: steps}, t.noTransition(st, cur)
		}
		steps++

		if trace {
			cfg.logger.DebugContext(ctx, "scan step",
				logger.State(st.name),
				logger.Position(m.start),
				slog.Int("transition", tr.index),
				logger.NextState(t.stateName(tr.next)),
			)
		}

		switch tr.acc.kind {
		case accumulateMatch:
			acc.appendText(cur.Slice(m.start, m.end))
		case accumulateGroup:
			if s, e, ok := m.Group(tr.acc.group); ok {
				acc.appendText(cur.Slice(s, e))
			}
		case accumulateCombine:
			acc.combine(tr.acc.combine, cur.Slice(m.start, m.end))
		case accumulateMap:
			acc.appendText(tr.acc.mapper(cur.Slice(m.start, m.end)))
		}

		switch tr.adv.kind {
		case advanceChar:
			cur.Advance()
		case advanceMatch:
			cur.Seek(m.end)
		case advanceGroup:
			if _, e, ok := m.Group(tr.adv.group); ok {
				cur.Seek(e)
			}
		case advanceFunc:
			if err := tr.adv.fn(cur, m); err != nil {
				return Result{Pos: cur.Pos(), Steps: steps}, fmt.Errorf("%w: state '%s' transition %d: %w", ErrAdvanceFailed, st.name, tr.index, err)
			}
		}

		if tr.next == exitState {
			res := Result{Value: acc.current(), Found: true, Exited: true, Pos: cur.Pos(), Steps: steps}
			if trace {
				cfg.logger.DebugContext(ctx, "scan exited", logger.State(st.name), logger.Steps(steps), logger.Position(res.Pos))
			}
			return res, nil
		}
		state = tr.next
	}
}

// Scan runs the table over input from its beginning.
func (t *Table) Scan(ctx context.Context, input string, opts ...RunOption) (Result, error) {
	return t.Run(ctx, NewBuffer(input), opts...)
}

func (s *compiledState) selectTransition(cur Cursor) (*compiledTransition, Match, bool) {
	for i := range s.regex {
		if m, ok := cur.MatchAt(s.regex[i].re); ok {
			return &s.regex[i], m, true
		}
	}

	pos := cur.Pos()
	r, w := cur.Peek()
	for i := range s.chars {
		if s.chars[i].char.accepts(r) {
			return &s.chars[i], Match{start: pos, end: pos + w}, true
		}
	}

	if s.def != nil {
		return s.def, Match{start: pos, end: pos + w}, true
	}
	return nil, Match{}, false
}

// lineLocator is implemented by cursors able to translate offsets into
// line and column numbers.
type lineLocator interface {
	LineCol(pos int) (line, col int)
}

func (t *Table) noTransition(st *compiledState, cur Cursor) error {
	r, _ := cur.Peek()
	err := &NoApplicableTransitionError{State: st.name, Pos: cur.Pos(), Char: r}
	if loc, ok := cur.(lineLocator); ok {
		err.Line, err.Column = loc.LineCol(err.Pos)
	}
	return err
}

func (t *Table) stateName(idx int) string {
	if idx == exitState {
		return Exit
	}
	return t.states[idx].name
}
