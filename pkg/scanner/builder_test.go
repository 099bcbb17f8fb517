package scanner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/scanner"
)

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	nop := scanner.Otherwise(scanner.Exit)

	tests := []struct {
		name       string
		defs       []scanner.StateDef
		state      string
		transition int
		reason     string
	}{
		{
			name:       "no states",
			transition: -1,
			reason:     "no states declared",
		},
		{
			name:       "state named exit",
			defs:       []scanner.StateDef{scanner.State(scanner.Exit, nop)},
			state:      scanner.Exit,
			transition: -1,
			reason:     "reserved",
		},
		{
			name:       "empty name",
			defs:       []scanner.StateDef{scanner.State("", nop)},
			transition: -1,
			reason:     "empty name",
		},
		{
			name:       "duplicate state",
			defs:       []scanner.StateDef{scanner.State("a", nop), scanner.State("a", nop)},
			state:      "a",
			transition: -1,
			reason:     "duplicate",
		},
		{
			name:       "no transitions",
			defs:       []scanner.StateDef{scanner.State("a", nop), scanner.State("b")},
			state:      "b",
			transition: -1,
			reason:     "no transitions",
		},
		{
			name:       "unknown next state",
			defs:       []scanner.StateDef{scanner.State("a", nop, scanner.On(scanner.Char('x'), "nowhere"))},
			state:      "a",
			transition: 1,
			reason:     "'nowhere' is not declared",
		},
		{
			name:       "empty next state",
			defs:       []scanner.StateDef{scanner.State("a", scanner.On(scanner.Char('x'), ""))},
			state:      "a",
			reason:     "next state is empty",
		},
		{
			name:       "nil matcher",
			defs:       []scanner.StateDef{scanner.State("a", scanner.Transition{Next: scanner.Exit})},
			state:      "a",
			reason:     "matcher cannot be nil",
		},
		{
			name:       "bad regex",
			defs:       []scanner.StateDef{scanner.State("a", scanner.On(scanner.Regex(`(unclosed`), scanner.Exit))},
			state:      "a",
			reason:     "invalid regex",
		},
		{
			name: "unbalanced regex escaping the anchor",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.On(scanner.Regex(`a)|(b`), scanner.Exit, scanner.WithAccumulate(scanner.AccumulateGroup(1)), scanner.Skip()),
				nop)},
			state:  "a",
			reason: "invalid regex",
		},
		{
			name: "group on character matcher",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.On(scanner.Char('x'), scanner.Exit, scanner.WithAccumulate(scanner.AccumulateGroup(1))))},
			state:  "a",
			reason: "require a regex matcher",
		},
		{
			name: "missing capture group",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.On(scanner.Regex(`(\d)`), scanner.Exit, scanner.WithAdvance(scanner.AdvanceGroup(2))))},
			state:  "a",
			reason: "capture group 2 does not exist",
		},
		{
			name: "negative capture group",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.On(scanner.Regex(`(\d)`), scanner.Exit, scanner.WithAccumulate(scanner.AccumulateGroup(-1))))},
			state:  "a",
			reason: "cannot be negative",
		},
		{
			name: "nil combine",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.Otherwise(scanner.Exit, scanner.WithAccumulate(scanner.AccumulateWith(nil))))},
			state:  "a",
			reason: "combine function cannot be nil",
		},
		{
			name: "nil map",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.Otherwise(scanner.Exit, scanner.WithAccumulate(scanner.AccumulateMap(nil))))},
			state:  "a",
			reason: "map function cannot be nil",
		},
		{
			name: "nil advance",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.Otherwise(scanner.Exit, scanner.WithAdvance(scanner.AdvanceWith(nil))))},
			state:  "a",
			reason: "function cannot be nil",
		},
		{
			name: "nil alternative",
			defs: []scanner.StateDef{scanner.State("a",
				scanner.On(scanner.Alternatives{scanner.Char('a'), nil}, scanner.Exit))},
			state:  "a",
			reason: "alternative 1 is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table, err := scanner.Build(tt.defs...)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.ErrorIs(t, err, scanner.ErrInvalidConfig)
			assert.True(t, scanner.IsConfigError(err))

			var cerr *scanner.ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.state, cerr.State)
			assert.Equal(t, tt.transition, cerr.Transition)
			assert.Contains(t, cerr.Error(), tt.reason)
		})
	}
}

func TestTableInfo(t *testing.T) {
	t.Parallel()

	table := scanner.MustNew(
		scanner.WithState("first", scanner.Otherwise("second")),
		scanner.WithStates(
			scanner.State("second", scanner.Otherwise("third")),
			scanner.State("third", scanner.Otherwise(scanner.Exit)),
		),
	)
	assert.Equal(t, "first", table.Initial())
	assert.Equal(t, []string{"first", "second", "third"}, table.States())
	assert.True(t, table.Has("third"))
	assert.False(t, table.Has(scanner.Exit))
}

func TestMustNewPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		scanner.MustNew(scanner.WithState(scanner.Exit, scanner.Otherwise(scanner.Exit)))
	})
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	t.Run("fluent declaration", func(t *testing.T) {
		t.Parallel()
		b := scanner.NewBuilder().
			State("start").
			On(scanner.Char('"'), "read", scanner.Skip()).
			Otherwise("start", scanner.WithAdvance(scanner.AdvanceChar())).
			State("read").
			On(scanner.Char('"'), scanner.Exit, scanner.Skip()).
			Transition(scanner.Otherwise("read", scanner.Collect()))

		table, err := b.Build()
		require.NoError(t, err)

		res, err := table.Scan(context.Background(), `x "quoted" y`)
		require.NoError(t, err)
		assert.Equal(t, "quoted", res.Value)

		defs := b.Definitions()
		require.Len(t, defs, 2)
		assert.Len(t, defs[0].Transitions, 2)
		assert.Equal(t, "read", defs[1].Name)
	})

	t.Run("transition before state", func(t *testing.T) {
		t.Parallel()
		_, err := scanner.NewBuilder().
			Otherwise(scanner.Exit).
			State("a").
			Otherwise(scanner.Exit).
			Build()
		assert.ErrorIs(t, err, scanner.ErrInvalidConfig)
	})

	t.Run("validation happens on build", func(t *testing.T) {
		t.Parallel()
		_, err := scanner.NewBuilder().State("a").On(scanner.Char('a'), "b").Build()
		assert.True(t, scanner.IsConfigError(err))
	})
}
