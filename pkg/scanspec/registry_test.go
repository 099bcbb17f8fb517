package scanspec_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/scanner"
	"github.com/dmitrymomot/scankit/pkg/scanspec"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("built-ins", func(t *testing.T) {
		t.Parallel()
		reg := scanspec.NewRegistry()

		upper, ok := reg.Map("upper")
		require.True(t, ok)
		assert.Equal(t, "CD", upper("cd"))

		lower, ok := reg.Map("lower")
		require.True(t, ok)
		assert.Equal(t, "ab", lower("AB"))

		_, ok = reg.Combine("upper")
		assert.False(t, ok)
		acc, ok := reg.Accumulate("upper")
		require.True(t, ok)
		assert.False(t, acc.IsZero())
		_, ok = reg.Accumulate("missing")
		assert.False(t, ok)

		list, ok := reg.Combine("list")
		require.True(t, ok)
		assert.Equal(t, []string{"a"}, list(nil, "a"))
		assert.Equal(t, []string{"a", "b"}, list([]string{"a"}, "b"))
		assert.Equal(t, []string{"prefix", "b"}, list("prefix", "b"))

		count, ok := reg.Combine("count")
		require.True(t, ok)
		assert.Equal(t, 1, count(nil, "x"))
		assert.Equal(t, 5, count(4, "x"))

		_, ok = reg.Advance("line")
		assert.True(t, ok)
		_, ok = reg.Combine("missing")
		assert.False(t, ok)
	})

	t.Run("line advance", func(t *testing.T) {
		t.Parallel()
		line, ok := scanspec.NewRegistry().Advance("line")
		require.True(t, ok)

		buf := scanner.NewBuffer("// comment\nnext")
		require.NoError(t, line(buf, scanner.NewMatch(0, 2)))
		assert.Equal(t, "next", buf.Rest())

		buf = scanner.NewBuffer("// last line")
		require.NoError(t, line(buf, scanner.NewMatch(0, 2)))
		assert.True(t, buf.Done())
	})

	t.Run("register", func(t *testing.T) {
		t.Parallel()
		reg := scanspec.NewRegistry()
		skip := func(cur scanner.Cursor, m scanner.Match) error {
			cur.Seek(m.End() + 1)
			return nil
		}

		require.NoError(t, reg.RegisterAdvance("skip-one", skip))
		assert.ErrorIs(t, reg.RegisterAdvance("skip-one", skip), scanspec.ErrDuplicateFunc)
		assert.ErrorIs(t, reg.RegisterAdvance("", skip), scanspec.ErrInvalidFunc)
		assert.ErrorIs(t, reg.RegisterAdvance("nil", nil), scanspec.ErrInvalidFunc)
		assert.ErrorIs(t, reg.RegisterCombine("upper", func(any, string) any { return nil }), scanspec.ErrDuplicateFunc)
		assert.ErrorIs(t, reg.RegisterCombine("x", nil), scanspec.ErrInvalidFunc)
		assert.ErrorIs(t, reg.RegisterMap("list", strings.TrimSpace), scanspec.ErrDuplicateFunc)
		assert.ErrorIs(t, reg.RegisterMap("trim", nil), scanspec.ErrInvalidFunc)
		require.NoError(t, reg.RegisterMap("trim", strings.TrimSpace))
		assert.ErrorIs(t, reg.RegisterCombine("trim", func(any, string) any { return nil }), scanspec.ErrDuplicateFunc)

		doc, err := scanspec.Parse([]byte(`
machines:
  - name: m
    states:
      - name: s
        transitions:
          - {match: {char: x}, advance: {func: skip-one}, next: t}
      - name: t
        transitions:
          - {match: default, accumulate: match, advance: char, next: exit}
`))
		require.NoError(t, err)
		lib, err := doc.Compile(reg)
		require.NoError(t, err)
		m, err := lib.Machine("m")
		require.NoError(t, err)

		res, err := m.Run(context.Background(), scanner.NewBuffer("xyz"))
		require.NoError(t, err)
		assert.Equal(t, "z", res.Text())
	})
}

func TestUpperCombineOnLongInput(t *testing.T) {
	t.Parallel()
	doc, err := scanspec.Parse([]byte(`
machines:
  - name: shout
    fallback: accumulated
    states:
      - name: s
        transitions:
          - {match: default, accumulate: {combine: upper}, advance: char, next: s}
`))
	require.NoError(t, err)
	lib, err := doc.Compile(nil)
	require.NoError(t, err)
	m, err := lib.Machine("shout")
	require.NoError(t, err)

	input := strings.Repeat("quiet ", 50_000)
	res, err := m.Run(context.Background(), scanner.NewBuffer(input))
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(input), res.Value)
}
