package scanner_test

import (
	"testing"
	"unicode/utf8"

	"github.com/grafana/regexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/scanner"
)

func TestBuffer(t *testing.T) {
	t.Parallel()

	s := "hello, 日本! ok"
	b := scanner.NewBuffer(s)

	r, w := b.Peek()
	assert.Equal(t, 'h', r)
	assert.Equal(t, 1, w)

	b.Seek(7)
	r, w = b.Peek()
	assert.Equal(t, '日', r)
	assert.Equal(t, 3, w)

	b.Advance()
	assert.Equal(t, 10, b.Pos())
	assert.Equal(t, "本! ok", b.Rest())

	b.Seek(-5)
	assert.Equal(t, 0, b.Pos())
	b.Seek(len(s) + 10)
	assert.True(t, b.Done())
	assert.Equal(t, len(s), b.Pos())

	r, w = b.Peek()
	assert.Equal(t, utf8.RuneError, r)
	assert.Equal(t, 0, w)
	b.Advance()
	assert.Equal(t, len(s), b.Pos())
}

func TestBufferInvalidUTF8(t *testing.T) {
	t.Parallel()

	b := scanner.NewBufferBytes([]byte{'a', 0xff, 'b'})
	b.Advance()
	r, w := b.Peek()
	assert.Equal(t, utf8.RuneError, r)
	assert.Equal(t, 1, w)
	b.Advance()
	r, _ = b.Peek()
	assert.Equal(t, 'b', r)
}

func TestBufferMatchAt(t *testing.T) {
	t.Parallel()

	b := scanner.NewBuffer("key=42;rest")
	re := regexp.MustCompile(`(\w+)=(\d+)?(x)?`)

	m, ok := b.MatchAt(re)
	require.True(t, ok)
	assert.Equal(t, 0, m.Start())
	assert.Equal(t, 6, m.End())
	assert.Equal(t, 3, m.Groups())

	start, end, ok := m.Group(2)
	require.True(t, ok)
	assert.Equal(t, "42", b.Slice(start, end))

	_, _, ok = m.Group(3)
	assert.False(t, ok, "group that did not participate")
	_, _, ok = m.Group(4)
	assert.False(t, ok, "group that does not exist")
	_, _, ok = m.Group(-1)
	assert.False(t, ok)

	b.Seek(4)
	m, ok = b.MatchAt(regexp.MustCompile(`\d+`))
	require.True(t, ok)
	assert.Equal(t, 4, m.Start())
	assert.Equal(t, 6, m.End())

	// a match further along the input does not count
	_, ok = b.MatchAt(regexp.MustCompile(`rest`))
	assert.False(t, ok)
}

func TestBufferMatchAtStartsText(t *testing.T) {
	t.Parallel()

	b := scanner.NewBuffer("ab\ncd")
	b.Seek(1)

	// the preceding 'a' is not visible, so the cursor is a word boundary
	_, ok := b.MatchAt(regexp.MustCompile(`\bb`))
	assert.True(t, ok)
	_, ok = b.MatchAt(regexp.MustCompile(`\Bb`))
	assert.False(t, ok)
	_, ok = b.MatchAt(regexp.MustCompile(`^b`))
	assert.True(t, ok)

	b.Seek(3)
	_, ok = b.MatchAt(regexp.MustCompile(`(?m)^cd`))
	assert.True(t, ok)
}

func TestBufferLineCol(t *testing.T) {
	t.Parallel()

	b := scanner.NewBuffer("ab\nçd\n\nx")
	cases := []struct {
		pos       int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 2},
		{7, 3, 1},
		{8, 4, 1},
		{100, 4, 2},
		{-3, 1, 1},
	}
	for _, tc := range cases {
		line, col := b.LineCol(tc.pos)
		assert.Equal(t, tc.line, line, "line at %d", tc.pos)
		assert.Equal(t, tc.col, col, "column at %d", tc.pos)
	}
}

func TestNewMatch(t *testing.T) {
	t.Parallel()

	m := scanner.NewMatch(2, 9, 3, 5, -1, -1)
	assert.Equal(t, 2, m.Groups())
	s, e, ok := m.Group(0)
	assert.True(t, ok)
	assert.Equal(t, []int{2, 9}, []int{s, e})
	s, e, ok = m.Group(1)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 5}, []int{s, e})
	_, _, ok = m.Group(2)
	assert.False(t, ok)
}
