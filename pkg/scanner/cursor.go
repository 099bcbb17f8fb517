package scanner

import (
	"github.com/grafana/regexp"
)

// Cursor is the read position over the scanned input. Positions are byte
// offsets and one character is one UTF-8 encoded rune.
type Cursor interface {
	// Pos returns the current byte offset.
	Pos() int

	// Done reports whether the input is exhausted.
	Done() bool

	// Peek returns the rune at the cursor and its encoded width.
	// It must not be called when Done returns true.
	Peek() (rune, int)

	// Advance moves the cursor by one character.
	Advance()

	// Seek moves the cursor to an absolute byte offset.
	Seek(pos int)

	// MatchAt runs re anchored at the cursor and reports the spans of the
	// whole match and every capture group. The pattern does not see the
	// input before the cursor: ^, \A and \b treat the cursor as the start
	// of text, so \b holds at the cursor when the next character is a word
	// character even if the previous one is too.
	MatchAt(re *regexp.Regexp) (Match, bool)

	// Slice returns the input between two byte offsets.
	Slice(start, end int) string
}

// Match holds the spans found when a matcher accepted. Offsets are absolute
// byte positions in the input.
type Match struct {
	start, end int
	groups     []int // start/end pairs for groups 1..n, -1 when unset
}

// NewMatch builds a match over [start, end) with optional group spans given
// as start/end pairs for groups 1..n.
func NewMatch(start, end int, groups ...int) Match {
	return Match{start: start, end: end, groups: groups}
}

// Start returns the offset where the match begins.
func (m Match) Start() int { return m.start }

// End returns the offset just past the match.
func (m Match) End() int { return m.end }

// Groups returns the number of capture groups, excluding the whole match.
func (m Match) Groups() int { return len(m.groups) / 2 }

// Group returns the span of capture group n. ok is false when the group
// does not exist or did not take part in the match.
func (m Match) Group(n int) (start, end int, ok bool) {
	if n == 0 {
		return m.start, m.end, true
	}
	i := 2 * (n - 1)
	if n < 0 || i+1 >= len(m.groups) {
		return -1, -1, false
	}
	start, end = m.groups[i], m.groups[i+1]
	if start < 0 {
		return -1, -1, false
	}
	return start, end, true
}
