package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/grafana/regexp"
)

// Buffer is an in-memory Cursor over a UTF-8 string. It is the cursor Scan
// uses; callers with their own text storage implement Cursor instead.
// A Buffer is not safe for concurrent use, but several Buffers may share the
// same backing string.
type Buffer struct {
	src string
	pos int
}

var _ Cursor = (*Buffer)(nil)

// NewBuffer creates a Buffer positioned at the start of s.
func NewBuffer(s string) *Buffer {
	return &Buffer{src: s}
}

// NewBufferBytes creates a Buffer over a copy of b.
func NewBufferBytes(b []byte) *Buffer {
	return &Buffer{src: string(b)}
}

// Pos returns the current byte offset.
func (b *Buffer) Pos() int { return b.pos }

// Len returns the size of the input in bytes.
func (b *Buffer) Len() int { return len(b.src) }

// Done reports whether every byte has been consumed.
func (b *Buffer) Done() bool { return b.pos >= len(b.src) }

// Peek returns the rune at the cursor. Invalid UTF-8 decodes as
// utf8.RuneError with width 1.
func (b *Buffer) Peek() (rune, int) {
	if b.pos >= len(b.src) {
		return utf8.RuneError, 0
	}
	if c := b.src[b.pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(b.src[b.pos:])
}

// Advance moves past the rune at the cursor.
func (b *Buffer) Advance() {
	if _, w := b.Peek(); w > 0 {
		b.pos += w
	}
}

// Seek moves the cursor to pos, clamped to the bounds of the input.
func (b *Buffer) Seek(pos int) {
	switch {
	case pos < 0:
		b.pos = 0
	case pos > len(b.src):
		b.pos = len(b.src)
	default:
		b.pos = pos
	}
}

// MatchAt reports whether re matches starting exactly at the cursor. Only
// the input from the cursor onward is visible to re.
func (b *Buffer) MatchAt(re *regexp.Regexp) (Match, bool) {
	loc := re.FindStringSubmatchIndex(b.src[b.pos:])
	if loc == nil || loc[0] != 0 {
		return Match{}, false
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += b.pos
		}
	}
	return Match{start: loc[0], end: loc[1], groups: loc[2:]}, true
}

// Slice returns the input between two byte offsets.
func (b *Buffer) Slice(start, end int) string {
	return b.src[start:end]
}

// Rest returns the unconsumed input.
func (b *Buffer) Rest() string {
	return b.src[b.pos:]
}

// LineCol translates a byte offset into a 1-based line number and a 1-based
// column counted in runes.
func (b *Buffer) LineCol(pos int) (line, col int) {
	if pos > len(b.src) {
		pos = len(b.src)
	}
	if pos < 0 {
		pos = 0
	}
	head := b.src[:pos]
	line = strings.Count(head, "\n") + 1
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		head = head[i+1:]
	}
	return line, utf8.RuneCountInString(head) + 1
}
