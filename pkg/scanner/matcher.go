package scanner

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

type matcherKind uint8

const (
	kindChar matcherKind = iota + 1
	kindRegex
	kindDefault
)

// Matcher decides whether a transition applies at the cursor position.
// The set of implementations is closed: Char, Range, Alternatives, Regex
// and Default.
type Matcher interface {
	fmt.Stringer
	kind() matcherKind
}

// CharMatcher is a Matcher that inspects the single rune under the cursor.
type CharMatcher interface {
	Matcher
	Contains(r rune) bool
}

// Char accepts exactly one rune.
type Char rune

func (c Char) kind() matcherKind { return kindChar }

// Contains reports whether r equals c.
func (c Char) Contains(r rune) bool { return rune(c) == r }

func (c Char) String() string { return fmt.Sprintf("char(%q)", rune(c)) }

// Range accepts any rune r with Lo <= r <= Hi. A range with Lo > Hi is
// empty and accepts nothing.
type Range struct {
	Lo, Hi rune
}

func (r Range) kind() matcherKind { return kindChar }

// Contains reports whether c falls inside the range.
func (r Range) Contains(c rune) bool { return c >= r.Lo && c <= r.Hi }

func (r Range) String() string { return fmt.Sprintf("range(%q-%q)", r.Lo, r.Hi) }

// Alternatives accepts a rune if any member accepts it. Nested
// Alternatives are flattened when the table is built.
type Alternatives []CharMatcher

func (a Alternatives) kind() matcherKind { return kindChar }

// Contains reports whether any member accepts r. Tables never call this on
// the scan path; they use the precomputed set instead.
func (a Alternatives) Contains(r rune) bool {
	for _, m := range a {
		if m != nil && m.Contains(r) {
			return true
		}
	}
	return false
}

func (a Alternatives) String() string {
	parts := make([]string, 0, len(a))
	for _, m := range a {
		if m == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, m.String())
	}
	return "any(" + strings.Join(parts, ", ") + ")"
}

// Regex accepts when the pattern matches starting exactly at the cursor.
// The pattern sees the input from the cursor onward only, so ^, \A and \b
// evaluate as if the cursor were the start of text. Use a character
// transition on the previous state to test what precedes the cursor.
type Regex string

func (r Regex) kind() matcherKind { return kindRegex }

func (r Regex) String() string { return fmt.Sprintf("regex(%q)", string(r)) }

// Default accepts unconditionally. It is only considered once every regex
// and character transition of the state has failed.
type Default struct{}

func (Default) kind() matcherKind { return kindDefault }

func (Default) String() string { return "default" }

type interval struct {
	lo, hi rune
}

// charSet is the flattened accept-set of a character matcher: a bitmap for
// ASCII and a sorted list of disjoint intervals above it.
type charSet struct {
	ascii  [2]uint64
	ranges []interval
}

func newCharSet(m CharMatcher) (*charSet, error) {
	var ivs []interval
	if err := flatten(m, &ivs, 0); err != nil {
		return nil, err
	}

	sort.Slice(ivs, func(i, j int) bool { return ivs[i].lo < ivs[j].lo })

	merged := ivs[:0]
	for _, iv := range ivs {
		if n := len(merged); n > 0 && int64(iv.lo) <= int64(merged[n-1].hi)+1 {
			if iv.hi > merged[n-1].hi {
				merged[n-1].hi = iv.hi
			}
			continue
		}
		merged = append(merged, iv)
	}

	s := &charSet{}
	for _, iv := range merged {
		lo := max(iv.lo, 0)
		for r := lo; r <= iv.hi && r < utf8.RuneSelf; r++ {
			s.ascii[r>>6] |= 1 << (uint(r) & 63)
		}
		if iv.hi >= utf8.RuneSelf {
			if iv.lo < utf8.RuneSelf {
				iv.lo = utf8.RuneSelf
			}
			s.ranges = append(s.ranges, iv)
		}
	}
	return s, nil
}

// maxNesting bounds Alternatives nesting so a self-referencing value cannot
// recurse forever.
const maxNesting = 32

func flatten(m CharMatcher, out *[]interval, depth int) error {
	if depth > maxNesting {
		return fmt.Errorf("alternatives nested deeper than %d levels", maxNesting)
	}
	switch v := m.(type) {
	case Char:
		*out = append(*out, interval{rune(v), rune(v)})
	case Range:
		if v.Lo <= v.Hi {
			*out = append(*out, interval{v.Lo, v.Hi})
		}
	case Alternatives:
		for i, member := range v {
			if member == nil {
				return fmt.Errorf("alternative %d is nil", i)
			}
			if err := flatten(member, out, depth+1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported character matcher %T", m)
	}
	return nil
}

func (s *charSet) contains(r rune) bool {
	if r >= 0 && r < utf8.RuneSelf {
		return s.ascii[r>>6]&(1<<(uint(r)&63)) != 0
	}
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].hi >= r })
	return i < len(s.ranges) && s.ranges[i].lo <= r
}

// charRule is the compiled form of a character matcher. Single characters
// and plain ranges compare directly; alternatives go through the set.
type charRule struct {
	lo, hi rune
	set    *charSet
}

func compileCharRule(m CharMatcher) (charRule, error) {
	switch v := m.(type) {
	case Char:
		return charRule{lo: rune(v), hi: rune(v)}, nil
	case Range:
		return charRule{lo: v.Lo, hi: v.Hi}, nil
	default:
		set, err := newCharSet(m)
		if err != nil {
			return charRule{}, err
		}
		return charRule{set: set}, nil
	}
}

func (c *charRule) accepts(r rune) bool {
	if c.set != nil {
		return c.set.contains(r)
	}
	return r >= c.lo && r <= c.hi
}
