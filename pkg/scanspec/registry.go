package scanspec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrymomot/scankit/pkg/scanner"
)

// Registry maps the function names used in documents to Go functions.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	combines map[string]scanner.CombineFunc
	maps     map[string]scanner.MapFunc
	advances map[string]scanner.AdvanceFunc
}

// NewRegistry returns a registry holding the built-in functions:
//
//   - combine "upper" and "lower" append the case-mapped match (map functions)
//   - combine "list" appends the match as a new element of a []string
//   - combine "count" counts matches into an int
//   - advance "line" moves past the next newline, or to the end of input
func NewRegistry() *Registry {
	return &Registry{
		combines: map[string]scanner.CombineFunc{
			"list":  combineList,
			"count": combineCount,
		},
		maps: map[string]scanner.MapFunc{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
		},
		advances: map[string]scanner.AdvanceFunc{
			"line": advanceLine,
		},
	}
}

// RegisterCombine adds a named combine function.
func (r *Registry) RegisterCombine(name string, fn scanner.CombineFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: combine %q", ErrInvalidFunc, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasCombine(name) {
		return fmt.Errorf("%w: combine %q", ErrDuplicateFunc, name)
	}
	r.combines[name] = fn
	return nil
}

// RegisterMap adds a named function whose result is appended to the
// accumulator. Documents refer to it as a combine. Prefer it over
// RegisterCombine for text transforms: it does not rebuild the result on
// every step.
func (r *Registry) RegisterMap(name string, fn scanner.MapFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: combine %q", ErrInvalidFunc, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasCombine(name) {
		return fmt.Errorf("%w: combine %q", ErrDuplicateFunc, name)
	}
	r.maps[name] = fn
	return nil
}

func (r *Registry) hasCombine(name string) bool {
	_, fold := r.combines[name]
	_, mapped := r.maps[name]
	return fold || mapped
}

// RegisterAdvance adds a named advance function.
func (r *Registry) RegisterAdvance(name string, fn scanner.AdvanceFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: advance %q", ErrInvalidFunc, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.advances[name]; ok {
		return fmt.Errorf("%w: advance %q", ErrDuplicateFunc, name)
	}
	r.advances[name] = fn
	return nil
}

func (r *Registry) Combine(name string) (scanner.CombineFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.combines[name]
	return fn, ok
}

func (r *Registry) Map(name string) (scanner.MapFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.maps[name]
	return fn, ok
}

// Accumulate resolves a combine name used in a document.
func (r *Registry) Accumulate(name string) (scanner.Accumulate, bool) {
	if fn, ok := r.Map(name); ok {
		return scanner.AccumulateMap(fn), true
	}
	if fn, ok := r.Combine(name); ok {
		return scanner.AccumulateWith(fn), true
	}
	return scanner.Accumulate{}, false
}

func (r *Registry) Advance(name string) (scanner.AdvanceFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.advances[name]
	return fn, ok
}

func accText(acc any) string {
	switch v := acc.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func combineList(acc any, text string) any {
	switch v := acc.(type) {
	case []string:
		return append(v, text)
	case nil:
		return []string{text}
	default:
		return []string{accText(v), text}
	}
}

func combineCount(acc any, _ string) any {
	n, _ := acc.(int)
	return n + 1
}

func advanceLine(cur scanner.Cursor, _ scanner.Match) error {
	for !cur.Done() {
		r, _ := cur.Peek()
		cur.Advance()
		if r == '\n' {
			break
		}
	}
	return nil
}
