package scanner

import (
	"fmt"
	"log/slog"
)

// Option configures a table during construction.
type Option func(*definition) error

type definition struct {
	states []StateDef
}

// New builds a table from the given options. States are declared in option
// order and the first one is the initial state.
func New(opts ...Option) (*Table, error) {
	def := &definition{}
	for _, opt := range opts {
		if err := opt(def); err != nil {
			return nil, err
		}
	}
	return Build(def.states...)
}

// MustNew is like New but panics on configuration errors. Meant for tables
// declared at package level.
func MustNew(opts ...Option) *Table {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build scanner table: %v", err))
	}
	return t
}

// WithState declares a state with its ordered transitions.
func WithState(name string, transitions ...Transition) Option {
	return func(d *definition) error {
		d.states = append(d.states, StateDef{Name: name, Transitions: transitions})
		return nil
	}
}

// WithStates declares several states at once.
func WithStates(defs ...StateDef) Option {
	return func(d *definition) error {
		d.states = append(d.states, defs...)
		return nil
	}
}

// FallbackFunc produces the result of a scan that ran out of input before
// reaching Exit. It receives the current accumulator, nil if empty.
type FallbackFunc func(acc any) any

// Accumulated is a FallbackFunc that returns the accumulator unchanged.
func Accumulated(acc any) any { return acc }

// RunOption configures a single scan.
type RunOption func(*runConfig)

type runConfig struct {
	fallback FallbackFunc
	start    string
	maxSteps int
	logger   *slog.Logger
}

// WithFallback sets the end-of-input fallback. Without it a scan that runs
// out of input yields no result.
func WithFallback(fn FallbackFunc) RunOption {
	return func(c *runConfig) { c.fallback = fn }
}

// WithFallbackValue makes a scan that runs out of input yield v.
func WithFallbackValue(v any) RunOption {
	return func(c *runConfig) {
		c.fallback = func(any) any { return v }
	}
}

// WithStartState starts the scan in the named state instead of the initial
// one.
func WithStartState(name string) RunOption {
	return func(c *runConfig) { c.start = name }
}

// WithMaxSteps stops the scan with a StepLimitError after n transitions.
// Zero or negative means no limit.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) { c.maxSteps = n }
}

// WithLogger traces every step at debug level.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}
