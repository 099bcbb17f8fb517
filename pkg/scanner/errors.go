package scanner

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig          = errors.New("invalid scanner configuration")
	ErrNoApplicableTransition = errors.New("no applicable transition")
	ErrStepLimit              = errors.New("scan step limit exceeded")
	ErrAdvanceFailed          = errors.New("custom advance failed")
	ErrUnknownState           = errors.New("unknown state")
	ErrNilCursor              = errors.New("cursor cannot be nil")
)

// ConfigError reports a malformed table definition. Transition is -1 when
// the problem concerns the state as a whole.
type ConfigError struct {
	State      string
	Transition int
	Reason     string
}

func (e *ConfigError) Error() string {
	switch {
	case e.State == "":
		return fmt.Sprintf("invalid scanner configuration: %s", e.Reason)
	case e.Transition < 0:
		return fmt.Sprintf("invalid scanner configuration: state '%s': %s", e.State, e.Reason)
	default:
		return fmt.Sprintf("invalid scanner configuration: state '%s' transition %d: %s", e.State, e.Transition, e.Reason)
	}
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func newConfigError(state string, transition int, format string, args ...any) *ConfigError {
	return &ConfigError{
		State:      state,
		Transition: transition,
		Reason:     fmt.Sprintf(format, args...),
	}
}

// NoApplicableTransitionError indicates the current state has no transition
// accepting the input at Pos. Line and Column are zero when the cursor cannot
// locate positions.
type NoApplicableTransitionError struct {
	State  string
	Pos    int
	Char   rune
	Line   int
	Column int
}

func (e *NoApplicableTransitionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("no applicable transition in state '%s' for %q at offset %d (line %d, column %d)",
			e.State, e.Char, e.Pos, e.Line, e.Column)
	}
	return fmt.Sprintf("no applicable transition in state '%s' for %q at offset %d", e.State, e.Char, e.Pos)
}

func (e *NoApplicableTransitionError) Is(target error) bool {
	return target == ErrNoApplicableTransition
}

// StepLimitError indicates a run exceeded the limit set with WithMaxSteps.
type StepLimitError struct {
	State string
	Pos   int
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("scan stopped after %d steps in state '%s' at offset %d", e.Limit, e.State, e.Pos)
}

func (e *StepLimitError) Is(target error) bool {
	return target == ErrStepLimit
}

func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

func IsNoApplicableTransitionError(err error) bool {
	var e *NoApplicableTransitionError
	return errors.As(err, &e)
}

func IsStepLimitError(err error) bool {
	var e *StepLimitError
	return errors.As(err, &e)
}
