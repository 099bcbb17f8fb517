package scanspec

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDocument  = errors.New("invalid machine document")
	ErrEmptyDocument    = errors.New("machine document is empty")
	ErrDocumentTooLarge = errors.New("machine document exceeds size limit")
	ErrUnknownMachine   = errors.New("unknown machine")
	ErrUnknownFunc      = errors.New("unknown function")
	ErrDuplicateFunc    = errors.New("function already registered")
	ErrInvalidFunc      = errors.New("invalid function registration")

	// Source errors
	ErrInvalidConfig      = errors.New("invalid source configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrInvalidPath        = errors.New("invalid document path")
	ErrNotFound           = errors.New("machine document not found")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrSourceUnavailable  = errors.New("document source temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")
	ErrFailedToRead       = errors.New("failed to read machine document")
)

// DefinitionError reports a problem with one machine of a document. State
// and Transition are empty and -1 when the problem is not local to them.
type DefinitionError struct {
	Machine    string
	State      string
	Transition int
	Err        error
}

func (e *DefinitionError) Error() string {
	switch {
	case e.State == "":
		return fmt.Sprintf("machine '%s': %v", e.Machine, e.Err)
	case e.Transition < 0:
		return fmt.Sprintf("machine '%s': state '%s': %v", e.Machine, e.State, e.Err)
	default:
		return fmt.Sprintf("machine '%s': state '%s' transition %d: %v", e.Machine, e.State, e.Transition, e.Err)
	}
}

func (e *DefinitionError) Unwrap() error { return e.Err }

func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// IsDefinitionError reports whether err carries a *DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}
