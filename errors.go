package vdiff

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common engine error conditions. Use errors.Is() to
// test for them.
var (
	// ErrNoActiveDocument indicates an operation needed a loaded document
	// and the host had none.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrUnsavedDocument indicates a destructive load was refused because
	// the active document has unsaved changes and no backing file.
	ErrUnsavedDocument = errors.New("active document has unsaved changes")

	// ErrInvalidConfig indicates the engine configuration is invalid or
	// incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindIO represents errors reading or writing scene files.
	KindIO = "io"

	// KindHost represents errors from the document host.
	KindHost = "host"

	// KindBudget represents resource budget exhaustion during a snapshot.
	KindBudget = "budget"

	// KindTimeout represents errors related to operation timeouts.
	KindTimeout = "timeout"

	// KindInternal represents internal engine errors.
	KindInternal = "internal"
)

// Error is a structured error that wraps underlying errors with the
// operation that failed and the category of failure.
//
// Error supports unwrapping, so errors.Is() and errors.As() see through it.
type Error struct {
	// Op is the operation that failed (e.g., "Engine.DiffFiles").
	Op string

	// Kind categorizes the error (e.g., KindIO, KindBudget).
	Kind string

	// Err is the underlying error.
	Err error

	// Context provides additional detail such as file paths.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("vdiff: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("vdiff: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("vdiff: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op when the target sets one), or
// delegates to the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the given context merged in.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewIOError creates a new Error with KindIO.
func NewIOError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindIO, Err: err}
}

// NewHostError creates a new Error with KindHost.
func NewHostError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindHost, Err: err}
}

// NewBudgetError creates a new Error with KindBudget.
func NewBudgetError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindBudget, Err: err}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInternal, Err: err}
}

// CloseWithLog closes the resource and logs any error at warning level.
// Intended for defer statements so cleanup errors are not silently lost.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
