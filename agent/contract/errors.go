package contract

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGrounding marks a query where every planned tool failed and
	// retrieval produced nothing; the reasoning backend is never called.
	ErrNoGrounding = errors.New("no grounding available")

	// ErrBackend marks a reasoning backend failure. Fatal for the query,
	// retryable for the caller.
	ErrBackend = errors.New("reasoning backend failed")

	// ErrTimeout marks an exceeded query deadline. Kept distinct from
	// ErrBackend so callers can pick a retry policy.
	ErrTimeout = errors.New("query deadline exceeded")

	ErrValidation      = errors.New("validation failed")
	ErrSchemaViolation = errors.New("model response violates schema")
)

type ToolErrorKind string

const (
	ToolErrInvalidArgument    ToolErrorKind = "invalid_argument"
	ToolErrNoData             ToolErrorKind = "no_data"
	ToolErrBackendUnavailable ToolErrorKind = "backend_unavailable"
	ToolErrExecution          ToolErrorKind = "execution_error"
)

// ToolError is the only failure shape a tool may surface. Tool failures are
// absorbed into the owning ToolInvocation and never bubble past the
// orchestrator.
type ToolError struct {
	Kind   ToolErrorKind
	Detail string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error (%s): %s", e.Kind, e.Detail)
}

func NewToolError(kind ToolErrorKind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AsToolError coerces an arbitrary tool failure into a *ToolError, wrapping
// unknown errors as execution_error.
func AsToolError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Kind: ToolErrExecution, Detail: err.Error()}
}
