package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeUsage  = "USAGE_ERROR"
	ErrCodeInput  = "INPUT_ERROR"
	ErrCodeConfig = "CONFIG_ERROR"
	ErrCodeRender = "RENDER_ERROR"
	ErrCodeOutput = "OUTPUT_ERROR"
	ErrCodeFilter = "FILTER_ERROR"
)

// GraphError is the structured error type for all wfgraph operations.
type GraphError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Actionable string         `json:"actionable,omitempty"`
	Cause      error          `json:"-"`
}

func (e *GraphError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Actionable != "" {
		return fmt.Sprintf("[%s] actionable %s: %s", e.Code, e.Actionable, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *GraphError) Unwrap() error {
	return e.Cause
}

// NewError creates a new GraphError.
func NewError(code, message string) *GraphError {
	return &GraphError{Code: code, Message: message}
}

// NewErrorf creates a new GraphError with a formatted message.
func NewErrorf(code, format string, args ...any) *GraphError {
	return &GraphError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithActionable attaches the actionable type the error belongs to.
func (e *GraphError) WithActionable(actionableType string) *GraphError {
	e.Actionable = actionableType
	return e
}

// WithCause attaches an underlying cause.
func (e *GraphError) WithCause(err error) *GraphError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *GraphError) WithDetails(details map[string]any) *GraphError {
	e.Details = details
	return e
}

// HasCode reports whether err is a GraphError carrying code.
func HasCode(err error, code string) bool {
	ge, ok := err.(*GraphError)
	return ok && ge.Code == code
}
