package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeFrontMatter  = "FRONT_MATTER_INVALID"
	ErrCodeRender       = "RENDER_FAILED"
	ErrCodeTimeout      = "PROBE_TIMEOUT"
	ErrCodeFetch        = "FETCH_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeImport       = "IMPORT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BuildError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type BuildError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError.
func NewBuildError(code, message string, err error) *BuildError {
	return &BuildError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *BuildError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
