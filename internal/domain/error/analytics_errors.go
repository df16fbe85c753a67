package error

import "errors"

// Analytics domain errors.
var (
	// ErrInvalidRange is returned when the reporting range selector is unknown.
	ErrInvalidRange = errors.New("range must be: 6months, ytd, or 1year")

	// ErrAnalyticsUnavailable is returned when the data behind analytics cannot be loaded.
	ErrAnalyticsUnavailable = errors.New("analytics data is temporarily unavailable")
)

// AnalyticsErrorCode defines error codes for analytics errors.
// Format: ANL-XXYYYY where XX is category and YYYY is specific error.
type AnalyticsErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidRange AnalyticsErrorCode = "ANL-010001"

	// Internal errors (99XXXX)
	ErrCodeAnalyticsInternalError AnalyticsErrorCode = "ANL-990001"
	ErrCodeAnalyticsUnavailable   AnalyticsErrorCode = "ANL-990002"
)

// AnalyticsError represents an analytics error with code and message.
type AnalyticsError struct {
	Code    AnalyticsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AnalyticsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

// NewAnalyticsError creates a new AnalyticsError with the given code and message.
func NewAnalyticsError(code AnalyticsErrorCode, message string, err error) *AnalyticsError {
	return &AnalyticsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
