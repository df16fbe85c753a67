package error

import "errors"

// Financial advisor domain errors.
var (
	// ErrQuestionRequired is returned when the question is empty.
	ErrQuestionRequired = errors.New("question is required")

	// ErrAdvisorQuotaExceeded is returned when the model provider rejects calls for quota reasons.
	ErrAdvisorQuotaExceeded = errors.New("advisor quota exceeded")

	// ErrAdvisorModelNotFound is returned when the configured model does not exist.
	ErrAdvisorModelNotFound = errors.New("advisor model not found")

	// ErrAdvisorNotConfigured is returned when no model API key is configured.
	ErrAdvisorNotConfigured = errors.New("financial advisor is not configured")

	// ErrAdvisorFailed is returned for every other model failure.
	ErrAdvisorFailed = errors.New("advisor request failed")
)

// AdvisorErrorCode defines error codes for financial advisor errors.
// Format: ADV-XXYYYY where XX is category and YYYY is specific error.
type AdvisorErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeQuestionRequired AdvisorErrorCode = "ADV-010001"

	// External service errors (02XXXX)
	ErrCodeAdvisorQuotaExceeded AdvisorErrorCode = "ADV-020001"
	ErrCodeAdvisorModelNotFound AdvisorErrorCode = "ADV-020002"
	ErrCodeAdvisorNotConfigured AdvisorErrorCode = "ADV-020003"
	ErrCodeAdvisorAuthFailed    AdvisorErrorCode = "ADV-020004"
	ErrCodeAdvisorNetworkError  AdvisorErrorCode = "ADV-020005"

	// Access errors (03XXXX)
	ErrCodeAdvisorRateLimited AdvisorErrorCode = "ADV-030001"

	// Internal errors (99XXXX)
	ErrCodeAdvisorFailed AdvisorErrorCode = "ADV-990001"
)

// AdvisorError represents a financial advisor error with code and message.
type AdvisorError struct {
	Code    AdvisorErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AdvisorError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AdvisorError) Unwrap() error {
	return e.Err
}

// NewAdvisorError creates a new AdvisorError with the given code and message.
func NewAdvisorError(code AdvisorErrorCode, message string, err error) *AdvisorError {
	return &AdvisorError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
