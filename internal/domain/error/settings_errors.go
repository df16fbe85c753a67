package error

import "errors"

// Budget settings domain errors.
var (
	// ErrInvalidSettingsAmount is returned when an income, budget or goal value is malformed.
	ErrInvalidSettingsAmount = errors.New("settings amounts must be non-negative numbers")

	// ErrNoSettingsChanges is returned when an update carries no fields.
	ErrNoSettingsChanges = errors.New("at least one setting must be provided")
)

// SettingsErrorCode defines error codes for budget settings errors.
// Format: SET-XXYYYY where XX is category and YYYY is specific error.
type SettingsErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidSettingsAmount SettingsErrorCode = "SET-010001"
	ErrCodeNoSettingsChanges     SettingsErrorCode = "SET-010002"
	ErrCodeInvalidSettingsField  SettingsErrorCode = "SET-010003"

	// Internal errors (99XXXX)
	ErrCodeSettingsInternalError SettingsErrorCode = "SET-990001"
)

// SettingsError represents a budget settings error with code and message.
type SettingsError struct {
	Code    SettingsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SettingsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *SettingsError) Unwrap() error {
	return e.Err
}

// NewSettingsError creates a new SettingsError with the given code and message.
func NewSettingsError(code SettingsErrorCode, message string, err error) *SettingsError {
	return &SettingsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
