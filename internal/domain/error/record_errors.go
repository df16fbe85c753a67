package error

import "errors"

// Record domain errors.
var (
	// ErrInvalidAmount is returned when an amount is not an unsigned decimal.
	ErrInvalidAmount = errors.New("amount must be a non-negative number")

	// ErrInvalidCategory is returned when a category is outside the fixed set.
	ErrInvalidCategory = errors.New("category is not supported")

	// ErrInvalidRecordKind is returned when kind is neither expense nor income.
	ErrInvalidRecordKind = errors.New("kind must be: expense or income")

	// ErrInvalidRating is returned when a rating is outside 0 to 5.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrRecordStoreUnavailable is returned when records cannot be loaded or watched.
	ErrRecordStoreUnavailable = errors.New("record store unavailable")
)

// RecordErrorCode defines error codes for record errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecordErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidAmount     RecordErrorCode = "REC-010001"
	ErrCodeInvalidCategory   RecordErrorCode = "REC-010002"
	ErrCodeInvalidRecordKind RecordErrorCode = "REC-010003"
	ErrCodeInvalidRating     RecordErrorCode = "REC-010004"
	ErrCodeInvalidLimit      RecordErrorCode = "REC-010005"

	// Internal errors (99XXXX)
	ErrCodeRecordInternalError    RecordErrorCode = "REC-990001"
	ErrCodeRecordStoreUnavailable RecordErrorCode = "REC-990002"
)

// RecordError represents a record error with code and message.
type RecordError struct {
	Code    RecordErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError with the given code and message.
func NewRecordError(code RecordErrorCode, message string, err error) *RecordError {
	return &RecordError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
