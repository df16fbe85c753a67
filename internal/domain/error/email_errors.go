package error

import "errors"

var (
	// ErrUnknownTemplate is returned when a queued email names a template that does not exist.
	ErrUnknownTemplate = errors.New("unknown email template")

	// ErrEmailAlreadyQueued is returned when a job with the same dedupe key was queued before.
	ErrEmailAlreadyQueued = errors.New("email with this dedupe key is already queued")
)

// EmailErrorCode defines error codes for outbound email errors.
// Format: MAIL-XXYYYY where XX is category and YYYY is specific error.
type EmailErrorCode string

const (
	// Queue errors (01XXXX)
	ErrCodeEmailQueueFailed EmailErrorCode = "MAIL-010001"

	// Delivery errors (02XXXX)
	ErrCodeDeliveryRejected EmailErrorCode = "MAIL-020001"
	ErrCodeDeliveryDeferred EmailErrorCode = "MAIL-020002"

	// Template errors (03XXXX)
	ErrCodeUnknownTemplate      EmailErrorCode = "MAIL-030001"
	ErrCodeTemplateRenderFailed EmailErrorCode = "MAIL-030002"
)

// EmailError carries the code of a failed queue, render or delivery step.
type EmailError struct {
	Code    EmailErrorCode
	Message string
	Err     error
}

func (e *EmailError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *EmailError) Unwrap() error {
	return e.Err
}

// Permanent reports whether sending the same email again would fail the same way.
func (e *EmailError) Permanent() bool {
	switch e.Code {
	case ErrCodeDeliveryRejected, ErrCodeUnknownTemplate, ErrCodeTemplateRenderFailed:
		return true
	}
	return false
}

// NewEmailError creates a new EmailError with the given code and message.
func NewEmailError(code EmailErrorCode, message string, err error) *EmailError {
	return &EmailError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsPermanentEmailFailure reports whether err wraps an EmailError that retrying cannot fix.
func IsPermanentEmailFailure(err error) bool {
	var emailErr *EmailError
	return errors.As(err, &emailErr) && emailErr.Permanent()
}
