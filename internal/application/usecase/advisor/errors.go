// Package advisor answers users' financial questions with a language model.
package advisor

import (
	"context"
	"errors"
	"strings"

	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// User-facing messages per failure class.
const (
	messageQuestionRequired = "Question is required"
	messageQuotaExceeded    = "You have exceeded your quota. Please check your plan and billing details."
	messageModelNotFound    = "The requested model does not exist or you do not have access to it."
	messageNotConfigured    = "The financial advisor is not available right now."
	messageNetworkError     = "The financial advisor is temporarily unavailable. Please try again later."
	messageFailed           = "Error fetching advisor response"
)

// classifyError maps a model provider error onto an advisor error by inspecting its text,
// since the provider SDK does not expose typed errors for these cases.
func classifyError(err error) *domainerror.AdvisorError {
	var advisorErr *domainerror.AdvisorError
	if errors.As(err, &advisorErr) {
		return advisorErr
	}

	errStr := strings.ToLower(err.Error())

	// Check for timeout/cancellation (context errors)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorNetworkError, messageNetworkError, err)
	}

	// Check for quota and rate limiting
	if strings.Contains(errStr, "quota") || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") || strings.Contains(errStr, "resource exhausted") ||
		strings.Contains(errStr, "resourceexhausted") {
		return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorQuotaExceeded, messageQuotaExceeded, domainerror.ErrAdvisorQuotaExceeded)
	}

	// Check for unknown model
	if strings.Contains(errStr, "model_not_found") || strings.Contains(errStr, "404") ||
		(strings.Contains(errStr, "model") && strings.Contains(errStr, "not found")) {
		return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorModelNotFound, messageModelNotFound, domainerror.ErrAdvisorModelNotFound)
	}

	// Check for authentication errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "api key") || strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "permission denied") {
		return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorAuthFailed, messageFailed, err)
	}

	// Check for network/connection errors
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "dial") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "unavailable") || strings.Contains(errStr, "503") {
		return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorNetworkError, messageNetworkError, err)
	}

	return domainerror.NewAdvisorError(domainerror.ErrCodeAdvisorFailed, messageFailed, err)
}
