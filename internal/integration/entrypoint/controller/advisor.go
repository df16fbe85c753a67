package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/money-tracker/backend/internal/application/usecase/advisor"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

// AdvisorController answers financial questions.
type AdvisorController struct {
	askUseCase *advisor.AskQuestionUseCase
}

// NewAdvisorController creates a new advisor controller instance.
func NewAdvisorController(askUseCase *advisor.AskQuestionUseCase) *AdvisorController {
	return &AdvisorController{askUseCase: askUseCase}
}

// Ask handles POST /advisor/questions requests.
func (c *AdvisorController) Ask(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.AskQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Question is required",
			Code:  string(domainerror.ErrCodeQuestionRequired),
		})
		return
	}

	output, err := c.askUseCase.Execute(ctx.Request.Context(), advisor.AskQuestionInput{
		UserID:   userID,
		Question: req.Question,
	})
	if err != nil {
		c.handleAdvisorError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AskQuestionResponse{Answer: output.Answer})
}

// handleAdvisorError handles advisor errors and returns appropriate HTTP responses.
func (c *AdvisorController) handleAdvisorError(ctx *gin.Context, err error) {
	var advisorErr *domainerror.AdvisorError
	if errors.As(err, &advisorErr) {
		statusCode := getStatusCodeForAdvisorError(advisorErr.Code)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("Advisor request failed", "error", err)
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: advisorErr.Message,
			Code:  string(advisorErr.Code),
		})
		return
	}

	slog.Error("Unexpected advisor error", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "Error fetching advisor response",
		Code:  string(domainerror.ErrCodeAdvisorFailed),
	})
}

// getStatusCodeForAdvisorError maps advisor error codes to HTTP status codes.
func getStatusCodeForAdvisorError(code domainerror.AdvisorErrorCode) int {
	switch code {
	case domainerror.ErrCodeQuestionRequired:
		return http.StatusBadRequest
	case domainerror.ErrCodeAdvisorQuotaExceeded, domainerror.ErrCodeAdvisorRateLimited:
		return http.StatusTooManyRequests
	case domainerror.ErrCodeAdvisorModelNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeAdvisorNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
