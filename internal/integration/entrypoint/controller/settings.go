package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/money-tracker/backend/internal/application/usecase/settings"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

// SettingsController handles budget settings endpoints.
type SettingsController struct {
	getUseCase     *settings.GetSettingsUseCase
	updateUseCase  *settings.UpdateSettingsUseCase
	historyUseCase *settings.ListHistoryUseCase
}

// NewSettingsController creates a new settings controller instance.
func NewSettingsController(
	getUseCase *settings.GetSettingsUseCase,
	updateUseCase *settings.UpdateSettingsUseCase,
	historyUseCase *settings.ListHistoryUseCase,
) *SettingsController {
	return &SettingsController{
		getUseCase:     getUseCase,
		updateUseCase:  updateUseCase,
		historyUseCase: historyUseCase,
	}
}

// Get handles GET /settings requests.
func (c *SettingsController) Get(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), settings.GetSettingsInput{UserID: userID})
	if err != nil {
		c.handleSettingsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSettingsResponse(output.Settings))
}

// Update handles PATCH /settings requests.
func (c *SettingsController) Update(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeInvalidSettingsAmount),
			Details: err.Error(),
		})
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), settings.UpdateSettingsInput{
		UserID:        userID,
		MonthlyIncome: req.MonthlyIncome,
		MonthlyBudget: req.MonthlyBudget,
		SavingsGoal:   req.SavingsGoal,
		BudgetAlerts:  req.BudgetAlerts,
	})
	if err != nil {
		c.handleSettingsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSettingsResponse(output.Settings))
}

// History handles GET /settings/history requests.
func (c *SettingsController) History(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var query dto.SettingsHistoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid query parameters",
			Code:  string(domainerror.ErrCodeInvalidSettingsField),
		})
		return
	}

	output, err := c.historyUseCase.Execute(ctx.Request.Context(), settings.ListHistoryInput{
		UserID: userID,
		Field:  query.Field,
		Limit:  query.Limit,
	})
	if err != nil {
		c.handleSettingsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSettingsHistoryResponse(output.Entries))
}

// handleSettingsError handles settings errors and returns appropriate HTTP responses.
func (c *SettingsController) handleSettingsError(ctx *gin.Context, err error) {
	var settingsErr *domainerror.SettingsError
	if errors.As(err, &settingsErr) {
		statusCode := http.StatusInternalServerError
		switch settingsErr.Code {
		case domainerror.ErrCodeInvalidSettingsAmount,
			domainerror.ErrCodeNoSettingsChanges,
			domainerror.ErrCodeInvalidSettingsField:
			statusCode = http.StatusBadRequest
		default:
			slog.Error("Settings request failed", "error", err)
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: settingsErr.Message,
			Code:  string(settingsErr.Code),
		})
		return
	}

	slog.Error("Unexpected settings error", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}
