package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/money-tracker/backend/internal/application/usecase/auth"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

// UserController handles changes the signed-in user makes to their own account.
type UserController struct {
	changePasswordUseCase *auth.ChangePasswordUseCase
	updateEmailUseCase    *auth.UpdateEmailUseCase
}

// NewUserController creates a new user controller instance.
func NewUserController(
	changePasswordUseCase *auth.ChangePasswordUseCase,
	updateEmailUseCase *auth.UpdateEmailUseCase,
) *UserController {
	return &UserController{
		changePasswordUseCase: changePasswordUseCase,
		updateEmailUseCase:    updateEmailUseCase,
	}
}

// ChangePassword handles PATCH /account/password requests. The response carries a new
// token pair because every earlier refresh token is revoked.
func (c *UserController) ChangePassword(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingFields),
			Details: err.Error(),
		})
		return
	}

	session, err := c.changePasswordUseCase.Execute(ctx.Request.Context(), auth.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		c.handleAccountError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         dto.ToUserResponse(session.User),
	})
}

// UpdateEmail handles PATCH /account/email requests.
func (c *UserController) UpdateEmail(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.updateEmailUseCase.Execute(ctx.Request.Context(), auth.UpdateEmailInput{
		UserID:          userID,
		NewEmail:        req.Email,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		c.handleAccountError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.UpdateEmailResponse{
		Message:      output.Message,
		PendingEmail: output.PendingEmail,
	})
}

func (c *UserController) handleAccountError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		ctx.JSON(getStatusCodeForAuthError(authErr.Code), dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	slog.Error("Account update failed", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}
