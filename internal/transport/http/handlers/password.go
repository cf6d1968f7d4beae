package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// PasswordHandler exposes the two-phase password reset endpoints.
type PasswordHandler struct {
	reset     *usecase.PasswordResetService
	passwords *security.PasswordValidator
}

func NewPasswordHandler(reset *usecase.PasswordResetService, passwords *security.PasswordValidator) *PasswordHandler {
	return &PasswordHandler{
		reset:     reset,
		passwords: passwords,
	}
}

// RequestReset accepts an email and dispatches a reset notification. The
// response is identical whether or not the email is registered.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to process reset request"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{
		Message: "if the email is registered, reset instructions have been sent",
	})
}

// ConfirmReset installs the new password for the session account.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset confirmation payload"))
		return
	}

	if err := h.passwords.Validate(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	username := middleware.CurrentUsername(c)

	if err := h.reset.CompleteReset(c.Request.Context(), username, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
