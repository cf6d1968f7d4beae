package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	accounts *usecase.AccountService
	tokens   *usecase.TokenService
}

func NewAuthHandler(accounts *usecase.AccountService, tokens *usecase.TokenService) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
	}
}

// Login authenticates the credentials and returns the account alongside an
// Authorization response header carrying the bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var unverified *usecase.EmailNotVerifiedError
		if errors.As(err, &unverified) {
			c.JSON(http.StatusForbidden, NewErrorResponse(c,
				fmt.Sprintf("email requires verification: %s", unverified.Email)))
			return
		}

		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid username or password"))
			return
		}

		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to authenticate"))
		return
	}

	header, err := h.tokens.IssueAuthHeader(account.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue access token"))
		return
	}

	for key, values := range header {
		for _, value := range values {
			c.Header(key, value)
		}
	}

	c.JSON(http.StatusOK, LoginResponse{
		TokenType: "Bearer",
		Account:   newAccountSummary(account),
	})
}
