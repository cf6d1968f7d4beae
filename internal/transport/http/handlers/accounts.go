package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// AccountHandler exposes signup, verification, and account management endpoints.
type AccountHandler struct {
	accounts  *usecase.AccountService
	passwords *security.PasswordValidator
}

func NewAccountHandler(accounts *usecase.AccountService, passwords *security.PasswordValidator) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		passwords: passwords,
	}
}

// Signup creates a new account and triggers the verification notification.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	if err := h.passwords.Validate(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	account, err := h.accounts.Signup(c.Request.Context(), domain.AccountDraft{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.respondSignupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Account: newAccountSummary(account),
		Message: "verification required",
	})
}

func (h *AccountHandler) respondSignupError(c *gin.Context, err error) {
	var dupUsername *usecase.DuplicateUsernameError
	if errors.As(err, &dupUsername) {
		c.JSON(http.StatusConflict, NewErrorResponse(c,
			fmt.Sprintf("username already exists: %s", dupUsername.Username)))
		return
	}

	var dupEmail *usecase.DuplicateEmailError
	if errors.As(err, &dupEmail) {
		c.JSON(http.StatusConflict, NewErrorResponse(c,
			fmt.Sprintf("email already exists: %s", dupEmail.Email)))
		return
	}

	// Concurrent signups can slip past the lookups and trip the unique
	// constraints instead.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		c.JSON(http.StatusConflict, NewErrorResponse(c, "username or email already exists"))
		return
	}

	if strings.Contains(err.Error(), "required") {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to create account"))
}

// VerifyEmail marks the session account's email address as verified.
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	username := middleware.CurrentUsername(c)

	if err := h.accounts.VerifyEmail(c.Request.Context(), username); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to verify email")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}

// List returns all accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list accounts"))
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}

	c.JSON(http.StatusOK, AccountListResponse{
		Accounts: summaries,
		Total:    len(summaries),
	})
}

// Get returns a single account by username.
func (h *AccountHandler) Get(c *gin.Context) {
	username := c.Param("username")

	account, err := h.accounts.FindByUsername(c.Request.Context(), username)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}

// Update applies a selective merge to the session account.
func (h *AccountHandler) Update(c *gin.Context) {
	var req AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account update payload"))
		return
	}

	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		if err := h.passwords.Validate(*req.Password); err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
	}

	username := middleware.CurrentUsername(c)

	account, err := h.accounts.UpdateAccount(c.Request.Context(), username, domain.AccountPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		var dupEmail *usecase.DuplicateEmailError
		if errors.As(err, &dupEmail) {
			c.JSON(http.StatusConflict, NewErrorResponse(c,
				fmt.Sprintf("email already exists: %s", dupEmail.Email)))
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to update account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}

// UpdateProfile merges profile fields into the session account's profile.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile update payload"))
		return
	}

	username := middleware.CurrentUsername(c)

	account, err := h.accounts.UpdateProfile(c.Request.Context(), username, domain.ProfilePatch{
		Headline:   req.Headline,
		Bio:        req.Bio,
		City:       req.City,
		Country:    req.Country,
		PictureRef: req.PictureRef,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}
