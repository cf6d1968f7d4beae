package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileView describes the optional profile attached to an account.
type ProfileView struct {
	Headline   string `json:"headline,omitempty"`
	Bio        string `json:"bio,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PictureRef string `json:"picture_ref,omitempty"`
}

// AccountSummary describes the view of an account returned by the API.
// Password material never appears here.
type AccountSummary struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name,omitempty"`
	LastName      string       `json:"last_name,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	EmailVerified bool         `json:"email_verified"`
	CreatedAt     time.Time    `json:"created_at"`
	Profile       *ProfileView `json:"profile,omitempty"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	summary := AccountSummary{
		ID:            account.ID,
		Username:      account.Username,
		Email:         account.Email,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		Phone:         account.Phone,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt,
	}

	if account.Profile != nil {
		summary.Profile = &ProfileView{
			Headline:   account.Profile.Headline,
			Bio:        account.Profile.Bio,
			City:       account.Profile.City,
			Country:    account.Profile.Country,
			PictureRef: account.Profile.PictureRef,
		}
	}

	return summary
}

// SignupRequest defines the account signup payload.
type SignupRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// SignupResponse contains the created account and next steps.
type SignupResponse struct {
	Account AccountSummary `json:"account"`
	Message string         `json:"message,omitempty"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
// The issued token also travels in the Authorization response header.
type LoginResponse struct {
	TokenType string         `json:"token_type"`
	Account   AccountSummary `json:"account"`
}

// AccountUpdateRequest carries a selective account update. Absent fields
// leave the stored values untouched.
type AccountUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// ProfileUpdateRequest carries a selective profile update.
type ProfileUpdateRequest struct {
	Headline   *string `json:"headline,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	City       *string `json:"city,omitempty"`
	Country    *string `json:"country,omitempty"`
	PictureRef *string `json:"picture_ref,omitempty"`
}

// AccountListResponse wraps multiple accounts.
type AccountListResponse struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    int              `json:"total"`
}

// ResetRequest represents a password reset initiation payload.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetConfirmRequest carries the replacement password for the session account.
type ResetConfirmRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the readiness state of each dependency.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
