package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// Notifier delivers verification and password-reset messages to an account's
// contact address. Delivery is fire-and-forget from the caller's perspective:
// a failed send never rolls back the operation that triggered it.
type Notifier interface {
	SendVerification(ctx context.Context, account domain.Account) error
	SendPasswordReset(ctx context.Context, account domain.Account) error
}
