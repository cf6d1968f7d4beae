package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// AccountRepository persists accounts together with their optional profile.
// Lookups return repository.ErrNotFound when no row matches; Save upserts the
// account and its profile in one unit and returns the stored state.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) (*domain.Account, error)
}
