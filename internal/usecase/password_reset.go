package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// PasswordResetService implements the two-phase reset flow: a public request
// step that dispatches a reset notification, and a confirm step bound to an
// authenticated session that installs the new password.
type PasswordResetService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
	notifier port.Notifier
	logger   *zap.Logger
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(accounts port.AccountRepository, hasher port.PasswordHasher, notifier port.Notifier, log *zap.Logger) *PasswordResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		accounts: accounts,
		hasher:   hasher,
		notifier: notifier,
		logger:   log,
	}
}

// RequestReset dispatches a password reset notification for the account
// owning the email. An unknown email is a silent success so the endpoint
// cannot be used to probe which addresses are registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				zap.String("email", logger.MaskEmail(email)),
			)
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, *account); err != nil {
		s.logger.Warn("send password reset failed",
			zap.String("username", account.Username),
			zap.Error(err),
		)
	}

	return nil
}

// CompleteReset replaces the session account's password with the new value.
func (s *PasswordResetService) CompleteReset(ctx context.Context, sessionUsername, newPassword string) error {
	sessionUsername = strings.ToLower(strings.TrimSpace(sessionUsername))
	if sessionUsername == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("password is required")
	}

	account, err := s.accounts.FindByUsername(ctx, sessionUsername)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash

	if _, err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}
