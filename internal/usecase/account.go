package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

var (
	// ErrAccountNotFound indicates the session identity does not resolve to a stored account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials indicates the provided username or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateUsernameError reports a signup collision on the username, carrying
// the conflicting value for the user-facing message.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("username already exists: %s", e.Username)
}

// DuplicateEmailError reports a collision on the email address.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email already exists: %s", e.Email)
}

// EmailNotVerifiedError blocks authentication until the email is verified.
// It carries the account's email so callers can offer a resend action.
type EmailNotVerifiedError struct {
	Email string
}

func (e *EmailNotVerifiedError) Error() string {
	return fmt.Sprintf("email requires verification: %s", e.Email)
}

// AccountService owns the account lifecycle: signup, verification,
// authentication, and selective merge-updates of account and profile fields.
//
// The service performs its uniqueness checks as plain read-then-write with no
// internal mutual exclusion; two concurrent signups racing on the same
// identity are resolved by the unique constraints on accounts.users, which
// the HTTP layer surfaces as a conflict.
type AccountService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
	notifier port.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService with its collaborators.
func NewAccountService(accounts port.AccountRepository, hasher port.PasswordHasher, notifier port.Notifier, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the clock used by the service (primarily for tests).
func (s *AccountService) WithClock(clock func() time.Time) *AccountService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Signup validates identity uniqueness and creates the account.
// Both uniqueness checks run strictly before hashing and persistence so a
// duplicate never causes a partial write.
func (s *AccountService) Signup(ctx context.Context, draft domain.AccountDraft) (domain.Account, error) {
	username := strings.ToLower(strings.TrimSpace(draft.Username))
	if username == "" {
		return domain.Account{}, fmt.Errorf("username is required")
	}
	email := strings.ToLower(strings.TrimSpace(draft.Email))
	if email == "" {
		return domain.Account{}, fmt.Errorf("email is required")
	}
	password := strings.TrimSpace(draft.Password)
	if password == "" {
		return domain.Account{}, fmt.Errorf("password is required")
	}

	if existing, err := s.accounts.FindByUsername(ctx, username); err == nil {
		return domain.Account{}, &DuplicateUsernameError{Username: existing.Username}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup username: %w", err)
	}

	if existing, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return domain.Account{}, &DuplicateEmailError{Email: existing.Email}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FirstName:     strings.TrimSpace(draft.FirstName),
		LastName:      strings.TrimSpace(draft.LastName),
		Phone:         strings.TrimSpace(draft.Phone),
		PasswordHash:  passwordHash,
		EmailVerified: false,
		CreatedAt:     s.now().UTC(),
	}

	saved, err := s.accounts.Save(ctx, account)
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	// Delivery failure never undoes the completed signup.
	if err := s.notifier.SendVerification(ctx, *saved); err != nil {
		s.logger.Warn("send verification failed",
			zap.String("username", saved.Username),
			zap.Error(err),
		)
	}

	return saved.Sanitized(), nil
}

// VerifyEmail marks the session account's email as verified. Verifying an
// already-verified account is a no-op in effect.
func (s *AccountService) VerifyEmail(ctx context.Context, sessionUsername string) error {
	account, err := s.resolve(ctx, sessionUsername)
	if err != nil {
		return err
	}

	account.EmailVerified = true

	if _, err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

// Authenticate proves the credentials and only then applies the verification
// gate, so a wrong password never reveals verification state.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return domain.Account{}, fmt.Errorf("username is required")
	}
	if password == "" {
		return domain.Account{}, fmt.Errorf("password is required")
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return domain.Account{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrInvalidCredentials
	}

	if !account.EmailVerified {
		return domain.Account{}, &EmailNotVerifiedError{Email: account.Email}
	}

	return account.Sanitized(), nil
}

// UpdateAccount applies a selective merge to the session account.
// Present fields overwrite, absent fields preserve; the password is only
// overwritten when present and non-blank, and always hashed first. A single
// persist runs after all merges.
func (s *AccountService) UpdateAccount(ctx context.Context, sessionUsername string, patch domain.AccountPatch) (domain.Account, error) {
	account, err := s.resolve(ctx, sessionUsername)
	if err != nil {
		return domain.Account{}, err
	}

	if email, ok := patch.EmailValue(); ok && email != account.Email {
		other, err := s.accounts.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if other.ID != account.ID {
				return domain.Account{}, &DuplicateEmailError{Email: other.Email}
			}
		case !errors.Is(err, repository.ErrNotFound):
			return domain.Account{}, fmt.Errorf("lookup email: %w", err)
		}
	}

	hashedPassword := ""
	if password, ok := patch.PasswordValue(); ok {
		hashedPassword, err = s.hasher.Hash(password)
		if err != nil {
			return domain.Account{}, fmt.Errorf("hash password: %w", err)
		}
	}

	updated := patch.Apply(*account, hashedPassword)

	saved, err := s.accounts.Save(ctx, updated)
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	return saved.Sanitized(), nil
}

// UpdateProfile merges the patch into the session account's profile, or
// attaches the whole patch as a new profile when none exists yet.
func (s *AccountService) UpdateProfile(ctx context.Context, sessionUsername string, patch domain.ProfilePatch) (domain.Account, error) {
	account, err := s.resolve(ctx, sessionUsername)
	if err != nil {
		return domain.Account{}, err
	}

	if account.Profile != nil {
		merged := patch.Apply(*account.Profile)
		account.Profile = &merged
	} else {
		profile := patch.Apply(domain.Profile{
			ID:        uuid.NewString(),
			AccountID: account.ID,
		})
		account.Profile = &profile
	}

	saved, err := s.accounts.Save(ctx, *account)
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	return saved.Sanitized(), nil
}

// List returns all accounts with password hashes cleared.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	sanitized := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		sanitized = append(sanitized, account.Sanitized())
	}

	return sanitized, nil
}

// FindByUsername returns one account by its normalized username.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (domain.Account, error) {
	account, err := s.resolve(ctx, username)
	if err != nil {
		return domain.Account{}, err
	}
	return account.Sanitized(), nil
}

func (s *AccountService) resolve(ctx context.Context, username string) (*domain.Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	return account, nil
}
