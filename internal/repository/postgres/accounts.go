package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

var accountColumns = []string{
	"a.id",
	"a.username",
	"a.email",
	"a.first_name",
	"a.last_name",
	"a.phone",
	"a.password_hash",
	"a.email_verified",
	"a.created_at",
	"p.id",
	"p.headline",
	"p.bio",
	"p.city",
	"p.country",
	"p.picture_ref",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
// Accounts and their optional profile row are read through a single left
// join and written together.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	repo := &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

func (r *AccountRepository) selectAccounts() squirrel.SelectBuilder {
	return r.builder.
		Select(accountColumns...).
		From("accounts.users AS a").
		LeftJoin("accounts.profiles AS p ON p.account_id = a.id")
}

// FindByUsername retrieves an account by its username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"a.username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.queryOne(ctx, stmt, args)
}

// FindByEmail retrieves an account by its email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"a.email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.queryOne(ctx, stmt, args)
}

func (r *AccountRepository) queryOne(ctx context.Context, stmt string, args []any) (*domain.Account, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

// List returns all accounts ordered by username.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		OrderBy("a.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Save upserts the account row and its profile row, if any, in a single
// transaction keyed on the account id.
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) (*domain.Account, error) {
	beginner, ok := r.exec.(txBeginner)
	if !ok {
		if err := r.save(ctx, r.exec, account); err != nil {
			return nil, err
		}
		return &account, nil
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin save account tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.save(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit save account tx: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) save(ctx context.Context, exec pgExecutor, account domain.Account) error {
	stmt, args, err := r.builder.Insert("accounts.users").
		Columns(
			"id",
			"username",
			"email",
			"first_name",
			"last_name",
			"phone",
			"password_hash",
			"email_verified",
			"created_at",
		).
		Values(
			account.ID,
			account.Username,
			account.Email,
			nullable(account.FirstName),
			nullable(account.LastName),
			nullable(account.Phone),
			account.PasswordHash,
			account.EmailVerified,
			account.CreatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			password_hash = EXCLUDED.password_hash,
			email_verified = EXCLUDED.email_verified`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert account sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	if account.Profile == nil {
		return nil
	}

	profile := account.Profile
	stmt, args, err = r.builder.Insert("accounts.profiles").
		Columns(
			"id",
			"account_id",
			"headline",
			"bio",
			"city",
			"country",
			"picture_ref",
		).
		Values(
			profile.ID,
			account.ID,
			nullable(profile.Headline),
			nullable(profile.Bio),
			nullable(profile.City),
			nullable(profile.Country),
			nullable(profile.PictureRef),
		).
		Suffix(`ON CONFLICT (account_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			bio = EXCLUDED.bio,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			picture_ref = EXCLUDED.picture_ref`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account    domain.Account
		firstName  sql.NullString
		lastName   sql.NullString
		phone      sql.NullString
		profileID  sql.NullString
		headline   sql.NullString
		bio        sql.NullString
		city       sql.NullString
		country    sql.NullString
		pictureRef sql.NullString
	)

	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&firstName,
		&lastName,
		&phone,
		&account.PasswordHash,
		&account.EmailVerified,
		&account.CreatedAt,
		&profileID,
		&headline,
		&bio,
		&city,
		&country,
		&pictureRef,
	); err != nil {
		return nil, err
	}

	account.FirstName = firstName.String
	account.LastName = lastName.String
	account.Phone = phone.String

	if profileID.Valid {
		account.Profile = &domain.Profile{
			ID:         profileID.String,
			AccountID:  account.ID,
			Headline:   headline.String,
			Bio:        bio.String,
			City:       city.String,
			Country:    country.String,
			PictureRef: pictureRef.String,
		}
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
