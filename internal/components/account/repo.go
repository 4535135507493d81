package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("account not found")
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

type (
	repoer interface {
		Create(ctx context.Context, email, passwordHash, name string) (*Account, error)
		GetByEmail(ctx context.Context, email string) (*Account, error)
		GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
		Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) (*Account, error)
		UpsertToken(ctx context.Context, accountID uuid.UUID, key string) error
		GetAccountIDByToken(ctx context.Context, key string) (uuid.UUID, error)
	}

	repo struct {
		db *sql.DB
	}
)

func NewRepo(db *sql.DB) repoer {
	return &repo{db: db}
}

const accountColumns = "id, email, password_hash, name, is_active, is_staff, created_at, updated_at"

func (r *repo) Create(ctx context.Context, email, passwordHash, name string) (*Account, error) {
	stmt := `
	INSERT INTO accounts (
		email, password_hash, name
	)
	VALUES (
		$1, $2, $3
	)
	RETURNING ` + accountColumns

	acct := new(Account)
	err := r.db.QueryRowContext(ctx, stmt, email, passwordHash, name).Scan(
		&acct.ID,
		&acct.Email,
		&acct.PasswordHash,
		&acct.Name,
		&acct.IsActive,
		&acct.IsStaff,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return acct, nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	stmt := `
	SELECT ` + accountColumns + `
	FROM accounts
	WHERE lower(email) = lower($1)`

	return r.scanAccount(r.db.QueryRowContext(ctx, stmt, email))
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	stmt := `
	SELECT ` + accountColumns + `
	FROM accounts
	WHERE id = $1`

	return r.scanAccount(r.db.QueryRowContext(ctx, stmt, id))
}

// Update performs partial updates on accounts by dynamically building SET
// clauses only for non-nil fields. If no fields are provided for update, it
// returns the current account. The updated_at timestamp is automatically set
// for any update.
func (r *repo) Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) (*Account, error) {
	setParts := []string{}
	args := []interface{}{id}
	argIndex := 2

	if name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *name)
		argIndex++
	}
	if passwordHash != nil {
		setParts = append(setParts, fmt.Sprintf("password_hash = $%d", argIndex))
		args = append(args, *passwordHash)
		argIndex++
	}

	if len(setParts) == 0 {
		// No fields to update, just return current account
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")

	stmt := fmt.Sprintf(`
	UPDATE accounts
	SET %s
	WHERE id = $1
	RETURNING `+accountColumns, strings.Join(setParts, ", "))

	return r.scanAccount(r.db.QueryRowContext(ctx, stmt, args...))
}

// UpsertToken stores a token key for an account, replacing any previously
// issued key for that account.
func (r *repo) UpsertToken(ctx context.Context, accountID uuid.UUID, key string) error {
	stmt := `
	INSERT INTO auth_tokens (
		key, account_id
	)
	VALUES (
		$1, $2
	)
	ON CONFLICT (account_id)
	DO UPDATE SET key = EXCLUDED.key, created_at = NOW()`

	_, err := r.db.ExecContext(ctx, stmt, key, accountID)
	return err
}

func (r *repo) GetAccountIDByToken(ctx context.Context, key string) (uuid.UUID, error) {
	stmt := `
	SELECT a.id
	FROM auth_tokens t
	JOIN accounts a ON a.id = t.account_id
	WHERE t.key = $1 AND a.is_active`

	var accountID uuid.UUID
	err := r.db.QueryRowContext(ctx, stmt, key).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return accountID, nil
}

func (r *repo) scanAccount(row *sql.Row) (*Account, error) {
	acct := new(Account)
	err := row.Scan(
		&acct.ID,
		&acct.Email,
		&acct.PasswordHash,
		&acct.Name,
		&acct.IsActive,
		&acct.IsStaff,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acct, nil
}
