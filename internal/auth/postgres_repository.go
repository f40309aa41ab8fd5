package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `
		u.id, u.email, u.normalized_email, u.password_hash, u.email_confirmed,
		u.security_stamp, u.access_failed_count, u.lockout_end, u.lockout_enabled,
		u.created_at, u.updated_at,
		COALESCE((
			SELECT array_agg(r.name ORDER BY r.name)
			FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = u.id
		), '{}')`

// Create inserts a new user record together with its initial role memberships.
func (r *PostgresRepository) Create(ctx context.Context, u *User, roleIDs ...uuid.UUID) error {
	query := `
		INSERT INTO users (email, normalized_email, password_hash, email_confirmed,
		                   security_stamp, lockout_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			u.Email,
			u.NormalizedEmail,
			u.PasswordHash,
			u.EmailConfirmed,
			u.SecurityStamp,
			u.LockoutEnabled,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("inserting user: %w", err)
		}

		for _, roleID := range roleIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				u.ID, roleID)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return ErrRoleNotFound
				}
				return fmt.Errorf("inserting user role: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE u.id = $1`

	return r.getOne(ctx, query, id)
}

// GetByNormalizedEmail retrieves a single user by its normalized email.
func (r *PostgresRepository) GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE u.normalized_email = $1`

	return r.getOne(ctx, query, normalizedEmail)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u     User
		roles []string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.NormalizedEmail, &u.PasswordHash, &u.EmailConfirmed,
		&u.SecurityStamp, &u.AccessFailedCount, &u.LockoutEnd, &u.LockoutEnabled,
		&u.CreatedAt, &u.UpdatedAt,
		&roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.Roles = NewRoleSet(roles...)
	return &u, nil
}

// ConfirmEmail flips email_confirmed and rotates the security stamp in one
// conditional statement, so a token can succeed at most once.
func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, expectedStamp, newStamp string) error {
	query := `
		UPDATE users
		SET email_confirmed = TRUE, security_stamp = $3, updated_at = NOW()
		WHERE id = $1 AND security_stamp = $2 AND email_confirmed = FALSE`

	result, err := r.pool.Exec(ctx, query, id, expectedStamp, newStamp)
	if err != nil {
		return fmt.Errorf("confirming email: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking user existence: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrStaleSecurityStamp
	}

	return nil
}

// RecordFailedAccess bumps access_failed_count and opens the lockout window
// once the threshold is reached.
func (r *PostgresRepository) RecordFailedAccess(ctx context.Context, id uuid.UUID, maxAttempts int, lockoutFor time.Duration) (*time.Time, error) {
	query := `
		UPDATE users
		SET access_failed_count = CASE
		        WHEN access_failed_count + 1 >= $2 THEN 0
		        ELSE access_failed_count + 1
		    END,
		    lockout_end = CASE
		        WHEN access_failed_count + 1 >= $2 THEN NOW() + make_interval(secs => $3)
		        ELSE lockout_end
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING lockout_end`

	var lockoutEnd *time.Time
	err := r.pool.QueryRow(ctx, query, id, maxAttempts, lockoutFor.Seconds()).Scan(&lockoutEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("recording failed access: %w", err)
	}

	return lockoutEnd, nil
}

// ResetFailedAccess clears the failed-attempt counter and any lockout.
func (r *PostgresRepository) ResetFailedAccess(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET access_failed_count = 0, lockout_end = NULL, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("resetting failed access: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
