package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRoleRepository implements RoleRepository using pgxpool.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository backed by the given connection pool.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// Ensure inserts the role unless one with the same normalized name exists.
// The unique index on normalized_name makes concurrent calls converge on a
// single row.
func (r *PostgresRoleRepository) Ensure(ctx context.Context, name string) error {
	query := `
		INSERT INTO roles (name, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, name, NormalizeRoleName(name)); err != nil {
		return fmt.Errorf("ensuring role: %w", err)
	}
	return nil
}

// GetByNormalizedName retrieves a role by its normalized name.
func (r *PostgresRoleRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*Role, error) {
	query := `
		SELECT id, name, normalized_name, created_at
		FROM roles
		WHERE normalized_name = $1`

	var role Role
	err := r.pool.QueryRow(ctx, query, normalizedName).Scan(
		&role.ID, &role.Name, &role.NormalizedName, &role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("querying role: %w", err)
	}

	return &role, nil
}

// List retrieves all roles ordered by name.
func (r *PostgresRoleRepository) List(ctx context.Context) ([]Role, error) {
	query := `
		SELECT id, name, normalized_name, created_at
		FROM roles
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.NormalizedName, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role rows: %w", err)
	}

	if roles == nil {
		roles = []Role{}
	}

	return roles, nil
}

// AddMember grants the role to the user. Granting an existing membership is a no-op.
func (r *PostgresRoleRepository) AddMember(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, roleID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "user_roles_role_id_fkey" {
				return ErrRoleNotFound
			}
			return ErrUserNotFound
		}
		return fmt.Errorf("adding role member: %w", err)
	}
	return nil
}

// IsMember reports whether the user holds the role.
func (r *PostgresRoleRepository) IsMember(ctx context.Context, userID uuid.UUID, normalizedName string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.normalized_name = $2
		)`

	var member bool
	if err := r.pool.QueryRow(ctx, query, userID, normalizedName).Scan(&member); err != nil {
		return false, fmt.Errorf("checking role membership: %w", err)
	}
	return member, nil
}
