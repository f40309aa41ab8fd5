package country

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new country record.
func (r *PostgresRepository) Create(ctx context.Context, c *Country) error {
	query := `
		INSERT INTO countries (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCountryName
		}
		return fmt.Errorf("inserting country: %w", err)
	}

	return nil
}

// GetByID retrieves a single country with its team count.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Country, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM teams t WHERE t.country_id = c.id)
		FROM countries c
		WHERE c.id = $1`

	var c Country
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.TeamCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCountryNotFound
		}
		return nil, fmt.Errorf("querying country: %w", err)
	}

	return &c, nil
}

// List retrieves all countries ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Country, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM teams t WHERE t.country_id = c.id)
		FROM countries c
		ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing countries: %w", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.TeamCount); err != nil {
			return nil, fmt.Errorf("scanning country row: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating country rows: %w", err)
	}

	if countries == nil {
		countries = []Country{}
	}

	return countries, nil
}

