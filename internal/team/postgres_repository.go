package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const teamColumns = `
		t.id, t.name, t.image, t.is_image_square, t.country_id, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM tournament_teams tt WHERE tt.team_id = t.id)`

func scanTeam(row pgx.Row, t *Team) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Image, &t.IsImageSquare, &t.CountryID, &t.CreatedAt, &t.UpdatedAt,
		&t.TournamentCount,
	)
}

// ListByCountry retrieves the teams of a country ordered by name.
func (r *PostgresRepository) ListByCountry(ctx context.Context, countryID uuid.UUID) ([]Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.country_id = $1
		ORDER BY t.name ASC, t.id ASC`

	rows, err := r.pool.Query(ctx, query, countryID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.id = $1`

	var t Team
	if err := scanTeam(r.pool.QueryRow(ctx, query, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// InTx runs fn inside a pgx transaction.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

type postgresTx struct {
	tx pgx.Tx
}

// CountryExists checks the country and key-share locks it so it cannot be
// deleted before the transaction commits.
func (p *postgresTx) CountryExists(ctx context.Context, countryID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := p.tx.QueryRow(ctx, `SELECT id FROM countries WHERE id = $1 FOR KEY SHARE`, countryID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking country: %w", err)
	}
	return true, nil
}

func (p *postgresTx) LockByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.id = $1
		FOR UPDATE OF t`

	var t Team
	if err := scanTeam(p.tx.QueryRow(ctx, query, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("locking team: %w", err)
	}
	return &t, nil
}

func (p *postgresTx) Insert(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (name, image, is_image_square, country_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := p.tx.QueryRow(ctx, query, t.Name, t.Image, t.IsImageSquare, t.CountryID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}
	t.TournamentCount = 0
	return nil
}

func (p *postgresTx) Update(ctx context.Context, t *Team) error {
	query := `
		UPDATE teams
		SET name = $2, image = $3, is_image_square = $4, country_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at,
		          (SELECT COUNT(*) FROM tournament_teams tt WHERE tt.team_id = teams.id)`

	err := p.tx.QueryRow(ctx, query, t.ID, t.Name, t.Image, t.IsImageSquare, t.CountryID).
		Scan(&t.CreatedAt, &t.UpdatedAt, &t.TournamentCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("updating team: %w", err)
	}
	return nil
}
