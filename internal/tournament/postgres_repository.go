package tournament

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

const tournamentColumns = `
		t.id, t.name, t.is_active, t.remarks, t.start_date, t.end_date, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM tournament_teams tt WHERE tt.tournament_id = t.id)`

func scanTournament(row pgx.Row, t *Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.IsActive, &t.Remarks, &t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt,
		&t.TeamCount,
	)
}

// Create inserts a new tournament record.
func (r *PostgresRepository) Create(ctx context.Context, t *Tournament) error {
	query := `
		INSERT INTO tournaments (name, is_active, remarks, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, t.Name, t.IsActive, t.Remarks, t.StartDate, t.EndDate).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTournamentName
		}
		return fmt.Errorf("inserting tournament: %w", err)
	}

	t.TeamCount = 0
	return nil
}

// GetByID retrieves a single tournament by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments t
		WHERE t.id = $1`

	var t Tournament
	if err := scanTournament(r.pool.QueryRow(ctx, query, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("querying tournament: %w", err)
	}

	return &t, nil
}

// List retrieves all tournaments, active ones first, then by start date.
func (r *PostgresRepository) List(ctx context.Context) ([]Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments t
		ORDER BY t.is_active DESC, t.start_date ASC, t.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []Tournament
	for rows.Next() {
		var t Tournament
		if err := scanTournament(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tournament rows: %w", err)
	}

	if tournaments == nil {
		tournaments = []Tournament{}
	}

	return tournaments, nil
}

// EnrollTeam links a team to a tournament.
func (r *PostgresRepository) EnrollTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error {
	query := `
		INSERT INTO tournament_teams (tournament_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, team_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, tournamentID, teamID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "tournament_teams_team_id_fkey" {
				return ErrTeamNotFound
			}
			return ErrTournamentNotFound
		}
		return fmt.Errorf("enrolling team: %w", err)
	}

	return nil
}
