package tournament

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTournamentNotFound is returned when a tournament record is not found.
var ErrTournamentNotFound = errors.New("tournament not found")

// ErrDuplicateTournamentName is returned when a tournament with the same name already exists.
var ErrDuplicateTournamentName = errors.New("tournament name already exists")

// ErrTeamNotFound is returned by EnrollTeam when the team does not exist.
var ErrTeamNotFound = errors.New("team not found")

// Repository provides operations on tournaments and their enrolled teams.
type Repository interface {
	Create(ctx context.Context, t *Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tournament, error)
	List(ctx context.Context) ([]Tournament, error)
	// EnrollTeam adds the team to the tournament. Enrolling twice is a no-op.
	EnrollTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error
}
