package tournament

import (
	"time"

	"github.com/google/uuid"
)

// Tournament represents a row in the tournaments table.
type Tournament struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	Remarks   *string
	StartDate time.Time
	EndDate   time.Time
	TeamCount int // derived from tournament_teams
	CreatedAt time.Time
	UpdatedAt time.Time
}
