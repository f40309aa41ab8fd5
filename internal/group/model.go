package group

import (
	"time"

	"github.com/google/uuid"
)

// CodeLength is the length of a generated join code.
const CodeLength = 8

// Group is a private league a user administers within one tournament.
// Other users join it with Code.
type Group struct {
	ID           uuid.UUID
	Name         string
	Code         string
	AdminID      uuid.UUID
	TournamentID uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
