package team

import (
	"time"

	"github.com/google/uuid"
)

// MaxNameLength is the longest team name accepted, in characters.
const MaxNameLength = 100

// Team represents a row in the teams table.
type Team struct {
	ID              uuid.UUID
	Name            string
	Image           *string
	IsImageSquare   bool
	CountryID       uuid.UUID
	TournamentCount int // derived from tournament_teams
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Input is the caller-supplied shape for Add and Update. ID is ignored by Add.
type Input struct {
	ID            uuid.UUID
	Name          string
	Image         *string
	IsImageSquare bool
	CountryID     uuid.UUID
}
