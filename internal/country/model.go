package country

import (
	"time"

	"github.com/google/uuid"
)

// Country represents a row in the countries table.
type Country struct {
	ID        uuid.UUID
	Name      string
	TeamCount int // derived
	CreatedAt time.Time
	UpdatedAt time.Time
}
