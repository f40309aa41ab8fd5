package team

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides reads on the teams table and transactional writes.
type Repository interface {
	ListByCountry(ctx context.Context, countryID uuid.UUID) ([]Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	// InTx runs fn in a single transaction, committing only if fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of team writes available inside a transaction.
type Tx interface {
	CountryExists(ctx context.Context, countryID uuid.UUID) (bool, error)
	// LockByID loads the team and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*Team, error)
	Insert(ctx context.Context, t *Team) error
	Update(ctx context.Context, t *Team) error
}
