package country

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCountryNotFound is returned when a country record is not found.
var ErrCountryNotFound = errors.New("country not found")

// ErrDuplicateCountryName is returned when a country with the same name already exists.
var ErrDuplicateCountryName = errors.New("country name already exists")

// Repository provides operations on the countries table.
type Repository interface {
	Create(ctx context.Context, country *Country) error
	GetByID(ctx context.Context, id uuid.UUID) (*Country, error)
	List(ctx context.Context) ([]Country, error)
}
