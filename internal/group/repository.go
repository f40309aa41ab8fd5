package group

import (
	"context"
	"errors"
)

var (
	ErrDuplicateGroupCode = errors.New("group code already exists")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrAdminNotFound      = errors.New("admin user not found")
)

// Repository provides operations on the groups table.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	ListAll(ctx context.Context) ([]Group, error)
}
