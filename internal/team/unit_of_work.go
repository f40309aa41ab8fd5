package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// UnitOfWork groups the team reads and validated writes used by the API.
// Each write runs its existence checks and its mutation in one transaction.
type UnitOfWork struct {
	repo Repository
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(repo Repository) *UnitOfWork {
	return &UnitOfWork{repo: repo}
}

// GetCombo returns the teams of a country ordered by name. An empty or
// unknown country yields an empty slice.
func (u *UnitOfWork) GetCombo(ctx context.Context, countryID uuid.UUID) ([]Team, error) {
	if countryID == uuid.Nil {
		return []Team{}, nil
	}

	teams, err := u.repo.ListByCountry(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

// Get returns a single team.
func (u *UnitOfWork) Get(ctx context.Context, id uuid.UUID) (*Team, error) {
	if id == uuid.Nil {
		return nil, ErrTeamNotFound
	}
	return u.repo.GetByID(ctx, id)
}

// Add validates in and persists a new team. Rejections are reported as
// *ValidationError.
func (u *UnitOfWork) Add(ctx context.Context, in Input) (*Team, error) {
	fields := validateInput(in)

	t := newTeam(in)
	err := u.repo.InTx(ctx, func(tx Tx) error {
		fields, err := checkCountry(ctx, tx, in.CountryID, fields)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
		return tx.Insert(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("team added", "teamId", t.ID, "countryId", t.CountryID)
	return t, nil
}

// Update validates in and overwrites the team with id in.ID. Unknown ids
// fail with ErrTeamNotFound. Nothing is written on failure.
func (u *UnitOfWork) Update(ctx context.Context, in Input) (*Team, error) {
	if in.ID == uuid.Nil {
		return nil, ErrTeamNotFound
	}

	fields := validateInput(in)

	t := newTeam(in)
	err := u.repo.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockByID(ctx, in.ID); err != nil {
			return err
		}

		fields, err := checkCountry(ctx, tx, in.CountryID, fields)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
		return tx.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("team updated", "teamId", t.ID)
	return t, nil
}

func newTeam(in Input) *Team {
	t := &Team{
		ID:            in.ID,
		Name:          strings.TrimSpace(in.Name),
		IsImageSquare: in.IsImageSquare,
		CountryID:     in.CountryID,
	}
	if in.Image != nil {
		if img := strings.TrimSpace(*in.Image); img != "" {
			t.Image = &img
		}
	}
	return t
}

func validateInput(in Input) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength)})
	}

	return errs
}

func checkCountry(ctx context.Context, tx Tx, countryID uuid.UUID, fields []FieldError) ([]FieldError, error) {
	if countryID == uuid.Nil {
		return append(fields, FieldError{Field: "countryId", Message: "countryId is required"}), nil
	}

	exists, err := tx.CountryExists(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return append(fields, FieldError{Field: "countryId", Message: "country does not exist"}), nil
	}
	return fields, nil
}
