package group

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

const (
	codeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxCodeRetries = 3
)

// Service creates groups with unique join codes.
type Service struct {
	repo    Repository
	newCode func() (string, error)
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newCode: generateCode}
}

// ListAll returns every group ordered by name.
func (s *Service) ListAll(ctx context.Context) ([]Group, error) {
	return s.repo.ListAll(ctx)
}

// Create stores a new active group administered by adminID. A code collision
// is retried with a fresh code a bounded number of times.
func (s *Service) Create(ctx context.Context, name string, adminID, tournamentID uuid.UUID) (*Group, error) {
	g := &Group{
		Name:         strings.TrimSpace(name),
		AdminID:      adminID,
		TournamentID: tournamentID,
		IsActive:     true,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generating group code: %w", err)
		}
		g.Code = code

		err = s.repo.Create(ctx, g)
		if err == nil {
			slog.Info("group created", "groupId", g.ID, "adminId", adminID, "tournamentId", tournamentID)
			return g, nil
		}
		if !errors.Is(err, ErrDuplicateGroupCode) || attempt > maxCodeRetries {
			return nil, err
		}
		slog.Warn("group code collision, retrying", "attempt", attempt)
	}
}

func generateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
