package api_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/country"
	"github.com/fanleague/fanleague/internal/group"
	"github.com/fanleague/fanleague/internal/team"
	"github.com/fanleague/fanleague/internal/tournament"
)

// stubIdentity resolves the sessions in its map; everything else is a no-op.
type stubIdentity struct {
	sessions map[string]*auth.Identity
	user     *auth.User
}

func (s *stubIdentity) Register(_ context.Context, email, _ string) (*auth.User, error) {
	return &auth.User{ID: uuid.New(), Email: email}, nil
}

func (s *stubIdentity) GetUserByID(_ context.Context, _ uuid.UUID) (*auth.User, error) {
	if s.user == nil {
		return nil, auth.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubIdentity) GetUserByEmail(_ context.Context, _ string) (*auth.User, error) {
	if s.user == nil {
		return nil, auth.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubIdentity) ConfirmEmail(_ context.Context, _ *auth.User, _ string) error { return nil }
func (s *stubIdentity) ResendConfirmation(_ context.Context, _ string) error         { return nil }

func (s *stubIdentity) Login(_ context.Context, _ auth.LoginRequest) (*auth.Session, error) {
	return nil, auth.ErrInvalidCredentials
}

func (s *stubIdentity) Logout(_ context.Context, _ string) error          { return nil }
func (s *stubIdentity) EnsureRole(_ context.Context, _ string) error      { return nil }
func (s *stubIdentity) ListRoles(_ context.Context) ([]auth.Role, error) { return nil, nil }

func (s *stubIdentity) AddUserToRole(_ context.Context, _ *auth.User, _ string) error { return nil }

func (s *stubIdentity) IsUserInRole(_ context.Context, _ *auth.User, _ string) (bool, error) {
	return false, nil
}

func (s *stubIdentity) Authenticate(_ context.Context, sessionID string) (*auth.Identity, error) {
	if id, ok := s.sessions[sessionID]; ok {
		return id, nil
	}
	return nil, auth.ErrSessionNotFound
}

type noopCountryRepo struct{}

func (noopCountryRepo) Create(_ context.Context, _ *country.Country) error { return nil }
func (noopCountryRepo) GetByID(_ context.Context, _ uuid.UUID) (*country.Country, error) {
	return nil, country.ErrCountryNotFound
}
func (noopCountryRepo) List(_ context.Context) ([]country.Country, error)    { return nil, nil }

type noopTeamService struct{}

func (noopTeamService) GetCombo(_ context.Context, _ uuid.UUID) ([]team.Team, error) {
	return []team.Team{}, nil
}
func (noopTeamService) Get(_ context.Context, _ uuid.UUID) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}
func (noopTeamService) Add(_ context.Context, _ team.Input) (*team.Team, error) {
	return &team.Team{ID: uuid.New()}, nil
}
func (noopTeamService) Update(_ context.Context, _ team.Input) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}

type noopTournamentRepo struct{}

func (noopTournamentRepo) Create(_ context.Context, _ *tournament.Tournament) error { return nil }
func (noopTournamentRepo) GetByID(_ context.Context, _ uuid.UUID) (*tournament.Tournament, error) {
	return nil, tournament.ErrTournamentNotFound
}
func (noopTournamentRepo) List(_ context.Context) ([]tournament.Tournament, error) { return nil, nil }
func (noopTournamentRepo) EnrollTeam(_ context.Context, _, _ uuid.UUID) error     { return nil }

type noopGroupService struct{}

func (noopGroupService) ListAll(_ context.Context) ([]group.Group, error) { return nil, nil }
func (noopGroupService) Create(_ context.Context, name string, adminID, tournamentID uuid.UUID) (*group.Group, error) {
	return &group.Group{ID: uuid.New(), Name: name, AdminID: adminID, TournamentID: tournamentID}, nil
}
