package client

import (
	"context"
	"net/url"
	"time"
)

// Account is a registered user as returned by the account endpoints.
type Account struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	EmailConfirmed bool     `json:"emailConfirmed"`
	Roles          []string `json:"roles"`
	CreatedAt      string   `json:"createdAt"`
}

// SessionInfo describes the session created by Login.
type SessionInfo struct {
	UserID    string    `json:"userId"`
	Remember  bool      `json:"remember"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Me is the signed-in identity.
type Me struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// Country is a catalogue country.
type Country struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamCount int    `json:"teamCount"`
}

// Team is a catalogue team.
type Team struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Image           *string `json:"image"`
	IsImageSquare   bool    `json:"isImageSquare"`
	CountryID       string  `json:"countryId"`
	TournamentCount int     `json:"tournamentCount"`
}

// TeamInput is the body of AddTeam and UpdateTeam. ID is ignored by AddTeam.
type TeamInput struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	Image         *string `json:"image,omitempty"`
	IsImageSquare bool    `json:"isImageSquare"`
	CountryID     string  `json:"countryId"`
}

// Tournament is a catalogue tournament.
type Tournament struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IsActive  bool    `json:"isActive"`
	Remarks   *string `json:"remarks"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	TeamCount int     `json:"teamCount"`
}

// Group is a private league.
type Group struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	AdminID      string `json:"adminId"`
	TournamentID string `json:"tournamentId"`
	IsActive     bool   `json:"isActive"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

func (c *Client) Register(ctx context.Context, email, password string) Result[Account] {
	return Post[Account](ctx, c, "/api/account/register", credentials{Email: email, Password: password})
}

func (c *Client) ConfirmEmail(ctx context.Context, userID, token string) Result[Account] {
	return Post[Account](ctx, c, "/api/account/confirm", map[string]string{"userId": userID, "token": token})
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) Result[struct{}] {
	return Post[struct{}](ctx, c, "/api/account/resend-confirmation", map[string]string{"email": email})
}

// Login signs in. On success the session cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) Result[SessionInfo] {
	return Post[SessionInfo](ctx, c, "/api/account/login", credentials{Email: email, Password: password, Remember: remember})
}

func (c *Client) Logout(ctx context.Context) Result[struct{}] {
	return Post[struct{}](ctx, c, "/api/account/logout", nil)
}

func (c *Client) Me(ctx context.Context) Result[Me] {
	return Get[Me](ctx, c, "/api/account/me")
}

func (c *Client) Countries(ctx context.Context) Result[[]Country] {
	return Get[[]Country](ctx, c, "/api/countries")
}

// TeamCombo lists the teams of a country ordered by name.
func (c *Client) TeamCombo(ctx context.Context, countryID string) Result[[]Team] {
	return Get[[]Team](ctx, c, "/api/teams/combo/"+url.PathEscape(countryID))
}

func (c *Client) Team(ctx context.Context, id string) Result[Team] {
	return Get[Team](ctx, c, "/api/teams/"+url.PathEscape(id))
}

func (c *Client) AddTeam(ctx context.Context, in TeamInput) Result[Team] {
	in.ID = ""
	return Post[Team](ctx, c, "/api/teams", in)
}

func (c *Client) UpdateTeam(ctx context.Context, in TeamInput) Result[Team] {
	return Put[Team](ctx, c, "/api/teams", in)
}

func (c *Client) Tournaments(ctx context.Context) Result[[]Tournament] {
	return Get[[]Tournament](ctx, c, "/api/tournaments")
}

func (c *Client) Groups(ctx context.Context) Result[[]Group] {
	return Get[[]Group](ctx, c, "/api/groups/all")
}

func (c *Client) CreateGroup(ctx context.Context, name, tournamentID string) Result[Group] {
	return Post[Group](ctx, c, "/api/groups", map[string]string{"name": name, "tournamentId": tournamentID})
}
