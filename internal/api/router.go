package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fanleague/fanleague/internal/api/handler"
	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/country"
	"github.com/fanleague/fanleague/internal/metrics"
	"github.com/fanleague/fanleague/internal/tournament"
)

// IdentityService is the identity workflow behind the account, user and
// session endpoints. *auth.Service implements it.
type IdentityService interface {
	handler.AccountService
	handler.UserService
	middleware.Authenticator
}

var _ IdentityService = (*auth.Service)(nil)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.Pinger
	CachePinger handler.Pinger
	Version     string
	OpenAPISpec []byte

	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	Identity    IdentityService
	Countries   country.Repository
	Teams       handler.TeamService
	Tournaments tournament.Repository
	Groups      handler.GroupService

	// AccountLimiter throttles the unauthenticated account endpoints. Nil disables it.
	AccountLimiter *middleware.RateLimiter
	Cookie         handler.CookieConfig
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.CachePinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Identity == nil {
		return r
	}

	throttle := func(h http.Handler) http.Handler { return h }
	if deps.AccountLimiter != nil {
		throttle = deps.AccountLimiter.Middleware
	}
	requireAdmin := middleware.RequireRole(auth.RoleAdmin)

	var rec metrics.Recorder
	if deps.Metrics != nil {
		rec = deps.Metrics
	}
	accountHandler := handler.NewAccountHandler(deps.Identity, rec, deps.Cookie)
	userHandler := handler.NewUserHandler(deps.Identity)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(deps.Identity))

		r.Route("/account", func(r chi.Router) {
			r.With(throttle).Post("/register", accountHandler.Register)
			r.Post("/confirm", accountHandler.Confirm)
			r.With(throttle).Post("/resend-confirmation", accountHandler.ResendConfirmation)
			r.With(throttle).Post("/login", accountHandler.Login)
			r.Post("/logout", accountHandler.Logout)
			r.With(middleware.RequireAuthenticated).Get("/me", accountHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/users", userHandler.FindByEmail)
			r.Get("/users/{id}", userHandler.GetByID)
			r.Post("/users/{id}/roles", userHandler.AddToRole)
			r.Get("/users/{id}/roles/{role}", userHandler.IsInRole)
			r.Get("/roles", userHandler.ListRoles)
			r.Post("/roles", userHandler.EnsureRole)
		})

		if deps.Countries != nil {
			countryHandler := handler.NewCountryHandler(deps.Countries)
			r.Get("/countries", countryHandler.List)
			r.Get("/countries/{id}", countryHandler.GetByID)
			r.With(requireAdmin).Post("/countries", countryHandler.Create)
		}

		if deps.Teams != nil {
			teamHandler := handler.NewTeamHandler(deps.Teams)
			r.Get("/teams/combo/{countryId}", teamHandler.Combo)
			r.Get("/teams/{id}", teamHandler.GetByID)
			r.With(requireAdmin).Post("/teams", teamHandler.Create)
			r.With(requireAdmin).Put("/teams", teamHandler.Update)
		}

		if deps.Tournaments != nil {
			tournamentHandler := handler.NewTournamentHandler(deps.Tournaments)
			r.Get("/tournaments", tournamentHandler.List)
			r.With(requireAdmin).Post("/tournaments", tournamentHandler.Create)
			r.With(requireAdmin).Post("/tournaments/{id}/teams", tournamentHandler.EnrollTeam)
		}

		if deps.Groups != nil {
			groupHandler := handler.NewGroupHandler(deps.Groups)
			r.With(middleware.RequireAuthenticated).Get("/groups/all", groupHandler.ListAll)
			r.With(middleware.RequireAuthenticated).Post("/groups", groupHandler.Create)
		}
	})

	return r
}
