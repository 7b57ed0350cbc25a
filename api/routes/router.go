package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/promotion-manager/api/controllers"
	"github.com/angelmondragon/promotion-manager/api/middleware"
	"github.com/angelmondragon/promotion-manager/internal/auth"
	"github.com/angelmondragon/promotion-manager/internal/campaigns"
	"github.com/angelmondragon/promotion-manager/internal/missions"
	"github.com/angelmondragon/promotion-manager/internal/users"
	"github.com/angelmondragon/promotion-manager/pkg/auth/session"
	"github.com/angelmondragon/promotion-manager/pkg/config"
	"github.com/angelmondragon/promotion-manager/pkg/logger"
	"github.com/angelmondragon/promotion-manager/pkg/metrics"
)

// Params carries everything the router wires into handlers.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Health   map[string]controllers.Pinger

	Sessions    session.Checker
	RateLimiter middleware.RateLimitStore
	Actors      middleware.UserLookup

	AuthService     auth.Service
	RegisterService auth.RegisterService
	CampaignService campaigns.Service
	MissionService  missions.Service
	UserService     users.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var httpMetrics *metrics.HTTPMetrics
	if p.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(p.Registry)
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Health, logg))
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	authenticated := middleware.Auth(cfg.JWT, p.Sessions, logg)
	resolve := middleware.ResolveActor(p.Actors, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Metrics(httpMetrics))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).
				Post("/login", controllers.AuthLogin(p.AuthService, logg))
			r.With(
				middleware.AuthRateLimit(registerPolicy, p.RateLimiter, logg),
				middleware.OptionalAuth(cfg.JWT, p.Sessions, logg),
				resolve,
			).Post("/register", controllers.AuthRegister(p.RegisterService, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
			r.With(authenticated).Post("/logout", controllers.AuthLogout(p.AuthService, logg))
			r.With(authenticated).Get("/me", controllers.AuthMe(p.AuthService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated, resolve)

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", controllers.CampaignList(p.CampaignService, logg))
				r.Post("/", controllers.CampaignCreate(p.CampaignService, logg))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", controllers.CampaignGet(p.CampaignService, logg))
					r.Put("/", controllers.CampaignUpdate(p.CampaignService, logg))
					r.Delete("/", controllers.CampaignDelete(p.CampaignService, logg))
					r.Get("/stats", controllers.CampaignStats(p.CampaignService, logg))
					r.Get("/missions", controllers.CampaignMissions(p.MissionService, logg))
				})
			})

			r.Route("/missions", func(r chi.Router) {
				r.Get("/", controllers.MissionList(p.MissionService, logg))
				r.Post("/", controllers.MissionCreate(p.MissionService, logg))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", controllers.MissionGet(p.MissionService, logg))
					r.Put("/", controllers.MissionUpdate(p.MissionService, logg))
					r.Delete("/", controllers.MissionDelete(p.MissionService, logg))
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(p.UserService, logg))
				r.Post("/", controllers.UserCreate(p.UserService, logg))
				r.Get("/promoters", controllers.UserPromoters(p.UserService, logg))
				r.Get("/stats", controllers.UserStats(p.UserService, logg))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", controllers.UserGet(p.UserService, logg))
					r.Put("/", controllers.UserUpdate(p.UserService, logg))
					r.Delete("/", controllers.UserDelete(p.UserService, logg))
					r.Get("/performance", controllers.UserPerformance(p.UserService, logg))
				})
			})
		})
	})

	return r
}
