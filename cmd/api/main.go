package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/promotion-manager/api/controllers"
	"github.com/angelmondragon/promotion-manager/api/routes"
	"github.com/angelmondragon/promotion-manager/internal/auth"
	"github.com/angelmondragon/promotion-manager/internal/campaigns"
	"github.com/angelmondragon/promotion-manager/internal/missions"
	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/internal/users"
	"github.com/angelmondragon/promotion-manager/pkg/auth/session"
	"github.com/angelmondragon/promotion-manager/pkg/config"
	"github.com/angelmondragon/promotion-manager/pkg/db"
	"github.com/angelmondragon/promotion-manager/pkg/logger"
	"github.com/angelmondragon/promotion-manager/pkg/metrics"
	"github.com/angelmondragon/promotion-manager/pkg/migrate"
	"github.com/angelmondragon/promotion-manager/pkg/redis"
	"github.com/angelmondragon/promotion-manager/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gate := policy.NewGate(logg, metrics.NewPolicyMetrics(registry))
	hasher := security.NewHasher(cfg.Password)

	userRepo := users.NewRepository(dbClient.DB())
	campaignRepo := campaigns.NewRepository(dbClient.DB())
	missionRepo := missions.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Passwords:      hasher,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}

	registerService, err := auth.NewRegisterServiceFromClient(dbClient, hasher, gate)
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:    userRepo,
		Records: missionRepo,
		Hasher:  hasher,
		Gate:    gate,
	})
	if err != nil {
		return err
	}

	campaignService, err := campaigns.NewService(campaigns.ServiceParams{
		Repo:    campaignRepo,
		Records: missionRepo,
		Tx:      dbClient,
		Gate:    gate,
	})
	if err != nil {
		return err
	}

	missionService, err := missions.NewService(missionRepo, campaignRepo, gate)
	if err != nil {
		return err
	}

	if cfg.Bootstrap.Enabled() {
		created, err := registerService.Bootstrap(ctx, cfg.Bootstrap)
		if err != nil {
			return err
		}
		bootCtx := logg.WithFields(ctx, map[string]any{"username": cfg.Bootstrap.Username, "created": created})
		logg.Info(bootCtx, "bootstrap administrator checked")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Registry: registry,
			Health: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
			},
			Sessions:        sessionManager,
			RateLimiter:     redisClient,
			Actors:          userRepo,
			AuthService:     authService,
			RegisterService: registerService,
			CampaignService: campaignService,
			MissionService:  missionService,
			UserService:     userService,
		}),
	}

	serveCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(serveCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(serveCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
