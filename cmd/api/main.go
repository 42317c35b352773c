package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/profacthq/profact-api/internal/cache"
	"github.com/profacthq/profact-api/internal/config"
	"github.com/profacthq/profact-api/internal/database"
	"github.com/profacthq/profact-api/internal/dedup"
	"github.com/profacthq/profact-api/internal/limiter"
	"github.com/profacthq/profact-api/internal/modules/plan"
	"github.com/profacthq/profact-api/internal/modules/subscription"
	"github.com/profacthq/profact-api/internal/modules/user"
	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/notification/templates"
	"github.com/profacthq/profact-api/internal/server"
	"github.com/profacthq/profact-api/internal/token"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8000"`
}

const (
	loginRateLimit  = 5
	loginRateWindow = time.Minute
	oauthCodeTTL    = 5 * time.Minute
	expirySweepTick = time.Hour
)

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg == nil {
			logger.Error("failed to load configuration")
			os.Exit(1)
		}
		logger.Info("configuration loaded", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		if dbPool == nil {
			logger.Error("failed to connect to postgres")
			os.Exit(1)
		}
		hooks.OnStop(dbPool.Close)
		logger.Info("connected to postgres")

		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		if redisClient == nil {
			logger.Error("failed to connect to redis")
			os.Exit(1)
		}
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("connected to redis")

		// --- Token pipeline ---
		accessTTL := time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
		refreshTTL := time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour
		revocationTTL := time.Duration(cfg.JWT.RevocationTTLHours) * time.Hour

		issuer := token.NewIssuer(cfg.JWT.Secret, accessTTL, refreshTTL)
		revocations := token.NewRedisRevocationStore(redisClient, revocationTTL, logger)
		validator := token.NewValidator(cfg.JWT.Secret, revocations)

		loginLimiter := limiter.NewRedisLimiter(redisClient, loginRateLimit, loginRateWindow)
		oauthCodes := dedup.NewRedisClaimStore(redisClient, oauthCodeTTL)

		// --- Notifications ---
		mailer := notification.NewSMTPMailer(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger)
		notifier := notification.NewService(logger, mailer, templates.NewEngine())

		// --- Module Initialization (Bottom-Up) ---
		userRepo := user.NewRepository(dbPool)
		userService := user.NewService(&user.Config{
			Repo:        userRepo,
			Logger:      logger,
			Config:      cfg,
			Issuer:      issuer,
			Validator:   validator,
			Revocations: revocations,
			Codes:       oauthCodes,
			Notifier:    notifier,
			Exchangers:  user.NewExchangers(cfg),
		})

		planRepo := plan.NewRepository(dbPool)
		planService := plan.NewService(&plan.Config{
			Repo:   planRepo,
			Logger: logger,
		})

		subRepo := subscription.NewRepository(dbPool)
		subService := subscription.NewService(&subscription.Config{
			Repo:     subRepo,
			Plans:    planService,
			Users:    userService,
			Notifier: notifier,
			Logger:   logger,
		})

		router := server.New(cfg, logger, server.Services{
			User:         userService,
			Plan:         planService,
			Subscription: subService,
			LoginLimiter: loginLimiter,
		})

		sweepCtx, stopSweep := context.WithCancel(context.Background())
		hooks.OnStop(stopSweep)

		hooks.OnStart(func() {
			subService.StartExpirySweep(sweepCtx, expirySweepTick)
			logger.Info(fmt.Sprintf("starting server on port %d", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				logger.Error("server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
