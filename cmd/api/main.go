package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/linkup-app/linkup-api/pkg/auth"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging/redis"
	"github.com/linkup-app/linkup-api/pkg/metrics"
	"github.com/linkup-app/linkup-api/pkg/noise"

	"github.com/linkup-app/linkup-api/internal/config"
	"github.com/linkup-app/linkup-api/internal/email"
	"github.com/linkup-app/linkup-api/internal/handler"
	authHandler "github.com/linkup-app/linkup-api/internal/handler/auth"
	friendHandler "github.com/linkup-app/linkup-api/internal/handler/friend"
	"github.com/linkup-app/linkup-api/internal/handler/health"
	invitationHandler "github.com/linkup-app/linkup-api/internal/handler/invitation"
	notificationHandler "github.com/linkup-app/linkup-api/internal/handler/notification"
	"github.com/linkup-app/linkup-api/internal/handler/presence"
	"github.com/linkup-app/linkup-api/internal/handler/prometheus"
	"github.com/linkup-app/linkup-api/internal/middleware"
	"github.com/linkup-app/linkup-api/internal/repository/postgres"
	"github.com/linkup-app/linkup-api/internal/router"
	authService "github.com/linkup-app/linkup-api/internal/service/auth"
	friendService "github.com/linkup-app/linkup-api/internal/service/friend"
	invitationService "github.com/linkup-app/linkup-api/internal/service/invitation"
	notificationService "github.com/linkup-app/linkup-api/internal/service/notification"
	presenceService "github.com/linkup-app/linkup-api/internal/service/presence"
	"github.com/linkup-app/linkup-api/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// All log output flows through the noise filter: transport noise is
	// dropped, repeated substantive errors are throttled.
	filter := noise.NewFilter(os.Stdout, cfg.Noise.MaxSameError, cfg.Noise.ResetWindow)
	m := metrics.NewMetrics("linkup", "api")
	filter.OnSuppress(func(pattern string) {
		m.SuppressedDiagnostics.WithLabelValues(pattern).Inc()
	})

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     filter,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	brokerLog := zerolog.New(filter).With().Timestamp().Logger()
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &brokerLog)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	presenceRepo := postgres.NewPresenceRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	friendRepo := postgres.NewFriendRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	var emailer email.Service = email.Noop{}
	if cfg.Email.Enabled {
		emailer = email.NewSMTPService(cfg.Email)
	}

	authSvc := authService.NewService(userRepo, jwtSvc, emailer, log)
	presenceSvc := presenceService.NewService(presenceRepo, broker, log).
		WithShareMinutes(cfg.Presence.ShareDurationMinutes)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, broker, m, log)
	invitationSvc := invitationService.NewService(invitationRepo, presenceSvc, notificationSvc, broker, m, log).
		WithInviteTTL(cfg.Invitation.TTL)
	friendSvc := friendService.NewService(friendRepo, userRepo, notificationSvc, broker, log)

	// Handlers
	handler.RegisterValidators()
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	promH := prometheus.New()

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		health.NewHandler(db),
		presence.NewHandler(presenceSvc),
		invitationHandler.NewHandler(invitationSvc),
		notificationHandler.NewHandler(notificationSvc),
		friendHandler.NewHandler(friendSvc),
		promH,
		router.Config{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background sweeps. Expiry stays correct without them; they bound
	// table growth and keep idle subscribers current.
	go worker.NewPresenceSweepWorker(presenceSvc, cfg.Presence.SweepInterval, log).Start(ctx)
	go worker.NewInvitationCleanupWorker(invitationRepo, cfg.Invitation.Retention, cfg.Invitation.SweepInterval, log).Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
