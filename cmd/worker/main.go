package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging/redis"
	"github.com/linkup-app/linkup-api/pkg/noise"

	"github.com/linkup-app/linkup-api/internal/repository/postgres"
	presenceService "github.com/linkup-app/linkup-api/internal/service/presence"
	"github.com/linkup-app/linkup-api/internal/worker"
)

// Config is read from the environment with the LINKUP_WORKER prefix.
type Config struct {
	DatabaseURL         string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL            string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	HealthPort          int           `envconfig:"HEALTH_PORT" default:"8081"`
	InvitationRetention time.Duration `envconfig:"INVITATION_RETENTION" default:"720h"`
	InvitationSweep     time.Duration `envconfig:"INVITATION_SWEEP" default:"1h"`
	PresenceSweep       time.Duration `envconfig:"PRESENCE_SWEEP" default:"1m"`
	NoiseMaxSameError   int           `envconfig:"NOISE_MAX_SAME_ERROR" default:"3"`
	NoiseResetWindow    time.Duration `envconfig:"NOISE_RESET_WINDOW" default:"30s"`
}

func setupHealthCheck(port int, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Fatal(err, "health check server failed")
		}
	}()
}

func main() {
	var cfg Config
	if err := envconfig.Process("LINKUP_WORKER", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	filter := noise.NewFilter(os.Stdout, cfg.NoiseMaxSameError, cfg.NoiseResetWindow)
	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     filter,
	})

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	brokerLog := zerolog.New(filter).With().Timestamp().Logger()
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &brokerLog)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	presenceRepo := postgres.NewPresenceRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	presenceSvc := presenceService.NewService(presenceRepo, broker, log)

	setupHealthCheck(cfg.HealthPort, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down...")
		cancel()
	}()

	go worker.NewInvitationCleanupWorker(invitationRepo, cfg.InvitationRetention, cfg.InvitationSweep, log).Start(ctx)

	log.Info("worker started")
	worker.NewPresenceSweepWorker(presenceSvc, cfg.PresenceSweep, log).Start(ctx)
}
