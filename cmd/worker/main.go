package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/mascotienda/backend-tienda/internal/config"
	"github.com/mascotienda/backend-tienda/internal/db"
	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/events"
	"github.com/mascotienda/backend-tienda/internal/notify"
	"github.com/mascotienda/backend-tienda/internal/obs"
	"github.com/mascotienda/backend-tienda/internal/order"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for tasks")
	}

	policy := pricing.ParseRoundingPolicy(cfg.RoundingPolicy)
	advisory := delivery.Resolver{AgencyFeeMin: cfg.AgencyFeeMin, AgencyFeeMax: cfg.AgencyFeeMax}
	agencyAdvice := advisory.AdvisoryLabel(cfg.CurrencyCode)

	worker := notify.ConfirmationWorker{
		Store: order.Store{Pool: pool},
		Composer: notify.Composer{
			StoreName:      cfg.StoreName,
			WhatsAppNumber: cfg.WhatsAppNumber,
			Currency:       cfg.CurrencyCode,
			AgencyAdvice:   agencyAdvice,
			Policy:         policy,
		},
		Sender: notify.LogSender{Logger: logger},
		Events: &events.Bus{Store: &events.PgStore{Pool: pool}},
		Logger: logger,
	}

	srv := asynq.NewServer(taskConn, asynq.Config{
		Concurrency: envInt("WORKER_CONCURRENCY", 5),
		Queues:      map[string]int{"default": 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskOrderConfirmation, worker.Handle)

	logger.Info().Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
