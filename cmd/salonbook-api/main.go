package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avelar-dev/salonbook/internal/engine"
	"github.com/avelar-dev/salonbook/internal/handlers"
	"github.com/avelar-dev/salonbook/internal/notify"
	"github.com/avelar-dev/salonbook/internal/outbox"
	"github.com/avelar-dev/salonbook/internal/payments"
	"github.com/avelar-dev/salonbook/internal/policy"
	"github.com/avelar-dev/salonbook/internal/storage"
	"github.com/avelar-dev/salonbook/libs/config"
	"github.com/avelar-dev/salonbook/libs/db"
	"github.com/avelar-dev/salonbook/libs/httpx"
	"github.com/avelar-dev/salonbook/libs/kafkax"
	otelx "github.com/avelar-dev/salonbook/libs/otel"
	"github.com/avelar-dev/salonbook/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "salonbook-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	appts := storage.NewAppointmentRepository(pool)
	salons := storage.NewSalonRepository(pool)
	services := storage.NewServiceRepository(pool)
	hours := storage.NewWorkingHoursRepository(pool)
	timeOff := storage.NewTimeOffRepository(pool)
	reminderRepo := storage.NewReminderRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	var charger engine.Charger
	if key := strings.TrimSpace(config.String("STRIPE_SECRET_KEY", "")); key != "" {
		charger = payments.NewStripeCharger(key, config.String("STRIPE_CURRENCY", "usd"), logger)
		logger.Info("fee collection enabled (stripe)")
	} else {
		charger = payments.NewNoopCharger(logger)
	}

	fees := policy.DefaultFees()
	if hrs := config.Int("LATE_CANCELLATION_THRESHOLD_HOURS", 0); hrs > 0 {
		fees.LateCancellationThreshold = time.Duration(hrs) * time.Hour
	}

	eng := engine.New(engine.Deps{
		Appointments: appts,
		WorkingHours: hours,
		Services:     services,
		Salons:       salons,
		TimeOff:      timeOff,
		Reminders:    reminderRepo,
		Notifier:     notify.NewOutboxNotifier(outboxRepo),
		Charger:      charger,
		Logger:       logger,
	}, engine.Config{
		Fees:     fees,
		SlotStep: config.Duration("SLOT_STEP", engine.DefaultSlotStep),
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handlers.NewBookingHandler(eng, appts, logger).Register(mux)
	handlers.NewSalonHandler(salons, services, hours, timeOff, logger).Register(mux)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
			MaxAge:         time.Duration(config.Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 10*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "salonbook-api")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func isTruthy(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
