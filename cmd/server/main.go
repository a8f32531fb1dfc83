package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"flights_backend/internal/auth"
	"flights_backend/internal/config"
	"flights_backend/internal/flights"
	"flights_backend/internal/logger"
	"flights_backend/internal/metrics"
	"flights_backend/internal/middleware"
	"flights_backend/internal/notify"
	"flights_backend/internal/routes"
	"flights_backend/internal/session"
	"flights_backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging to file
	if err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	logrus.WithField("driver", cfg.Database.Driver).Info("Connected to database")

	sessions, closeSessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeSessions()

	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	reg := metrics.NewRegistry()
	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.Timeout, reg)
	st := store.New(db)

	router := routes.SetupRouter(routes.Deps{
		DB:          db,
		Store:       st,
		Flights:     flights.NewService(st, dispatcher, reg),
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Sessions:    sessions,
		ServiceKey:  cfg.Auth.ServiceKey,
		Metrics:     reg,
		RateLimiter: middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
		AccessLog:   true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           middleware.EnableCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", cfg.HTTP.Addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if werr := dispatcher.Shutdown(shutdownCtx); werr != nil {
			logrus.WithError(werr).Warn("pending notifications abandoned")
		}
		return err
	})
	return g.Wait()
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.Backend != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}
	rs := session.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}))
	closeStore := func() {
		if err := rs.Close(); err != nil {
			logrus.WithError(err).Warn("closing redis client")
		}
	}
	if err := rs.Ping(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}
	logrus.WithField("addr", cfg.RedisAddr).Info("Token blacklist stored in Redis")
	return rs, closeStore, nil
}

func newNotifier(cfg *config.Config) (notify.Notifier, func()) {
	switch cfg.Notify.Transport {
	case "kafka":
		kn := notify.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		return kn, func() {
			if err := kn.Close(); err != nil {
				logrus.WithError(err).Warn("closing kafka writer")
			}
		}
	case "http":
		client := &http.Client{Timeout: cfg.Notify.Timeout}
		return notify.NewHTTPNotifier(cfg.Notify.StateServiceURL, cfg.Auth.ServiceKey, client), func() {}
	default:
		return notify.Nop{}, func() {}
	}
}
