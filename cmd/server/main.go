package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitsync/internal/app"
	"habitsync/internal/config"
	"habitsync/internal/feed"
	"habitsync/internal/handlers"
	"habitsync/internal/logger"
	mw "habitsync/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config is not available yet
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer a.Close()

	limiter := mw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx)

	router := handlers.NewRouter(handlers.Deps{
		DB:          a.DB,
		Logger:      log,
		Auth:        mw.NewAuthMiddleware([]byte(cfg.JWT.Secret), cfg.JWT.TTL),
		RateLimiter: limiter,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Broker:      a.Broker,
		Users:       a.Users,
		Habits:      a.Habits,
		Scheduler:   a.Scheduler,
		Todos:       a.Todos,
		Notes:       a.Notes,
		Stats:       a.Stats,
		Export:      a.Export,
	})

	srv := newServer(":"+cfg.Server.Port, router, a.Broker)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// newServer builds the HTTP server. Shutdown closes the broker so open habit
// streams return instead of holding the server until the deadline.
func newServer(addr string, handler http.Handler, broker *feed.Broker) *http.Server {
	// No WriteTimeout: the habit stream stays open.
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	srv.RegisterOnShutdown(broker.Close)
	return srv
}
