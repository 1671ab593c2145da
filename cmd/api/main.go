// Package main is the entry point for the gigboard API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/gigboard/internal/config"
	"github.com/pkordes/gigboard/internal/feed"
	"github.com/pkordes/gigboard/internal/handler"
	"github.com/pkordes/gigboard/internal/jobs"
	"github.com/pkordes/gigboard/internal/middleware"
	"github.com/pkordes/gigboard/internal/service"
	"github.com/pkordes/gigboard/internal/upstream"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Upstream ---------------------------------------------------------
	client, err := upstream.New(cfg.APIBaseURL, cfg.UpstreamTimeout,
		upstream.WithToken(cfg.APIToken),
		upstream.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create upstream client", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	dates := service.NewDateCache(client, logger)
	events := service.NewEventService(client, dates, logger)
	bands := service.NewBandService(client)
	feeds := feed.NewStore(client, cfg.FeedPageSize, cfg.FeedTTL)

	// --- Jobs -------------------------------------------------------------
	scheduler := jobs.New(logger, cfg.UpstreamTimeout)
	if err := scheduler.Every(cfg.DatesRefreshCron, "refresh-event-dates", dates.Refresh); err != nil {
		slog.Error("invalid DATES_REFRESH_CRON", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Every("@every 1m", "sweep-feeds", func(context.Context) error {
		if n := feeds.Sweep(time.Now()); n > 0 {
			logger.Info("expired feed sessions removed", "count", n)
		}
		return nil
	}); err != nil {
		slog.Error("failed to schedule feed sweep", "error", err)
		os.Exit(1)
	}
	// Warm the date cache so the first calendar render does not wait on upstream.
	go scheduler.RunNow("refresh-event-dates", dates.Refresh)
	scheduler.Start()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize.
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	handler.NewServer(events, bands, feeds, logger).Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a multi-term band search, which may
	// issue several upstream calls each bounded by UpstreamTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout*2 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "upstream", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Stop(ctx); err != nil {
		slog.Warn("scheduler did not stop cleanly", "error", err)
	}
	slog.Info("server stopped")
}
