package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"towncrier/internal/catalog"
	"towncrier/internal/config"
	"towncrier/internal/history"
	"towncrier/internal/httpapi"
	"towncrier/internal/hub"
	"towncrier/internal/logger"
	"towncrier/internal/projection"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	cat, err := catalog.Load(cfg.ScriptDir)
	if err != nil {
		zl.Fatal("load scripts", zap.Error(err))
	}

	store, err := history.Open(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("open history store", zap.Error(err))
	}
	if store == nil {
		zl.Info("game record archive disabled (no DATABASE_URL)")
	}

	archive := func(roomID, scriptID, result string, snap *projection.Snapshot) {
		if err := store.Save(roomID, scriptID, result, snap); err != nil {
			zl.Error("archive game", zap.String("room_id", roomID), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, cat, archive, zl)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: httpapi.SetupRoutes(h, cat, store, limiter, zl),
	}

	go func() {
		zl.Info("listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
	h.Inbox() <- hub.ShutdownHub{}
}
