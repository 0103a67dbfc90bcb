package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicebridge/internal/app"
	"voicebridge/internal/config"
	"voicebridge/internal/handler"
	transport "voicebridge/internal/http"
	"voicebridge/internal/logger"
	"voicebridge/internal/snowflake"
)

// @title VoiceBridge API
// @version 1.0
// @description Multi-language announcement translation and speech synthesis.
// @BasePath /api
func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "module", "main", "action", "init", "resource", "config", "result", "failed", "error", err)
		os.Exit(1)
	}
	if err := snowflake.Init(cfg.NodeID); err != nil {
		logger.Error("snowflake init", "module", "main", "action", "init", "resource", "snowflake", "result", "failed", "error", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("app init", "module", "main", "action", "init", "resource", "app", "result", "failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := transport.NewRouter(transport.RouterDeps{
		Announcements: handler.NewAnnouncementHandler(a.Service, cfg.PublicBaseURL, cfg.MaxUploadBytes),
		Media:         handler.NewMediaHandler(a.Local, cfg.MediaURL),
		Health:        handler.NewHealthHandler(a.DB),
		Metrics:       a.Metrics,
		Gatherer:      a.Registry,
		StaticDir:     cfg.StaticDir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "module", "main", "action", "start", "resource", "http", "result", "ok",
			"addr", cfg.Addr, "version", config.AppVersion)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "module", "main", "action", "start", "resource", "http", "result", "failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "module", "main", "action", "stop", "resource", "http", "result", "ok")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "module", "main", "action", "stop", "resource", "http", "result", "failed", "error", err)
	}
}
