package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"

	"pantryapp"
	"pantryapp/app"
	"pantryapp/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serverConfig pantryapp.ServerConfig
	if err := envdecode.Decode(&serverConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	opts, err := app.OptionsFromEnv()
	if err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	telemetry, err := pantryapp.NewTelemetry(ctx, serverConfig.OtelEnabled)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()
	opts.Telemetry = telemetry
	opts.TracerName = pantryapp.TracerNameServer

	a, err := app.New(ctx, opts)
	if err != nil {
		slog.Error("SETUP: Failed to build pantry", "error", err)
		return
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("SETUP: Failed to close store", "error", err)
		}
	}()

	logger, cleanup, err := newActionLogger(serverConfig.ActionLogDir)
	if err != nil {
		slog.Error("SETUP: Failed to create action logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush action log", "error", err)
		}
	}()

	ctrl, err := a.NewController(ctx, logger)
	if err != nil {
		slog.Error("SETUP: Failed to load pantry", "error", err)
		return
	}
	slog.Info("SETUP: Pantry loaded", "items_count", len(ctrl.Snapshot().Pantry))
	if serverConfig.Debug {
		pantryapp.Dump("initial state", ctrl.Snapshot())
	}

	srv, err := web.New(ctrl)
	if err != nil {
		slog.Error("SETUP: Failed to parse page template", "error", err)
		return
	}

	httpServer := &http.Server{
		Addr:              serverConfig.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP: Shutdown failed", "error", err)
		}
	}()

	slog.Info("HTTP: Listening", "addr", serverConfig.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP: Server failed", "error", err)
	}
}

func newActionLogger(dir string) (pantryapp.ActionLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFilePath := pantryapp.NewActionLogFilePath(filepath.Clean(dir))
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantryapp.NewFileActionLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
