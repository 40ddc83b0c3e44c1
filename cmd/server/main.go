package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/duelarena/server/internal/api"
	"github.com/duelarena/server/internal/config"
	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/factory"
	"github.com/duelarena/server/internal/ws"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, factory.Config{
		Logger: logger,
		Coordinator: coordinator.Config{
			StartCountdown:    cfg.StartCountdown,
			ReaperInterval:    cfg.ReaperInterval,
			RoomIdleTimeout:   cfg.RoomIdleTimeout,
			PlayerIdleTimeout: cfg.PlayerIdleTimeout,
		},
		CatalogSource: cfg.CatalogSource,
		CatalogPath:   cfg.CatalogPath,
		RedisURL:      cfg.RedisURL,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close error", slog.String("error", err.Error()))
		}
	}()

	// Background idle sweep
	app.Coordinator.StartReaper(ctx)

	// Create router with the websocket gateway mounted
	wsHandler := ws.NewHandler(app.Hub, app.Coordinator, logger)
	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Coordinator:      app.Coordinator,
		WebSocketHandler: wsHandler,
	})

	// Create server
	server := api.NewServer(router, api.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
