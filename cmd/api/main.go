package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ibrahimkeyboad/gobalance/internal/adapter/server"
	"github.com/ibrahimkeyboad/gobalance/internal/core/config"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 3. Setup Fiber (one app per process, torn down on shutdown)
	app := server.New(cfg, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		listenErr <- app.Listen(cfg.Addr())
	}()

	// Block until a stop signal or a listen failure
	select {
	case <-stop:
		slog.Info("🛑 Shutting down server...")
	case err := <-listenErr:
		if err != nil {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// Stop accepting new requests and let active ones finish
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("👋 Server exited successfully")
}
