// Package server assembles the Fiber application: middleware, routes and error handling.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ibrahimkeyboad/gobalance/internal/adapter/handler"
	"github.com/ibrahimkeyboad/gobalance/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gobalance/internal/core/config"
)

// New builds the HTTP application. It holds no per-request state.
func New(cfg *config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gobalance",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          handler.ErrorHandler,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))

	balanceHandler := &handler.BalanceHandler{}

	app.Get("/health", handler.Health)
	app.Get("/api-docs", handler.Docs)
	app.Post("/calculate-balance", balanceHandler.CalculateBalance)

	return app
}
