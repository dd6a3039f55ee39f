package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger writes one access record per request.
func Logger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Run the handler first; the error handler has not written the response yet
		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				logger.Error("error handler failed",
					slog.String("error", handlerErr.Error()),
					slog.String("cause", err.Error()),
					slog.String("request_id", GetRequestID(c)),
				)
				if sendErr := c.SendStatus(fiber.StatusInternalServerError); sendErr != nil {
					return sendErr
				}
			}
		}

		status := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", GetRequestID(c)),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request rejected", attrs...)
		default:
			logger.Info("request handled", attrs...)
		}

		return nil
	}
}
