package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gobalance/internal/adapter/middleware"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// InternalError writes the 500 envelope with the underlying message and no stack trace.
func InternalError(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}

// ErrorHandler is the Fiber ErrorHandler. Client errors raised by Fiber keep
// their status; everything else, recovered panics included, becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Error:   http.StatusText(fe.Code),
			Message: fe.Message,
		})
	}

	slog.Error("Unhandled error", "request_id", middleware.GetRequestID(c), "path", c.Path(), "error", err)
	return InternalError(c, err)
}
