package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gobalance/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gobalance/internal/core/balance"
	"github.com/ibrahimkeyboad/gobalance/internal/core/domain"
	"github.com/ibrahimkeyboad/gobalance/internal/core/validation"
)

// CalculateFunc computes a balance from a validated request.
type CalculateFunc func(domain.BalanceRequest) (domain.BalanceResult, error)

type BalanceHandler struct {
	// Calculate defaults to balance.Calculate when nil.
	Calculate CalculateFunc
}

// Response Models
type CalculateBalanceResponse struct {
	FinalBalance float64 `json:"finalBalance"`
	Status       int     `json:"status"` // 1 = normal, 2 = overdraft
}

type ValidationFailedResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details"`
}

// CalculateBalance API
func (h *BalanceHandler) CalculateBalance(c *fiber.Ctx) error {
	requestID := middleware.GetRequestID(c)

	// 1. Only JSON bodies are accepted
	if ct := c.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		return validationFailed(c, []validation.FieldError{{
			Field:   "body",
			Message: "Content-Type must be application/json",
		}})
	}

	// 2. Validate Input
	req, err := validation.Parse(c.Body())
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			slog.Warn("Balance request rejected", "request_id", requestID, "violations", len(verr.Details))
			return validationFailed(c, verr.Details)
		}
		slog.Error("Validator failure", "request_id", requestID, "error", err)
		return InternalError(c, err)
	}

	// 3. Calculate
	calculate := h.Calculate
	if calculate == nil {
		calculate = balance.Calculate
	}

	result, err := calculate(req)
	if err != nil {
		slog.Error("Balance calculation failed", "request_id", requestID, "error", err)
		return InternalError(c, err)
	}

	// 4. Convert at the boundary: exact decimal in, float64 out
	final, err := domain.ToFloat(result.FinalBalance)
	if err != nil {
		err = fmt.Errorf("%w: %w", balance.ErrCalculation, err)
		slog.Error("Balance not representable", "request_id", requestID, "error", err)
		return InternalError(c, err)
	}

	slog.Debug("Balance calculated",
		"request_id", requestID,
		"transactions", len(req.Transactions),
		"final_balance", result.FinalBalance.String(),
		"status", result.Status.String(),
	)

	return c.Status(http.StatusOK).JSON(CalculateBalanceResponse{
		FinalBalance: final,
		Status:       result.Status.Code(),
	})
}

func validationFailed(c *fiber.Ctx, details []validation.FieldError) error {
	return c.Status(http.StatusBadRequest).JSON(ValidationFailedResponse{
		Error:   "Validation failed",
		Details: details,
	})
}
