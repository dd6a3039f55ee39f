package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gobalance/internal/core/domain"
)

func newApp(h *BalanceHandler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: ErrorHandler})
	app.Use(recover.New())
	app.Post("/calculate-balance", h.CalculateBalance)
	app.Get("/health", Health)
	app.Get("/api-docs", Docs)
	app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })
	return app
}

func post(t *testing.T, app *fiber.App, body, contentType string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", "/calculate-balance", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCalculateBalanceOK(t *testing.T) {
	t.Parallel()

	code, body := post(t, newApp(&BalanceHandler{}),
		`{"initialBalance":1000,"transactions":[{"type":"credit","amount":500},{"type":"credit","amount":200}]}`,
		fiber.MIMEApplicationJSON)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(1700), body["finalBalance"])
	assert.Equal(t, float64(1), body["status"])
}

func TestCalculateBalanceValidationFailed(t *testing.T) {
	t.Parallel()

	called := false
	h := &BalanceHandler{Calculate: func(domain.BalanceRequest) (domain.BalanceResult, error) {
		called = true
		return domain.BalanceResult{}, nil
	}}

	code, body := post(t, newApp(h), `{"initialBalance":"x","transactions":[]}`, fiber.MIMEApplicationJSON)

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body["error"])
	details, ok := body["details"].([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)
	assert.False(t, called, "calculator must not run on invalid input")
}

func TestCalculateBalanceRejectsNonJSONContentType(t *testing.T) {
	t.Parallel()

	code, body := post(t, newApp(&BalanceHandler{}),
		`{"initialBalance":1,"transactions":[{"type":"credit","amount":1}]}`,
		fiber.MIMETextPlain)

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body["error"])
}

func TestCalculateBalanceInternalError(t *testing.T) {
	t.Parallel()

	h := &BalanceHandler{Calculate: func(domain.BalanceRequest) (domain.BalanceResult, error) {
		return domain.BalanceResult{}, errors.New("numeric overflow")
	}}

	code, body := post(t, newApp(h),
		`{"initialBalance":1,"transactions":[{"type":"credit","amount":1}]}`,
		fiber.MIMEApplicationJSON)

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "numeric overflow", body["message"])
}

func TestCalculateBalanceUnrepresentableResult(t *testing.T) {
	t.Parallel()

	h := &BalanceHandler{Calculate: func(domain.BalanceRequest) (domain.BalanceResult, error) {
		return domain.BalanceResult{FinalBalance: decimal.New(1, 400)}, nil
	}}

	code, body := post(t, newApp(h),
		`{"initialBalance":1,"transactions":[{"type":"credit","amount":1}]}`,
		fiber.MIMEApplicationJSON)

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Contains(t, body["message"], "float64 range")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	resp, err := newApp(&BalanceHandler{}).Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, body)
}

func TestDocs(t *testing.T) {
	t.Parallel()

	resp, err := newApp(&BalanceHandler{}).Test(httptest.NewRequest("GET", "/api-docs", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/calculate-balance")
	assert.Contains(t, paths, "/health")
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	app := newApp(&BalanceHandler{})

	t.Run("panic becomes 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body.Error)
		assert.Equal(t, "kaboom", body.Message)
	})

	t.Run("unknown route keeps 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/nowhere", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not Found", body.Error)
	})
}
