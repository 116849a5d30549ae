package middlewares_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rhombick-backend/metrics"
	"rhombick-backend/middlewares"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

func TestErrorHandler_MapsTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "invalid id"), http.StatusBadRequest},
		{"validation", models.NewValidationError("invoiceNo", "is required"), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("invoice x: %w", models.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("dup: %w", models.ErrConflict), http.StatusConflict},
		{"precondition", fmt.Errorf("no customer: %w", models.ErrPreconditionFailed), http.StatusInternalServerError},
		{"storage", fmt.Errorf("db: %w", models.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler(zap.NewNop())})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var env utils.Envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestErrorHandler_ValidationFields(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler(zap.NewNop())})
	app.Post("/", func(c *fiber.Ctx) error {
		var dst struct {
			Name string `json:"name" validate:"required"`
		}
		return middlewares.BindAndValidate(c, &dst)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var env utils.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "is required", env.Errors["name"], "whitespace is trimmed before validation")
}

func TestIsAuthenticatedHeader(t *testing.T) {
	secret := []byte("secret")
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler(zap.NewNop())})
	app.Use(middlewares.IsAuthenticatedHeader(secret))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string))
	})

	valid, err := middlewares.GenerateJWT(secret, "user-1", time.Hour)
	require.NoError(t, err)
	expired, err := middlewares.GenerateJWT(secret, "user-1", -time.Hour)
	require.NoError(t, err)
	foreign, err := middlewares.GenerateJWT([]byte("other"), "user-1", time.Hour)
	require.NoError(t, err)

	cases := map[string]int{
		"":                  http.StatusUnauthorized,
		"Basic abc":         http.StatusUnauthorized,
		"Bearer " + expired: http.StatusUnauthorized,
		"Bearer " + foreign: http.StatusUnauthorized,
		"Bearer " + valid:   http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, header)
	}

	_, err = middlewares.GenerateJWT(nil, "user-1", time.Hour)
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.New()
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler(zap.NewNop())})
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger(zap.New(core), m))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return models.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusNotFound, entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}
