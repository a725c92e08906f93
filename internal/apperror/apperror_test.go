package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = NotFound("order not found")

func TestErrorIs_MatchesSentinelAndKind(t *testing.T) {
	err := fmt.Errorf("repo.GetByID: %w", errSentinel)

	assert.ErrorIs(t, err, errSentinel)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestInternal_KeepsClassifiedErrors(t *testing.T) {
	assert.Nil(t, Internal(nil))
	assert.Same(t, errSentinel, Internal(errSentinel))

	wrapped := Internal(errors.New("connection reset"))
	assert.ErrorIs(t, wrapped, ErrInternal)
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), fiber.StatusBadRequest},
		{NotFound("missing"), fiber.StatusNotFound},
		{InsufficientFunds("poor"), fiber.StatusUnprocessableEntity},
		{Conflict("race"), fiber.StatusConflict},
		{Forbidden("nope"), fiber.StatusForbidden},
		{New(ErrUnauthorized, "who"), fiber.StatusUnauthorized},
		{Unavailable("down"), fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestRespond_Envelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: FiberErrorHandler})
	app.Get("/missing", func(c *fiber.Ctx) error { return Respond(c, errSentinel) })
	app.Get("/boom", func(c *fiber.Ctx) error { return Internal(errors.New("mongo down")) })

	res, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "order not found", body["message"])

	res, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	body = map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["message"])
}
