package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken_ThroughMiddleware(t *testing.T) {
	const secret = "test-secret"
	token, err := IssueToken(secret, time.Hour, Actor{ID: "shop-1", Role: RoleSeller})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(Middleware(secret))
	app.Get("/me", func(c *fiber.Ctx) error {
		actor, err := ActorFromCtx(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(actor.ID + ":" + string(actor.Role))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, "shop-1:seller", string(b))

	// missing token
	res, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	// wrong signing key
	forged, err := IssueToken("other", time.Hour, Actor{ID: "shop-1", Role: RoleAdmin})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken("", time.Hour, Actor{ID: "u"})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestRequireRole(t *testing.T) {
	const secret = "role-secret"
	app := fiber.New()
	app.Use(Middleware(secret))
	app.Get("/admin", RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		actor := c.Locals("actor").(Actor)
		return c.SendString(actor.ID)
	})

	tests := []struct {
		name string
		id   string
		role Role
		want int
	}{
		{"anonymous", "", "", fiber.StatusUnauthorized},
		{"user", "u-1", RoleUser, fiber.StatusForbidden},
		{"seller", "s-1", RoleSeller, fiber.StatusForbidden},
		{"admin", "a-1", RoleAdmin, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.id != "" {
				token, err := IssueToken(secret, time.Hour, Actor{ID: tt.id, Role: tt.role})
				require.NoError(t, err)
				req.Header.Set("Authorization", "Bearer "+token)
			}
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.StatusCode)
		})
	}
}

func TestMiddleware_IgnoresActorHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware("header-secret"))
	app.Get("/admin", RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Actor-ID", "a-1")
	req.Header.Set("X-Actor-Role", "admin")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
