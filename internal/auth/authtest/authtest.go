// Package authtest lets handler tests act as any caller without signing
// tokens. It must only be imported from _test.go files.
package authtest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

// Actor turns the X-Actor-ID and X-Actor-Role headers into the token that
// auth.Middleware would store. The role defaults to user.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Get("X-Actor-ID"); id != "" {
			role := c.Get("X-Actor-Role")
			if role == "" {
				role = string(auth.RoleUser)
			}
			c.Locals(auth.ContextKey, &jwt.Token{Claims: jwt.MapClaims{"id": id, "role": role}})
		}
		return c.Next()
	}
}
