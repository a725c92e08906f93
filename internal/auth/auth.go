package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Role identifies which kind of account a token was issued to.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ContextKey is where the jwt middleware stores the parsed *jwt.Token.
const ContextKey = "user"

var (
	ErrNoActor   = errors.New("unauthorized")
	ErrEmptyKey  = errors.New("jwt secret is empty")
	errBadClaims = errors.New("invalid token claims")
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role Role
}

// IssueToken signs an HS256 token carrying the actor id and role.
func IssueToken(secret string, ttl time.Duration, actor Actor) (string, error) {
	if secret == "" {
		return "", ErrEmptyKey
	}
	claims := jwt.MapClaims{
		"id":   actor.ID,
		"role": string(actor.Role),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Issuer signs tokens for sign-in handlers.
type Issuer struct {
	Secret string
	TTL    time.Duration
}

func (i Issuer) Issue(actor Actor) (string, error) {
	return IssueToken(i.Secret, i.TTL, actor)
}

// Middleware verifies the bearer token and stores it in c.Locals("user").
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Please login to continue"})
		},
	})
}

// ActorFromCtx extracts the caller from the token stored by Middleware.
func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return Actor{}, ErrNoActor
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errBadClaims
	}
	id, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	if id == "" {
		return Actor{}, ErrNoActor
	}
	if role == "" {
		role = string(RoleUser)
	}
	return Actor{ID: id, Role: Role(role)}, nil
}

// RequireRole rejects callers whose role is not listed. The actor is stored
// in c.Locals("actor") for the next handler.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := ActorFromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Please login to continue"})
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Locals("actor", actor)
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": string(actor.Role) + " can not access this resource"})
	}
}
