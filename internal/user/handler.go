package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

// TokenIssuer signs the token returned on sign-in.
type TokenIssuer interface {
	Issue(actor auth.Actor) (string, error)
}

type Handler struct {
	service *Service
	tokens  TokenIssuer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/v1/sign-in", h.login)
	r.Post("/api/v1/sign-up", h.register)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	member := auth.RequireRole(auth.RoleUser, auth.RoleAdmin)
	r.Get("/api/v1/profile", member, h.getProfile)
	r.Put("/api/v1/profile/address", member, h.addAddress)
	r.Delete("/api/v1/profile/address/:id", member, h.removeAddress)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Please provide all the fields!"})
	}

	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}

	token, err := h.tokens.Issue(auth.Actor{ID: u.ID, Role: u.Role})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(RegisterInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": created})
}

// getProfile returns the user record for the currently authenticated user.
func (h *Handler) getProfile(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	u, err := h.service.GetByID(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u})
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	payload := new(Address)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	actor, _ := auth.ActorFromCtx(c)

	u, err := h.service.AddAddress(c.UserContext(), actor.ID, *payload)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u})
}

func (h *Handler) removeAddress(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	u, err := h.service.RemoveAddress(c.UserContext(), actor.ID, c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u})
}
