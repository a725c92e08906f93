package shop

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

func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/v1/shop/sign-up", h.register)
	r.Post("/api/v1/shop/sign-in", h.login)
	r.Get("/api/v1/shop/:id<guid>", h.getShopInfo)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	seller := auth.RequireRole(auth.RoleSeller)
	r.Get("/api/v1/shop/me", seller, h.getMe)
	r.Put("/api/v1/shop/withdraw-method", seller, h.updateWithdrawMethod)
	r.Delete("/api/v1/shop/withdraw-method", seller, h.deleteWithdrawMethod)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
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
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "seller": created})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Please provide all the fields!"})
	}

	sh, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}

	token, err := h.tokens.Issue(auth.Actor{ID: sh.ID, Role: auth.RoleSeller})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to generate token"})
	}
	return c.JSON(fiber.Map{"success": true, "seller": sh, "token": token})
}

func (h *Handler) getShopInfo(c *fiber.Ctx) error {
	sh, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "shop": publicShop(sh)})
}

func (h *Handler) getMe(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	sh, err := h.service.GetByID(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "seller": sh})
}

func (h *Handler) updateWithdrawMethod(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	var payload struct {
		WithdrawMethod WithdrawMethod `json:"withdrawMethod"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	sh, err := h.service.SetWithdrawMethod(c.UserContext(), actor.ID, payload.WithdrawMethod)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "seller": sh})
}

func (h *Handler) deleteWithdrawMethod(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	sh, err := h.service.DeleteWithdrawMethod(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "seller": sh})
}
