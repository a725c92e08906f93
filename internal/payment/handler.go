package payment

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

type Handler struct {
	gateway        Gateway
	publishableKey string
	currency       string
}

func NewHandler(gateway Gateway, publishableKey, currency string) *Handler {
	return &Handler{gateway: gateway, publishableKey: publishableKey, currency: currency}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/payment/stripeapikey", h.getAPIKey)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/payment/process", auth.RequireRole(auth.RoleUser, auth.RoleSeller, auth.RoleAdmin), h.processPayment)
}

type processRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) processPayment(c *fiber.Ctx) error {
	payload := new(processRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.Amount <= 0 {
		return apperror.Respond(c, ErrInvalidAmount)
	}

	secret, err := h.gateway.CreatePaymentIntent(c.UserContext(), payload.Amount, h.currency)
	if err != nil {
		if apperror.StatusCode(err) == fiber.StatusInternalServerError {
			slog.Error("payment intent failed", slog.Any("err", err))
			return apperror.Respond(c, ErrUnavailable)
		}
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"message":       "Payment successful",
		"client_secret": secret,
	})
}

func (h *Handler) getAPIKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "stripeApikey": h.publishableKey})
}
