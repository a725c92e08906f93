package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	user := auth.RequireRole(auth.RoleUser)
	r.Get("/api/v1/cart", user, h.getCart)
	r.Post("/api/v1/cart/add", user, h.addToCart)
	r.Put("/api/v1/cart/item", user, h.updateItem)
	r.Delete("/api/v1/cart/item/:productId", user, h.removeItem)
	r.Delete("/api/v1/cart", user, h.clearCart)
}

type cartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid productId"})
	}
	// a missing quantity means one unit
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	actor, _ := auth.ActorFromCtx(c)

	cart, err := h.service.AddItem(c.UserContext(), actor.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	cart, err := h.service.GetCart(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid productId"})
	}
	actor, _ := auth.ActorFromCtx(c)

	cart, err := h.service.UpdateQuantity(c.UserContext(), actor.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	cart, err := h.service.RemoveItem(c.UserContext(), actor.ID, c.Params("productId"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	if err := h.service.Clear(c.UserContext(), actor.ID); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}
