package order

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

var (
	ErrNotShopOrder = apperror.Forbidden("this order does not belong to your shop")
	ErrNotUserOrder = apperror.Forbidden("this order does not belong to you")
)

// Customers provides the user snapshot stored on new orders.
type Customers interface {
	Snapshot(ctx context.Context, userID string) (user.Snapshot, error)
}

// Handler delegates order operations to the order service.
// Ownership of an order is checked here before the service is called.
type Handler struct {
	service   *Service
	customers Customers
}

func NewHandler(s *Service, customers Customers) *Handler {
	return &Handler{service: s, customers: customers}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	userOnly := auth.RequireRole(auth.RoleUser)
	seller := auth.RequireRole(auth.RoleSeller)

	r.Post("/api/v1/order/create", userOnly, h.createOrder)
	r.Get("/api/v1/orders", userOnly, h.getUserOrders)
	r.Get("/api/v1/shop/orders", seller, h.getShopOrders)
	r.Get("/api/v1/admin/orders", auth.RequireRole(auth.RoleAdmin), h.getAllOrders)
	r.Put("/api/v1/order/:id/status", seller, h.updateStatus)
	r.Put("/api/v1/order/:id/refund", userOnly, h.requestRefund)
	r.Put("/api/v1/order/:id/refund/accept", seller, h.acceptRefund)
}

type createOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	actor, _ := auth.ActorFromCtx(c)

	customer := user.Snapshot{ID: actor.ID}
	if h.customers != nil {
		snap, err := h.customers.Snapshot(c.UserContext(), actor.ID)
		if err != nil {
			return apperror.Respond(c, err)
		}
		customer = snap
	}

	orders, err := h.service.PlaceOrder(c.UserContext(), Checkout{
		User:            customer,
		ShippingAddress: payload.ShippingAddress,
		PaymentInfo:     payload.PaymentInfo,
	})
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "orders": orders})
}

func (h *Handler) getUserOrders(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	orders, err := h.service.ListByUser(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

func (h *Handler) getShopOrders(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	orders, err := h.service.ListByShop(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	return h.changeStatus(c, h.service.AdvanceStatus, h.ownedByShop, "Order saved successfully")
}

func (h *Handler) requestRefund(c *fiber.Ctx) error {
	return h.changeStatus(c, h.service.RequestRefund, h.orderedByUser, "Order refund request successfully")
}

func (h *Handler) acceptRefund(c *fiber.Ctx) error {
	return h.changeStatus(c, h.service.AcceptRefund, h.ownedByShop, "Order refund request accept successfully")
}

type statusChange func(ctx context.Context, id string, next Status) (Order, error)

func (h *Handler) changeStatus(c *fiber.Ctx, apply statusChange, owns func(auth.Actor, Order) error, message string) error {
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	next, err := ParseStatus(payload.Status)
	if err != nil {
		return apperror.Respond(c, err)
	}
	actor, _ := auth.ActorFromCtx(c)

	ord, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := owns(actor, ord); err != nil {
		return apperror.Respond(c, err)
	}

	updated, err := apply(c.UserContext(), ord.ID, next)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": message, "order": updated})
}

func (h *Handler) ownedByShop(actor auth.Actor, ord Order) error {
	if ord.ShopID != actor.ID {
		return ErrNotShopOrder
	}
	return nil
}

func (h *Handler) orderedByUser(actor auth.Actor, ord Order) error {
	if ord.User.ID != actor.ID {
		return ErrNotUserOrder
	}
	return nil
}
