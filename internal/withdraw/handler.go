package withdraw

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	seller := auth.RequireRole(auth.RoleSeller)
	admin := auth.RequireRole(auth.RoleAdmin)

	r.Post("/api/v1/withdraw", seller, h.createWithdraw)
	r.Get("/api/v1/shop/withdraws", seller, h.getSellerWithdraws)
	r.Get("/api/v1/admin/withdraws", admin, h.getAllWithdraws)
	r.Put("/api/v1/withdraw/:id/approve", admin, h.approveWithdraw)
}

type createRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type approveRequest struct {
	SellerID string `json:"sellerId"`
}

func (h *Handler) createWithdraw(c *fiber.Ctx) error {
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	actor, _ := auth.ActorFromCtx(c)

	req, err := h.service.RequestWithdrawal(c.UserContext(), actor.ID, payload.Amount)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "withdraw": req})
}

func (h *Handler) getSellerWithdraws(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromCtx(c)
	out, err := h.service.ListSellerWithdrawals(c.UserContext(), actor.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "withdraws": out})
}

func (h *Handler) getAllWithdraws(c *fiber.Ctx) error {
	out, err := h.service.ListWithdrawals(c.UserContext())
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "withdraws": out})
}

func (h *Handler) approveWithdraw(c *fiber.Ctx) error {
	payload := new(approveRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.SellerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "sellerId is required"})
	}

	req, err := h.service.ApproveWithdrawal(c.UserContext(), c.Params("id"), payload.SellerID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "withdraw": req})
}
