package product

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

// ReviewerDirectory resolves the display name stored on a review.
type ReviewerDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

type Handler struct {
	service   *Service
	reviewers ReviewerDirectory
}

func NewHandler(service *Service, reviewers ReviewerDirectory) *Handler {
	return &Handler{service: service, reviewers: reviewers}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products", h.getProducts)
	r.Get("/api/v1/product/category", h.getCategories)
	r.Get("/api/v1/product/:id<guid>", h.getProduct)
	r.Get("/api/v1/shop/:id<guid>/products", h.getShopProducts)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/product", auth.RequireRole(auth.RoleSeller), h.createProduct)
	r.Put("/api/v1/product/:id<guid>/review", auth.RequireRole(auth.RoleUser), h.createReview)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": products})
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "categories": h.service.Categories()})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "product": p})
}

func (h *Handler) getShopProducts(c *fiber.Ctx) error {
	products, err := h.service.ListByShop(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": products})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	actor, err := auth.ActorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	in := new(CreateInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), actor.ID, *in)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": created})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) createReview(c *fiber.Ctx) error {
	actor, err := auth.ActorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	payload := new(reviewRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	review := Review{UserID: actor.ID, Rating: payload.Rating, Comment: payload.Comment}
	if h.reviewers != nil {
		name, err := h.reviewers.DisplayName(c.UserContext(), actor.ID)
		if err != nil {
			slog.Warn("reviewer lookup failed", slog.String("user_id", actor.ID), slog.Any("err", err))
		}
		review.UserName = name
	}

	p, err := h.service.AddReview(c.UserContext(), c.Params("id"), review)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Reviewed successfully!", "product": p})
}
