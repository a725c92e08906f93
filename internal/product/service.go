package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput is what a seller submits for a new product.
type CreateInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          string   `json:"tags"`
	OriginalPrice float64  `json:"originalPrice"`
	DiscountPrice float64  `json:"discountPrice"`
	Stock         int      `json:"stock"`
	Images        []string `json:"images"`
}

func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Product, error) {
	if err := validateCreate(in); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:            uuid.NewString(),
		ShopID:        shopID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Category:      in.Category,
		Tags:          in.Tags,
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        lo.Ternary(in.Images == nil, []string{}, in.Images),
		Reviews:       []Review{},
		CreatedAt:     s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, p)
	return created, apperror.Internal(err)
}

func validateCreate(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperror.Validation("name is required")
	case in.OriginalPrice <= 0:
		return apperror.Validation("originalPrice must be > 0")
	case in.DiscountPrice < 0 || in.DiscountPrice > in.OriginalPrice:
		return apperror.Validation("discountPrice must be between 0 and originalPrice")
	case in.Stock < 0:
		return apperror.Validation("stock must be >= 0")
	case in.Category != "" && !lo.Contains(AllowedCategories, in.Category):
		return apperror.Validation("invalid category")
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	return p, apperror.Internal(err)
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	out, err := s.repo.List(ctx)
	return out, apperror.Internal(err)
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]Product, error) {
	out, err := s.repo.ListByShop(ctx, shopID)
	return out, apperror.Internal(err)
}

func (s *Service) Categories() []string {
	return AllowedCategories
}

// AddReview records the user's rating, replacing any earlier review by the
// same user.
func (s *Service) AddReview(ctx context.Context, productID string, review Review) (Product, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return Product{}, ErrInvalidRating
	}
	review.CreatedAt = s.now().UTC()
	p, err := s.repo.UpsertReview(ctx, productID, review)
	return p, apperror.Internal(err)
}

// Fulfill moves qty units from stock to sold_out.
func (s *Service) Fulfill(ctx context.Context, productID string, qty int) error {
	return s.FulfillAll(ctx, []Line{{ProductID: productID, Quantity: qty}})
}

// ReverseFulfillment moves qty units from sold_out back to stock.
func (s *Service) ReverseFulfillment(ctx context.Context, productID string, qty int) error {
	return s.ReverseAll(ctx, []Line{{ProductID: productID, Quantity: qty}})
}

// FulfillAll fulfils every line or none.
func (s *Service) FulfillAll(ctx context.Context, lines []Line) error {
	return s.adjust(ctx, lines, -1)
}

// ReverseAll reverses every line or none.
func (s *Service) ReverseAll(ctx context.Context, lines []Line) error {
	return s.adjust(ctx, lines, 1)
}

func (s *Service) adjust(ctx context.Context, lines []Line, sign int) error {
	adjustments := make([]StockAdjustment, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return apperror.Validation("quantity must be > 0")
		}
		adjustments = append(adjustments, StockAdjustment{
			ProductID:    l.ProductID,
			StockDelta:   sign * l.Quantity,
			SoldOutDelta: -sign * l.Quantity,
		})
	}
	return apperror.Internal(s.repo.AdjustStock(ctx, adjustments))
}
