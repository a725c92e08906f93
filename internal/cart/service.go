package cart

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"golang.org/x/sync/singleflight"
)

// ProductReader resolves the product snapshot stored on a cart line.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// Service orchestrates cart operations.
type Service struct {
	repo     Repository
	cache    Cache
	products ProductReader
	sfg      singleflight.Group
}

func NewService(repo Repository, cache Cache, products ProductReader) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{repo: repo, cache: cache, products: products}
}

// GetCart returns the user's cart, or an empty one when none exists yet.
// Concurrent misses for the same user share one repository read.
func (s *Service) GetCart(ctx context.Context, userID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("cart cache get failed", slog.String("user_id", userID), slog.Any("err", err))
		}

		c, err = s.repo.Get(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			now := time.Now().UTC()
			return &Cart{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}

		if err := s.cache.Set(ctx, userID, c); err != nil {
			slog.Warn("cart cache set failed", slog.String("user_id", userID), slog.Any("err", err))
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

// AddItem adds qty units of a product. An existing line for the same
// product has its quantity increased. The price is the product's discount
// price when set.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, apperror.Validation("quantity must be greater than 0")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	item := Item{
		ProductID: p.ID,
		ShopID:    p.ShopID,
		Name:      p.Name,
		Price:     p.SellingPrice(),
		Quantity:  qty,
	}
	if len(p.Images) > 0 {
		item.Image = p.Images[0]
	}
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return nil, apperror.Internal(err)
	}
	s.Invalidate(userID)
	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if err := s.repo.UpdateQuantity(ctx, userID, productID, qty); err != nil {
		return nil, apperror.Internal(err)
	}
	s.Invalidate(userID)
	return s.GetCart(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, apperror.Internal(err)
	}
	s.Invalidate(userID)
	return s.GetCart(ctx, userID)
}

// Items reads the stored cart lines, bypassing the cache. Order placement
// calls it inside its transaction.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return c.Items, nil
}

// Clear empties the cart and drops its cached copy.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.Empty(ctx, userID); err != nil {
		return err
	}
	s.Invalidate(userID)
	return nil
}

// Empty removes the stored cart lines and leaves the cache alone. Callers
// running it inside a transaction call Invalidate once it has committed.
func (s *Service) Empty(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Invalidate drops the cached cart. Failures are logged.
func (s *Service) Invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.Warn("cart cache invalidate failed", slog.String("user_id", userID), slog.Any("err", err))
	}
}
