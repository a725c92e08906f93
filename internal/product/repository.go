package product

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound       = apperror.NotFound("product not found")
	ErrInvalidRating  = apperror.Validation("rating must be between 1 and 5")
	ErrInvalidProduct = apperror.Validation("invalid product")
)

type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByShop(ctx context.Context, shopID string) ([]Product, error)
	// AdjustStock applies every adjustment or none of them. It fails with
	// ErrNotFound when any product is missing.
	AdjustStock(ctx context.Context, adjustments []StockAdjustment) error
	// UpsertReview replaces the user's previous review, if any, and
	// recomputes the average rating.
	UpsertReview(ctx context.Context, productID string, review Review) (Product, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[string]Product, len(seed))}
	for _, p := range seed {
		r.storage[p.ID] = p
	}
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[p.ID] = clone(p)
	return p, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Product, error) {
	return r.filter(func(Product) bool { return true }), nil
}

func (r *InMemoryRepository) ListByShop(_ context.Context, shopID string) ([]Product, error) {
	return r.filter(func(p Product) bool { return p.ShopID == shopID }), nil
}

func (r *InMemoryRepository) filter(keep func(Product) bool) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) AdjustStock(_ context.Context, adjustments []StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// validate the whole batch before touching anything
	for _, a := range adjustments {
		if _, ok := r.storage[a.ProductID]; !ok {
			return ErrNotFound
		}
	}
	for _, a := range adjustments {
		p := r.storage[a.ProductID]
		p.Stock += a.StockDelta
		p.SoldOut += a.SoldOutDelta
		r.storage[a.ProductID] = p
	}
	return nil
}

func (r *InMemoryRepository) UpsertReview(_ context.Context, productID string, review Review) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[productID]
	if !ok {
		return Product{}, ErrNotFound
	}

	reviews := make([]Review, 0, len(p.Reviews)+1)
	for _, existing := range p.Reviews {
		if existing.UserID != review.UserID {
			reviews = append(reviews, existing)
		}
	}
	reviews = append(reviews, review)

	total := 0
	for _, rv := range reviews {
		total += rv.Rating
	}
	p.Reviews = reviews
	p.Ratings = float64(total) / float64(len(reviews))
	r.storage[productID] = p
	return clone(p), nil
}

func clone(p Product) Product {
	p.Images = append([]string(nil), p.Images...)
	p.Reviews = append([]Review(nil), p.Reviews...)
	return p
}
