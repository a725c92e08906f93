package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound     = apperror.NotFound("cart not found")
	ErrItemNotFound = apperror.NotFound("item not found in cart")
)

// Repository provides access to cart operations.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	// AddItem increments the quantity of an existing line for the same
	// product or appends a new one, creating the cart when needed.
	AddItem(ctx context.Context, userID string, item Item) error
	UpdateQuantity(ctx context.Context, userID, productID string, qty int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	// Clear empties the cart but keeps the document.
	Clear(ctx context.Context, userID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string]*Cart, len(seed))}
	for i := range seed {
		c := seed[i]
		r.carts[c.UserID] = &c
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, userID string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	out.Items = append([]Item{}, c.Items...)
	return &out, nil
}

func (r *InMemoryRepository) AddItem(_ context.Context, userID string, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c, ok := r.carts[userID]
	if !ok {
		c = &Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now}
		r.carts[userID] = c
	}
	c.UpdatedAt = now
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	item.AddedAt = now
	c.Items = append(c.Items, item)
	return nil
}

func (r *InMemoryRepository) UpdateQuantity(_ context.Context, userID, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return ErrNotFound
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil
	}
	c.Items = []Item{}
	c.UpdatedAt = time.Now().UTC()
	return nil
}
