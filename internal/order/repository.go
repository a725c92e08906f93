package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("Order not found with this id")
	ErrVersionConflict = apperror.Conflict("order was modified by another request, please retry")
)

// Repository defines persistence operations for orders.
type Repository interface {
	CreateMany(ctx context.Context, orders []Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	// Update stores ord only if the stored version still equals ord.Version
	// and returns the order with its new version.
	Update(ctx context.Context, ord Order) (Order, error)
	// ListByUser and ListByShop return newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByShop(ctx context.Context, shopID string) ([]Order, error)
	// ListAll orders delivered orders first, most recent delivery first,
	// then by creation time.
	ListAll(ctx context.Context) ([]Order, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[string]Order, len(seed))}
	for _, o := range seed {
		r.orders[o.ID] = o
	}
	return r
}

func (r *InMemoryRepository) CreateMany(_ context.Context, orders []Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		r.orders[o.ID] = clone(o)
	}
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (r *InMemoryRepository) Update(_ context.Context, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[ord.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if stored.Version != ord.Version {
		return Order{}, ErrVersionConflict
	}
	ord.Version++
	r.orders[ord.ID] = clone(ord)
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.User.ID == userID }, byCreatedDesc), nil
}

func (r *InMemoryRepository) ListByShop(_ context.Context, shopID string) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.ShopID == shopID }, byCreatedDesc), nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]Order, error) {
	return r.filter(func(Order) bool { return true }, byDeliveredDesc), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool, less func(a, b Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreatedDesc(a, b Order) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func byDeliveredDesc(a, b Order) bool {
	da, db := deliveredAt(a), deliveredAt(b)
	if !da.Equal(db) {
		return da.After(db)
	}
	return byCreatedDesc(a, b)
}

func deliveredAt(o Order) time.Time {
	if o.DeliveredAt == nil {
		return time.Time{}
	}
	return *o.DeliveredAt
}

func clone(o Order) Order {
	o.Cart = append(o.Cart[:0:0], o.Cart...)
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	return o
}
