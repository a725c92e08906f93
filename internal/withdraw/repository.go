package withdraw

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("Withdraw request not found")
	ErrAlreadySucceeded = apperror.Conflict("withdraw request already succeeded")
)

type Repository interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	// MarkSucceeded moves a pending request to succeed. It fails with
	// ErrAlreadySucceeded when the request is no longer pending.
	MarkSucceeded(ctx context.Context, id string, at time.Time) (Request, error)
	// List and ListBySeller return newest first.
	List(ctx context.Context) ([]Request, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Request, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]Request
}

func NewInMemoryRepository(seed []Request) *InMemoryRepository {
	r := &InMemoryRepository{requests: make(map[string]Request, len(seed))}
	for _, req := range seed {
		r.requests[req.ID] = req
	}
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = req
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *InMemoryRepository) MarkSucceeded(_ context.Context, id string, at time.Time) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if req.Status != StatusPending {
		return Request{}, ErrAlreadySucceeded
	}
	req.Status = StatusSucceed
	req.UpdatedAt = at
	r.requests[id] = req
	return req, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Request, error) {
	return r.filter(func(Request) bool { return true }), nil
}

func (r *InMemoryRepository) ListBySeller(_ context.Context, sellerID string) ([]Request, error) {
	return r.filter(func(req Request) bool { return req.Seller.ID == sellerID }), nil
}

func (r *InMemoryRepository) filter(keep func(Request) bool) []Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Request, 0)
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
