package user

import (
	"context"
	"sync"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("User not found")
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthorized, "Invalid email or password")
	ErrEmailExists        = apperror.Conflict("User already exists")
	ErrAddressTypeExists  = apperror.Validation("address of this type already exists")
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// AddAddress appends addr unless the user already has an address of the
	// same type.
	AddAddress(ctx context.Context, userID string, addr Address) error
	RemoveAddress(ctx context.Context, userID, addressID string) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make(map[string]User, len(seed))}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *InMemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	u.Addresses = append([]Address{}, u.Addresses...)
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Addresses = append([]Address{}, u.Addresses...)
	return u, nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u.Addresses = append([]Address{}, u.Addresses...)
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) AddAddress(_ context.Context, userID string, addr Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	for _, a := range u.Addresses {
		if a.AddressType == addr.AddressType {
			return ErrAddressTypeExists
		}
	}
	u.Addresses = append(append([]Address{}, u.Addresses...), addr)
	r.users[userID] = u
	return nil
}

func (r *InMemoryRepository) RemoveAddress(_ context.Context, userID, addressID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	kept := make([]Address, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		if a.ID != addressID {
			kept = append(kept, a)
		}
	}
	u.Addresses = kept
	r.users[userID] = u
	return nil
}
