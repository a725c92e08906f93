package shop

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("shop not found")
	ErrInsufficientFunds  = apperror.InsufficientFunds("You can't withdraw more than your available balance")
	ErrEmailExists        = apperror.Conflict("Email already exists")
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthorized, "Invalid email or password")
	ErrInvalidAmount      = apperror.Validation("amount must be greater than 0")
	ErrSubCentAmount      = apperror.Validation("amount must not have more than 2 decimal places")
)

type Repository interface {
	Create(ctx context.Context, s Shop) (Shop, error)
	GetByID(ctx context.Context, id string) (Shop, error)
	GetByEmail(ctx context.Context, email string) (Shop, error)
	Credit(ctx context.Context, id string, amount decimal.Decimal) error
	// Debit fails with ErrInsufficientFunds and leaves the balance untouched
	// when amount exceeds it.
	Debit(ctx context.Context, id string, amount decimal.Decimal) error
	// AppendTransaction is a no-op when a transaction with the same id is
	// already recorded.
	AppendTransaction(ctx context.Context, id string, txn Transaction) error
	SetWithdrawMethod(ctx context.Context, id string, method *WithdrawMethod) (Shop, error)
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	shops map[string]Shop
}

func NewInMemoryRepository(seed []Shop) *InMemoryRepository {
	r := &InMemoryRepository{shops: make(map[string]Shop, len(seed))}
	for _, s := range seed {
		r.shops[s.ID] = s
	}
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, s Shop) (Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shops {
		if strings.EqualFold(existing.Email, s.Email) {
			return Shop{}, ErrEmailExists
		}
	}
	r.shops[s.ID] = s
	return s, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shops[id]
	if !ok {
		return Shop{}, ErrNotFound
	}
	s.Transactions = append([]Transaction(nil), s.Transactions...)
	return s, nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.shops {
		if strings.EqualFold(s.Email, email) {
			return s, nil
		}
	}
	return Shop{}, ErrNotFound
}

func (r *InMemoryRepository) Credit(_ context.Context, id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return ErrNotFound
	}
	s.AvailableBalance = decimal.NewFromFloat(s.AvailableBalance).Add(amount).InexactFloat64()
	r.shops[id] = s
	return nil
}

func (r *InMemoryRepository) Debit(_ context.Context, id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return ErrNotFound
	}
	balance := decimal.NewFromFloat(s.AvailableBalance)
	if amount.GreaterThan(balance) {
		return ErrInsufficientFunds
	}
	s.AvailableBalance = balance.Sub(amount).InexactFloat64()
	r.shops[id] = s
	return nil
}

func (r *InMemoryRepository) AppendTransaction(_ context.Context, id string, txn Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return ErrNotFound
	}
	for _, t := range s.Transactions {
		if t.ID == txn.ID {
			return nil
		}
	}
	s.Transactions = append(s.Transactions, txn)
	r.shops[id] = s
	return nil
}

func (r *InMemoryRepository) SetWithdrawMethod(_ context.Context, id string, method *WithdrawMethod) (Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return Shop{}, ErrNotFound
	}
	s.WithdrawMethod = method
	r.shops[id] = s
	return s, nil
}
