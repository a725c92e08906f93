package withdraw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/database"
	"github.com/wichananm65/marketplace-backend/internal/notification"
	"github.com/wichananm65/marketplace-backend/internal/shop"
)

var (
	ErrInvalidAmount  = apperror.Validation("withdraw amount must be greater than 0")
	ErrSellerMismatch = apperror.Validation("seller does not own this withdraw request")
)

// Ledger is the seller balance ledger.
type Ledger interface {
	GetByID(ctx context.Context, shopID string) (shop.Shop, error)
	Debit(ctx context.Context, shopID string, amount decimal.Decimal) error
	RecordTransaction(ctx context.Context, shopID string, txn shop.Transaction) error
}

type Service struct {
	repo     Repository
	tx       database.Transactor
	ledger   Ledger
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(repo Repository, tx database.Transactor, ledger Ledger, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &Service{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestWithdrawal debits the seller and records a pending request in one
// transaction. The seller is emailed afterwards.
func (s *Service) RequestWithdrawal(ctx context.Context, sellerID string, amount decimal.Decimal) (Request, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return Request{}, ErrInvalidAmount
	}

	var req Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		seller, err := s.ledger.GetByID(ctx, sellerID)
		if err != nil {
			return err
		}
		if err := s.ledger.Debit(ctx, sellerID, amount); err != nil {
			return err
		}

		now := s.now()
		req = Request{
			ID:        uuid.NewString(),
			Seller:    Seller{ID: seller.ID, Name: seller.Name, Email: seller.Email},
			Amount:    amount.InexactFloat64(),
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.repo.Create(ctx, req)
	})
	if err != nil {
		return Request{}, apperror.Internal(err)
	}

	s.notifier.Notify(notification.Message{
		Recipient: req.Seller.Email,
		Subject:   "Withdraw Request",
		Body: fmt.Sprintf("Hello %s, Your withdraw request of %s$ is processing. It will take 3days to 7days to processing!",
			req.Seller.Name, amount.StringFixed(2)),
	})
	return req, nil
}

// ApproveWithdrawal marks a request succeeded and appends the matching
// transaction to the seller's history. Approving an already succeeded
// request returns it unchanged.
func (s *Service) ApproveWithdrawal(ctx context.Context, requestID, sellerID string) (Request, error) {
	var (
		approved Request
		changed  bool
		seller   shop.Shop
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.repo.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		seller, err = s.ledger.GetByID(ctx, sellerID)
		if err != nil {
			return err
		}
		if req.Seller.ID != seller.ID {
			return ErrSellerMismatch
		}
		if req.Status == StatusSucceed {
			approved = req
			return nil
		}

		approved, err = s.repo.MarkSucceeded(ctx, requestID, s.now())
		if errors.Is(err, ErrAlreadySucceeded) {
			approved, err = s.repo.GetByID(ctx, requestID)
			return err
		}
		if err != nil {
			return err
		}
		changed = true

		return s.ledger.RecordTransaction(ctx, sellerID, shop.Transaction{
			ID:        approved.ID,
			Amount:    approved.Amount,
			Status:    string(approved.Status),
			CreatedAt: approved.CreatedAt,
			UpdatedAt: approved.UpdatedAt,
		})
	})
	if err != nil {
		return Request{}, apperror.Internal(err)
	}

	if changed {
		s.notifier.Notify(notification.Message{
			Recipient: seller.Email,
			Subject:   "Payment confirmation",
			Body: fmt.Sprintf("Hello %s, Your withdraw request of %s$ is on the way. Delivery time depends on your bank's rules it usually takes 3days to 7days.",
				seller.Name, decimal.NewFromFloat(approved.Amount).StringFixed(2)),
		})
	}
	return approved, nil
}

func (s *Service) ListWithdrawals(ctx context.Context) ([]Request, error) {
	out, err := s.repo.List(ctx)
	return out, apperror.Internal(err)
}

func (s *Service) ListSellerWithdrawals(ctx context.Context, sellerID string) ([]Request, error) {
	out, err := s.repo.ListBySeller(ctx, sellerID)
	return out, apperror.Internal(err)
}
