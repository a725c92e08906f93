package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/database"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

var (
	ErrEmptyOrder          = apperror.Validation("order must contain at least one item")
	ErrInvalidQuantity     = apperror.Validation("item quantity must be greater than 0")
	ErrMismatchedShop      = apperror.Validation("every item must belong to the order's shop")
	ErrNotRefundRequest    = apperror.Validation("refund requests must set status to Processing refund")
	ErrNotRefundAcceptance = apperror.Validation("refund acceptance must set status to Refund Success")
)

// The platform keeps 10% of every delivered order.
var serviceChargeRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))

// Inventory is the stock ledger the order lifecycle drives.
type Inventory interface {
	FulfillAll(ctx context.Context, lines []product.Line) error
	ReverseAll(ctx context.Context, lines []product.Line) error
}

// Balance is the seller ledger credited on delivery.
type Balance interface {
	Credit(ctx context.Context, shopID string, amount decimal.Decimal) error
}

// Carts is the cart source for checkout. Empty runs inside the checkout
// transaction; Invalidate runs after it commits.
type Carts interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Empty(ctx context.Context, userID string) error
	Invalidate(userID string)
}

type Service struct {
	repo      Repository
	tx        database.Transactor
	inventory Inventory
	balance   Balance
	carts     Carts
	now       func() time.Time
}

func NewService(repo Repository, tx database.Transactor, inventory Inventory, balance Balance, carts Carts) *Service {
	return &Service{
		repo:      repo,
		tx:        tx,
		inventory: inventory,
		balance:   balance,
		carts:     carts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Checkout carries the parts of an order shared by every shop in one
// checkout.
type Checkout struct {
	User            user.Snapshot
	ShippingAddress ShippingAddress
	PaymentInfo     PaymentInfo
}

// Create stores a single order for shopID.
func (s *Service) Create(ctx context.Context, shopID string, items []cart.Item, co Checkout) (Order, error) {
	ord, err := s.build(shopID, items, co)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.CreateMany(ctx, []Order{ord}); err != nil {
		return Order{}, apperror.Internal(err)
	}
	return ord, nil
}

// PlaceOrder turns the user's cart into one order per shop and empties the
// cart.
func (s *Service) PlaceOrder(ctx context.Context, co Checkout) ([]Order, error) {
	if co.User.ID == "" {
		return nil, apperror.Validation("user is required")
	}

	var orders []Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items, err := s.carts.Items(ctx, co.User.ID)
		if err != nil {
			return err
		}
		groups, err := cart.GroupByShop(items)
		if err != nil {
			return err
		}

		orders = make([]Order, 0, len(groups))
		for _, g := range groups {
			ord, err := s.build(g.ShopID, g.Items, co)
			if err != nil {
				return err
			}
			orders = append(orders, ord)
		}
		if err := s.repo.CreateMany(ctx, orders); err != nil {
			return err
		}
		return s.carts.Empty(ctx, co.User.ID)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	s.carts.Invalidate(co.User.ID)
	return orders, nil
}

func (s *Service) build(shopID string, items []cart.Item, co Checkout) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return Order{}, ErrInvalidQuantity
		}
		if it.ShopID != shopID {
			return Order{}, ErrMismatchedShop
		}
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	now := s.now()
	return Order{
		ID:              uuid.NewString(),
		ShopID:          shopID,
		Cart:            append([]cart.Item{}, items...),
		ShippingAddress: co.ShippingAddress,
		User:            co.User,
		TotalPrice:      total.Round(2).InexactFloat64(),
		PaymentInfo:     co.PaymentInfo,
		Status:          StatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Order, error) {
	ord, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, apperror.Internal(err)
	}
	return ord, nil
}

// AdvanceStatus moves an order along its delivery lifecycle.
func (s *Service) AdvanceStatus(ctx context.Context, id string, next Status) (Order, error) {
	return s.transition(ctx, id, next)
}

// RequestRefund is the customer's side of a refund and only accepts
// StatusRefundRequested.
func (s *Service) RequestRefund(ctx context.Context, id string, next Status) (Order, error) {
	if next != StatusRefundRequested {
		return Order{}, ErrNotRefundRequest
	}
	return s.transition(ctx, id, next)
}

// AcceptRefund is the seller's side of a refund and only accepts
// StatusRefundSuccess.
func (s *Service) AcceptRefund(ctx context.Context, id string, next Status) (Order, error) {
	if next != StatusRefundSuccess {
		return Order{}, ErrNotRefundAcceptance
	}
	return s.transition(ctx, id, next)
}

// transition validates the move against the transition table before any
// ledger is touched, then applies the ledger effects of the target status
// and persists the order in the same transaction.
func (s *Service) transition(ctx context.Context, id string, next Status) (Order, error) {
	if _, ok := transitions[next]; !ok {
		return Order{}, ErrUnknownStatus
	}

	var updated Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ord, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !ord.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %q to %q", ErrIllegalTransition, ord.Status, next)
		}

		now := s.now()
		switch next {
		case StatusTransferred:
			if err := s.inventory.FulfillAll(ctx, ord.Lines()); err != nil {
				return err
			}
			ord.StockFulfilled = true
		case StatusDelivered:
			ord.DeliveredAt = &now
			ord.PaymentInfo.Status = PaymentSucceeded
			if err := s.balance.Credit(ctx, ord.ShopID, Payout(ord.TotalPrice)); err != nil {
				return err
			}
		case StatusRefundSuccess:
			if ord.StockFulfilled {
				if err := s.inventory.ReverseAll(ctx, ord.Lines()); err != nil {
					return err
				}
				ord.StockFulfilled = false
			}
		}

		ord.Status = next
		ord.UpdatedAt = now
		updated, err = s.repo.Update(ctx, ord)
		return err
	})
	if err != nil {
		return Order{}, apperror.Internal(err)
	}
	return updated, nil
}

// Payout is what the seller receives for a delivered order of total.
func Payout(total float64) decimal.Decimal {
	t := decimal.NewFromFloat(total)
	return t.Sub(t.Mul(serviceChargeRate)).Round(2)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	return orders, apperror.Internal(err)
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]Order, error) {
	orders, err := s.repo.ListByShop(ctx, shopID)
	return orders, apperror.Internal(err)
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	return orders, apperror.Internal(err)
}
