package order

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

// Status is the lifecycle state of an order. The string values are the
// ones clients send and receive.
type Status string

const (
	StatusProcessing      Status = "Processing"
	StatusTransferred     Status = "Transferred to delivery partner"
	StatusShipping        Status = "Shipping"
	StatusOnTheWay        Status = "On the way"
	StatusDelivered       Status = "Delivered"
	StatusRefundRequested Status = "Processing refund"
	StatusRefundSuccess   Status = "Refund Success"
)

const PaymentSucceeded = "Succeeded"

var (
	ErrUnknownStatus     = apperror.Validation("unknown order status")
	ErrIllegalTransition = apperror.Validation("illegal order status transition")
)

var transitions = map[Status][]Status{
	StatusProcessing:      {StatusTransferred, StatusRefundRequested},
	StatusTransferred:     {StatusShipping, StatusOnTheWay, StatusDelivered, StatusRefundRequested},
	StatusShipping:        {StatusOnTheWay, StatusDelivered},
	StatusOnTheWay:        {StatusDelivered},
	StatusDelivered:       {StatusRefundRequested},
	StatusRefundRequested: {StatusRefundSuccess},
	StatusRefundSuccess:   {},
}

// ParseStatus converts a request string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	return lo.Contains(transitions[s], next)
}

// PaymentInfo is whatever the client reported about the payment.
type PaymentInfo struct {
	ID     string `json:"id,omitempty" bson:"id,omitempty"`
	Status string `json:"status,omitempty" bson:"status,omitempty"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"`
}

type ShippingAddress struct {
	Country     string `json:"country" bson:"country"`
	City        string `json:"city" bson:"city"`
	Address1    string `json:"address1" bson:"address1"`
	Address2    string `json:"address2,omitempty" bson:"address2,omitempty"`
	ZipCode     string `json:"zipCode" bson:"zip_code"`
	AddressType string `json:"addressType,omitempty" bson:"address_type,omitempty"`
}

// Order is one shop's share of a checkout. Cart, address and user are
// snapshots taken at creation and never change afterwards.
type Order struct {
	ID              string          `json:"id" bson:"_id"`
	ShopID          string          `json:"shopId" bson:"shop_id"`
	Cart            []cart.Item     `json:"cart" bson:"cart"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shipping_address"`
	User            user.Snapshot   `json:"user" bson:"user"`
	TotalPrice      float64         `json:"totalPrice" bson:"total_price"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo" bson:"payment_info"`
	Status          Status          `json:"status" bson:"status"`
	StockFulfilled  bool            `json:"stockFulfilled" bson:"stock_fulfilled"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"delivered_at,omitempty"`
	Version         int64           `json:"version" bson:"version"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updated_at"`
}

// Lines returns the inventory lines covered by the order.
func (o Order) Lines() []product.Line {
	return lo.Map(o.Cart, func(it cart.Item, _ int) product.Line {
		return product.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	})
}
