package payment

import (
	"context"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var (
	ErrInvalidAmount = apperror.Validation("amount must be greater than 0")
	ErrUnavailable   = apperror.Unavailable("payment provider is unavailable, please try again later")
)

// Gateway creates payment intents. Amount is in the currency's smallest
// unit. The returned string is the client secret handed to the browser.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}
