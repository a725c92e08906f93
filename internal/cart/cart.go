package cart

import (
	"time"

	"github.com/samber/lo"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

var ErrEmptyCart = apperror.Validation("cart empty")

// Cart belongs to exactly one user. It is emptied, never deleted.
type Cart struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"user_id"`
	Items     []Item    `json:"items" bson:"items"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Item snapshots the product at the time it was added. A cart holds at
// most one item per product.
type Item struct {
	ProductID string    `json:"productId" bson:"product_id"`
	ShopID    string    `json:"shopId" bson:"shop_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int       `json:"qty" bson:"quantity"`
	AddedAt   time.Time `json:"addedAt" bson:"added_at"`
}

// ShopGroup is the slice of a cart that becomes one order.
type ShopGroup struct {
	ShopID string
	Items  []Item
}

// GroupByShop partitions items by shop. Groups appear in order of each
// shop's first item and items keep their cart order inside a group.
func GroupByShop(items []Item) ([]ShopGroup, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	byShop := lo.GroupBy(items, func(it Item) string { return it.ShopID })
	shops := lo.Uniq(lo.Map(items, func(it Item, _ int) string { return it.ShopID }))

	return lo.Map(shops, func(shopID string, _ int) ShopGroup {
		return ShopGroup{ShopID: shopID, Items: byShop[shopID]}
	}), nil
}
