package product

import "time"

// Product is a catalog entry owned by one shop. Stock and SoldOut move
// together: every fulfilment takes from one and adds to the other.
type Product struct {
	ID            string    `json:"id" bson:"_id"`
	ShopID        string    `json:"shopId" bson:"shop_id"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description" bson:"description"`
	Category      string    `json:"category" bson:"category"`
	Tags          string    `json:"tags,omitempty" bson:"tags,omitempty"`
	OriginalPrice float64   `json:"originalPrice" bson:"original_price"`
	DiscountPrice float64   `json:"discountPrice" bson:"discount_price"`
	Stock         int       `json:"stock" bson:"stock"`
	SoldOut       int       `json:"sold_out" bson:"sold_out"`
	Images        []string  `json:"images" bson:"images"`
	Reviews       []Review  `json:"reviews" bson:"reviews"`
	Ratings       float64   `json:"ratings" bson:"ratings"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// SellingPrice is the discount price when one is set, the original otherwise.
func (p Product) SellingPrice() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.OriginalPrice
}

// Review is one user's rating of a product. A user holds at most one review
// per product.
type Review struct {
	UserID    string    `json:"userId" bson:"user_id"`
	UserName  string    `json:"userName" bson:"user_name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Line is a product quantity pair taken from an order line.
type Line struct {
	ProductID string
	Quantity  int
}

// StockAdjustment is applied atomically together with the rest of its batch.
type StockAdjustment struct {
	ProductID    string
	StockDelta   int
	SoldOutDelta int
}

// AllowedCategories contains the supported product categories used across the app.
var AllowedCategories = []string{
	"Computers and Laptops",
	"Cosmetics and body care",
	"Accesories",
	"Cloths",
	"Shoes",
	"Gifts",
	"Pet Care",
	"Mobile and Tablets",
	"Music and Gaming",
	"Others",
}
