package withdraw

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusSucceed Status = "succeed"
)

// Seller is the shop snapshot taken when the request was made.
type Seller struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Request is a seller payout. The amount has already left the seller's
// available balance when the request exists.
type Request struct {
	ID        string    `json:"id" bson:"_id"`
	Seller    Seller    `json:"seller" bson:"seller"`
	Amount    float64   `json:"amount" bson:"amount"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
