package user

import (
	"time"

	"github.com/wichananm65/marketplace-backend/internal/auth"
)

type User struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Email       string    `json:"email" bson:"email"`
	Password    string    `json:"password,omitempty" bson:"password"`
	PhoneNumber string    `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	Role        auth.Role `json:"role" bson:"role"`
	Addresses   []Address `json:"addresses" bson:"addresses"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// Address is one entry of a user's address book. A user keeps at most one
// address per AddressType.
type Address struct {
	ID          string `json:"id" bson:"id"`
	Country     string `json:"country" bson:"country"`
	State       string `json:"state,omitempty" bson:"state,omitempty"`
	City        string `json:"city" bson:"city"`
	Address1    string `json:"address1" bson:"address1"`
	Address2    string `json:"address2,omitempty" bson:"address2,omitempty"`
	ZipCode     string `json:"zipCode" bson:"zip_code"`
	AddressType string `json:"addressType" bson:"address_type"`
}

// Snapshot is the copy of a user embedded in orders.
type Snapshot struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Email       string `json:"email" bson:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
}

func (u User) Snapshot() Snapshot {
	return Snapshot{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber}
}

func sanitizeUser(u User) User {
	u.Password = ""
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
	return u
}
