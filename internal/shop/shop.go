package shop

import "time"

// Shop is a seller account together with its balance ledger.
type Shop struct {
	ID               string          `json:"id" bson:"_id"`
	Name             string          `json:"name" bson:"name"`
	Email            string          `json:"email" bson:"email"`
	Password         string          `json:"password,omitempty" bson:"password"`
	PhoneNumber      string          `json:"phoneNumber" bson:"phone_number"`
	Description      string          `json:"description,omitempty" bson:"description,omitempty"`
	Address          string          `json:"address" bson:"address"`
	ZipCode          string          `json:"zipCode" bson:"zip_code"`
	Avatar           string          `json:"avatar,omitempty" bson:"avatar,omitempty"`
	AvailableBalance float64         `json:"availableBalance" bson:"-"`
	Transactions     []Transaction   `json:"transactions" bson:"transactions"`
	WithdrawMethod   *WithdrawMethod `json:"withdrawMethod,omitempty" bson:"withdraw_method,omitempty"`
	CreatedAt        time.Time       `json:"createdAt" bson:"created_at"`
}

// Transaction is an append-only payout record. ID is the withdraw request id.
type Transaction struct {
	ID        string    `json:"id" bson:"id"`
	Amount    float64   `json:"amount" bson:"amount"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type WithdrawMethod struct {
	BankName          string `json:"bankName" bson:"bank_name"`
	BankCountry       string `json:"bankCountry" bson:"bank_country"`
	BankSwiftCode     string `json:"bankSwiftCode" bson:"bank_swift_code"`
	BankAccountNumber string `json:"bankAccountNumber" bson:"bank_account_number"`
	BankHolderName    string `json:"bankHolderName" bson:"bank_holder_name"`
	BankAddress       string `json:"bankAddress" bson:"bank_address"`
}

func sanitizeShop(s Shop) Shop {
	s.Password = ""
	return s
}

// publicShop strips ledger details from a shop shown to other users.
func publicShop(s Shop) Shop {
	s = sanitizeShop(s)
	s.AvailableBalance = 0
	s.Transactions = nil
	s.WithdrawMethod = nil
	return s
}
