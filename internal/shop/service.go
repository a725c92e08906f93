package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode"`
	Description string `json:"description"`
}

func (in RegisterInput) isMissingRequiredFields() bool {
	return in.Name == "" || in.Email == "" || in.Password == "" || in.PhoneNumber == "" || in.Address == ""
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Shop, error) {
	if in.isMissingRequiredFields() {
		return Shop{}, apperror.Validation("Missing required fields")
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return Shop{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return Shop{}, apperror.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Shop{}, apperror.Internal(err)
	}

	created, err := s.repo.Create(ctx, Shop{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Password:     string(hashed),
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		ZipCode:      in.ZipCode,
		Description:  in.Description,
		Transactions: []Transaction{},
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return Shop{}, apperror.Internal(err)
	}
	return sanitizeShop(created), nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (Shop, error) {
	sh, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Shop{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(sh.Password), []byte(password)) != nil {
		return Shop{}, ErrInvalidCredentials
	}
	return sanitizeShop(sh), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Shop, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Shop{}, apperror.Internal(err)
	}
	return sanitizeShop(sh), nil
}

// Credit adds amount to the shop's available balance. Zero is a no-op.
func (s *Service) Credit(ctx context.Context, shopID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrSubCentAmount
	}
	if amount.IsZero() {
		return nil
	}
	return apperror.Internal(s.repo.Credit(ctx, shopID, amount))
}

// Debit removes amount from the balance, failing with ErrInsufficientFunds
// when the balance does not cover it.
func (s *Service) Debit(ctx context.Context, shopID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrSubCentAmount
	}
	return apperror.Internal(s.repo.Debit(ctx, shopID, amount))
}

// RecordTransaction appends txn to the shop history exactly once per txn.ID.
func (s *Service) RecordTransaction(ctx context.Context, shopID string, txn Transaction) error {
	if txn.ID == "" {
		return apperror.Validation("transaction id is required")
	}
	return apperror.Internal(s.repo.AppendTransaction(ctx, shopID, txn))
}

func (s *Service) SetWithdrawMethod(ctx context.Context, shopID string, method WithdrawMethod) (Shop, error) {
	if method.BankName == "" || method.BankAccountNumber == "" || method.BankHolderName == "" {
		return Shop{}, apperror.Validation("bankName, bankAccountNumber and bankHolderName are required")
	}
	sh, err := s.repo.SetWithdrawMethod(ctx, shopID, &method)
	if err != nil {
		return Shop{}, apperror.Internal(err)
	}
	return sanitizeShop(sh), nil
}

func (s *Service) DeleteWithdrawMethod(ctx context.Context, shopID string) (Shop, error) {
	sh, err := s.repo.SetWithdrawMethod(ctx, shopID, nil)
	if err != nil {
		return Shop{}, apperror.Internal(err)
	}
	return sanitizeShop(sh), nil
}
