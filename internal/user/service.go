package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

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
}

func (in RegisterInput) isMissingRequiredFields() bool {
	return in.Name == "" || in.Email == "" || in.Password == ""
}

// Register creates an account with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, in, auth.RoleUser)
}

// EnsureAdmin creates an admin account for email unless one exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.create(ctx, RegisterInput{Name: "Admin", Email: email, Password: password}, auth.RoleAdmin)
	if errors.Is(err, ErrEmailExists) {
		return nil
	}
	return err
}

func (s *Service) create(ctx context.Context, in RegisterInput, role auth.Role) (User, error) {
	if in.isMissingRequiredFields() {
		return User{}, apperror.Validation("Missing required fields")
	}
	if len(in.Password) < minPasswordLength {
		return User{}, apperror.Validation("Password should be greater than 4 characters")
	}
	email := normalizeEmail(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, apperror.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperror.Internal(err)
	}

	created, err := s.repo.Create(ctx, User{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Email:       email,
		Password:    string(hashed),
		PhoneNumber: in.PhoneNumber,
		Role:        role,
		Addresses:   []Address{},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return User{}, apperror.Internal(err)
	}
	return sanitizeUser(created), nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return sanitizeUser(u), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, apperror.Internal(err)
	}
	return sanitizeUser(u), nil
}

// Snapshot returns the copy of the user stored on new orders.
func (s *Service) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return u.Snapshot(), nil
}

// DisplayName is the name shown next to the user's product reviews.
func (s *Service) DisplayName(ctx context.Context, id string) (string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, addr Address) (User, error) {
	if addr.AddressType == "" || addr.Address1 == "" || addr.City == "" || addr.Country == "" {
		return User{}, apperror.Validation("country, city, address1 and addressType are required")
	}
	addr.ID = uuid.NewString()
	if err := s.repo.AddAddress(ctx, userID, addr); err != nil {
		return User{}, apperror.Internal(err)
	}
	return s.GetByID(ctx, userID)
}

func (s *Service) RemoveAddress(ctx context.Context, userID, addressID string) (User, error) {
	if err := s.repo.RemoveAddress(ctx, userID, addressID); err != nil {
		return User{}, apperror.Internal(err)
	}
	return s.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
