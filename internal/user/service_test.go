package user

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(nil))

	in := RegisterInput{
		Name:        gofakeit.Name(),
		Email:       gofakeit.Email(),
		Password:    "hunter22",
		PhoneNumber: gofakeit.Phone(),
	}
	created, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.Equal(t, auth.RoleUser, created.Role)
	assert.NotEmpty(t, created.ID)

	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := svc.Authenticate(ctx, in.Email, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Authenticate(ctx, in.Email, "nope")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Register(ctx, RegisterInput{Name: "x", Email: "x@example.com", Password: "abc"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "rootroot"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "rootroot"))

	admin, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
}

func TestSnapshotAndDisplayName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository([]User{{ID: "u1", Name: "Ann", Email: "ann@example.com", PhoneNumber: "555"}}))

	snap, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{ID: "u1", Name: "Ann", Email: "ann@example.com", PhoneNumber: "555"}, snap)

	name, err := svc.DisplayName(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	_, err = svc.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddAddress_OnePerType(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository([]User{{ID: "u1", Email: "a@b.c"}}))

	home := Address{Country: "TH", City: "Bangkok", Address1: "1 Main", AddressType: "Home"}
	u, err := svc.AddAddress(ctx, "u1", home)
	require.NoError(t, err)
	require.Len(t, u.Addresses, 1)

	_, err = svc.AddAddress(ctx, "u1", home)
	assert.ErrorIs(t, err, ErrAddressTypeExists)

	_, err = svc.AddAddress(ctx, "u1", Address{AddressType: "Office"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.AddAddress(ctx, "missing", home)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err = svc.RemoveAddress(ctx, "u1", u.Addresses[0].ID)
	require.NoError(t, err)
	assert.Empty(t, u.Addresses)
}
