package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/auth"
	"github.com/wichananm65/marketplace-backend/internal/auth/authtest"
)

func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	uHandler.RegisterPublicRoutes(app)
	app.Use(authtest.Actor())
	uHandler.RegisterProtectedRoutes(app)
	return app
}

func TestProfileRoute_RegistrationAndAuth(t *testing.T) {
	seed := []User{{ID: "u7", Email: "j@example.com", Name: "Jenny", Password: "hash", Role: auth.RoleUser}}
	handler := NewHandler(NewService(NewInMemoryRepository(seed)), auth.Issuer{Secret: "test", TTL: time.Hour})
	app := makeAppWithUserHandler(handler)

	// route registration check
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/profile"] {
		t.Fatalf("expected route '/api/v1/profile' to be registered")
	}

	// unauthorized request should yield 401
	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/profile", nil))
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected unauthorized status, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-Actor-ID", "u7")
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("authorized profile request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 OK for authorized profile, got %d", res.StatusCode)
	}

	b, _ := io.ReadAll(res.Body)
	body := string(b)
	if !strings.Contains(body, "j@example.com") {
		t.Fatalf("response body does not contain expected email, got %s", body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("response body should not expose password field")
	}

	// sellers have no user profile
	req = httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-Actor-ID", "u7")
	req.Header.Set("X-Actor-Role", "seller")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for seller, got %d", res.StatusCode)
	}
}

func TestSignUpSignInAndAddresses(t *testing.T) {
	handler := NewHandler(NewService(NewInMemoryRepository(nil)), auth.Issuer{Secret: "test", TTL: time.Hour})
	app := makeAppWithUserHandler(handler)

	signUp := `{"name":"Ann","email":"Ann@Example.com","password":"secret1"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req, -1)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req, -1)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"ann@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req, -1)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"ann@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req, -1)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for sign-in, got %d", res.StatusCode)
	}
	var login struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	json.NewDecoder(res.Body).Decode(&login)
	if login.Token == "" || login.User.Role != auth.RoleUser {
		t.Fatalf("unexpected sign-in response %+v", login)
	}

	addr := `{"country":"TH","city":"Bangkok","address1":"1 Main","zipCode":"10110","addressType":"Home"}`
	req = httptest.NewRequest("PUT", "/api/v1/profile/address", strings.NewReader(addr))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", login.User.ID)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 adding address, got %d", res.StatusCode)
	}
	var withAddr struct {
		User User `json:"user"`
	}
	json.NewDecoder(res.Body).Decode(&withAddr)
	if len(withAddr.User.Addresses) != 1 {
		t.Fatalf("expected one address, got %+v", withAddr.User.Addresses)
	}

	req = httptest.NewRequest("PUT", "/api/v1/profile/address", strings.NewReader(addr))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", login.User.ID)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate address type, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/profile/address/"+withAddr.User.Addresses[0].ID, nil)
	req.Header.Set("X-Actor-ID", login.User.ID)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 removing address, got %d", res.StatusCode)
	}
	json.NewDecoder(res.Body).Decode(&withAddr)
	if len(withAddr.User.Addresses) != 0 {
		t.Fatalf("expected no addresses, got %+v", withAddr.User.Addresses)
	}
}
