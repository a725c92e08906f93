package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/marketplace-backend/internal/auth/authtest"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/database"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/shop"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

type stubCustomers struct{}

func (stubCustomers) Snapshot(_ context.Context, id string) (user.Snapshot, error) {
	return user.Snapshot{ID: id, Name: "Ann", Email: "ann@example.com"}, nil
}

type ordersResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

func setupApp(t *testing.T) (*fiber.App, *cart.Service) {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: "p1", ShopID: "s1", Name: "Kettle", OriginalPrice: 10, Stock: 5},
	})
	carts := cart.NewService(cart.NewInMemoryRepository(nil), nil, products)
	shops := shop.NewService(shop.NewInMemoryRepository([]shop.Shop{{ID: "s1"}}))
	svc := NewService(NewInMemoryRepository(nil), database.NewMemoryTransactor(), product.NewService(products), shops, carts)

	app := fiber.New()
	app.Use(authtest.Actor())
	NewHandler(svc, stubCustomers{}).RegisterProtectedRoutes(app)
	return app, carts
}

func newRequest(method, path, body, actorID, role string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
		req.Header.Set("X-Actor-Role", role)
	}
	return req
}

func TestOrderRoutes_Lifecycle(t *testing.T) {
	app, carts := setupApp(t)

	res, _ := app.Test(newRequest("POST", "/api/v1/order/create", `{}`, "", ""))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without actor, got %d", res.StatusCode)
	}

	// empty cart
	res, _ = app.Test(newRequest("POST", "/api/v1/order/create", `{}`, "u1", "user"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", res.StatusCode)
	}

	if _, err := carts.AddItem(context.Background(), "u1", "p1", 3); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	body := `{"shippingAddress":{"country":"TH","city":"Bangkok","address1":"1 Main"},"paymentInfo":{"id":"pi_1","type":"Credit Card"}}`
	res, _ = app.Test(newRequest("POST", "/api/v1/order/create", body, "u1", "user"))
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created ordersResponse
	json.NewDecoder(res.Body).Decode(&created)
	if len(created.Orders) != 1 || created.Orders[0].TotalPrice != 30 {
		t.Fatalf("unexpected orders %+v", created.Orders)
	}
	ord := created.Orders[0]
	if ord.User.Name != "Ann" {
		t.Errorf("expected user snapshot, got %+v", ord.User)
	}

	res, _ = app.Test(newRequest("GET", "/api/v1/orders", "", "u1", "user"))
	var mine ordersResponse
	json.NewDecoder(res.Body).Decode(&mine)
	if len(mine.Orders) != 1 {
		t.Fatalf("expected 1 user order, got %d", len(mine.Orders))
	}

	res, _ = app.Test(newRequest("GET", "/api/v1/shop/orders", "", "s1", "seller"))
	var shopOrders ordersResponse
	json.NewDecoder(res.Body).Decode(&shopOrders)
	if len(shopOrders.Orders) != 1 {
		t.Fatalf("expected 1 shop order, got %d", len(shopOrders.Orders))
	}

	statusPath := "/api/v1/order/" + ord.ID + "/status"

	res, _ = app.Test(newRequest("PUT", statusPath, `{"status":"Delivered"}`, "s2", "seller"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for foreign seller, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", statusPath, `{"status":"Teleported"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", statusPath, `{"status":"Delivered"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for illegal transition, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", statusPath, `{"status":"Transferred to delivery partner"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var updated orderResponse
	json.NewDecoder(res.Body).Decode(&updated)
	if !updated.Order.StockFulfilled || updated.Order.Status != StatusTransferred {
		t.Fatalf("unexpected order %+v", updated.Order)
	}

	refundPath := "/api/v1/order/" + ord.ID + "/refund"
	res, _ = app.Test(newRequest("PUT", refundPath+"/accept", `{"status":"Delivered"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when accepting a refund with a delivery status, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", refundPath, `{"status":"Processing refund"}`, "u2", "user"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", res.StatusCode)
	}
	res, _ = app.Test(newRequest("PUT", refundPath, `{"status":"Processing refund"}`, "u1", "user"))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for refund request, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", refundPath+"/accept", `{"status":"Refund Success"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for refund accept, got %d", res.StatusCode)
	}
	json.NewDecoder(res.Body).Decode(&updated)
	if updated.Order.Status != StatusRefundSuccess {
		t.Errorf("expected Refund Success, got %q", updated.Order.Status)
	}
}

func TestOrderRoutes_AdminListing(t *testing.T) {
	app, _ := setupApp(t)

	res, _ := app.Test(newRequest("GET", "/api/v1/admin/orders", "", "u1", "user"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("GET", "/api/v1/admin/orders", "", "a1", "admin"))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res.StatusCode)
	}

	res, _ = app.Test(newRequest("PUT", "/api/v1/order/missing/status", `{"status":"Shipping"}`, "s1", "seller"))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing order, got %d", res.StatusCode)
	}
}
