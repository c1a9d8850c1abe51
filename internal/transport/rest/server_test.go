package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/marketplace/internal/auth"
	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/catalog"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

type testServer struct {
	server   *Server
	products domain.ProductRepository
	accounts domain.AccountRepository
	tokens   *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	products := memory.NewProductRepository()
	accounts := memory.NewAccountRepository()
	ordersRepo := memory.NewOrderRepository()
	history := memory.NewHistoryRepository()
	outboxRepo := memory.NewOutboxRepository()
	idempotencyRepo := memory.NewIdempotencyRepository()

	tokens, err := auth.NewTokenManager("test-secret", "marketplace-test", time.Hour)
	require.NoError(t, err)

	orderService := orders.NewService(ordersRepo, products, history, outboxRepo)
	catalogService := catalog.NewService(products)

	return &testServer{
		server:   NewServer(orderService, catalogService, accounts, idempotencyRepo, tokens),
		products: products,
		accounts: accounts,
		tokens:   tokens,
	}
}

func (ts *testServer) token(t *testing.T, actor domain.Actor) string {
	t.Helper()
	token, err := ts.tokens.Issue(actor)
	require.NoError(t, err)
	return token
}

func (ts *testServer) seedProduct(t *testing.T, id, sellerID string, priceMinor int64, stock int32) {
	t.Helper()
	require.NoError(t, ts.products.Put(domain.Product{
		ID:         id,
		Name:       "product " + id,
		PriceMinor: priceMinor,
		Stock:      stock,
		SellerID:   sellerID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}))
}

func (ts *testServer) approveSeller(t *testing.T, sellerID string) {
	t.Helper()
	require.NoError(t, ts.accounts.Put(domain.Account{
		ID:     sellerID,
		Role:   domain.RoleSeller,
		Status: domain.AccountStatusApproved,
	}))
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}, headers map[string]string) (*http.Response, APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := ts.server.App().Test(req, 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var apiResp APIResponse
	require.NoError(t, json.Unmarshal(raw, &apiResp), "body: %s", raw)
	return resp, apiResp
}

func orderID(t *testing.T, apiResp APIResponse) string {
	t.Helper()
	data, ok := apiResp.Data.(map[string]interface{})
	require.True(t, ok, "expected order object in data")
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

var placeBody = map[string]interface{}{
	"items":            []map[string]interface{}{{"product_id": "product-1", "qty": 2}},
	"delivery_address": "Tverskaya 1, Moscow",
	"payment_method":   "card",
}

func TestServer_RequiresAuthentication(t *testing.T) {
	ts := newTestServer(t)

	resp, apiResp := ts.request(t, http.MethodGet, "/api/v1/orders", "", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, apiResp.Error)
	assert.Equal(t, "UNAUTHORIZED", apiResp.Error.Code)
}

func TestServer_RejectsGarbageToken(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.request(t, http.MethodGet, "/api/v1/orders", "not-a-jwt", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_SellerWithoutApprovalIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}

	// Нет учётной записи вовсе.
	resp, _ := ts.request(t, http.MethodGet, "/api/v1/seller/orders", ts.token(t, seller), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Учётная запись есть, но ещё не одобрена.
	require.NoError(t, ts.accounts.Put(domain.Account{ID: "seller-1", Role: domain.RoleSeller, Status: domain.AccountStatusPending}))
	resp, _ = ts.request(t, http.MethodGet, "/api/v1/seller/orders", ts.token(t, seller), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ApprovedSellerSeesOwnOrders(t *testing.T) {
	ts := newTestServer(t)
	ts.approveSeller(t, "seller-1")
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	resp, _ := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), placeBody, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	resp, apiResp := ts.request(t, http.MethodGet, "/api/v1/seller/orders", ts.token(t, seller), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	views, ok := apiResp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
	view := views[0].(map[string]interface{})
	assert.Equal(t, "customer-1", view["customer_id"])
	assert.EqualValues(t, 200, view["subtotal_minor"])
}

func TestServer_PlaceOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "product-1", "seller-1", 100, 5)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	resp, apiResp := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), placeBody, nil)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, apiResp.Success)

	data := apiResp.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.EqualValues(t, 200, data["amount_minor"])

	product, err := ts.products.Get("product-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, product.Stock)
}

func TestServer_PlaceOrderValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "product-1", "seller-1", 100, 5)
	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	token := ts.token(t, customer)

	t.Run("empty order", func(t *testing.T) {
		body := map[string]interface{}{
			"items":            []map[string]interface{}{},
			"delivery_address": "Tverskaya 1, Moscow",
			"payment_method":   "card",
		}
		resp, apiResp := ts.request(t, http.MethodPost, "/api/v1/orders", token, body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, apiResp.Success)
	})

	t.Run("unknown product", func(t *testing.T) {
		body := map[string]interface{}{
			"items":            []map[string]interface{}{{"product_id": "no-such-product", "qty": 1}},
			"delivery_address": "Tverskaya 1, Moscow",
			"payment_method":   "card",
		}
		resp, apiResp := ts.request(t, http.MethodPost, "/api/v1/orders", token, body, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.NotNil(t, apiResp.Error)
		assert.Equal(t, "no-such-product", apiResp.Error.Details["product_id"])
	})

	t.Run("insufficient stock", func(t *testing.T) {
		body := map[string]interface{}{
			"items":            []map[string]interface{}{{"product_id": "product-1", "qty": 50}},
			"delivery_address": "Tverskaya 1, Moscow",
			"payment_method":   "card",
		}
		resp, apiResp := ts.request(t, http.MethodPost, "/api/v1/orders", token, body, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		require.NotNil(t, apiResp.Error)
		assert.EqualValues(t, 5, apiResp.Error.Details["available"])

		product, err := ts.products.Get("product-1")
		require.NoError(t, err)
		assert.EqualValues(t, 5, product.Stock, "stock must stay untouched")
	})

	t.Run("seller cannot place orders", func(t *testing.T) {
		ts.approveSeller(t, "seller-1")
		seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
		resp, _ := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, seller), placeBody, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestServer_CustomerOrdersRequiresCustomerRole(t *testing.T) {
	ts := newTestServer(t)
	ts.approveSeller(t, "seller-1")
	seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}

	resp, _ := ts.request(t, http.MethodGet, "/api/v1/orders", ts.token(t, seller), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_StatusLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.approveSeller(t, "seller-1")
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}

	_, placed := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), placeBody, nil)
	id := orderID(t, placed)

	// Продавец двигает заказ по жизненному циклу.
	resp, apiResp := ts.request(t, http.MethodPut, "/api/v1/orders/"+id+"/status", ts.token(t, seller),
		map[string]interface{}{"status": "processing", "note": "packing"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "processing", apiResp.Data.(map[string]interface{})["status"])

	// Покупатель не может отменить заказ после подтверждения.
	resp, _ = ts.request(t, http.MethodPut, "/api/v1/orders/"+id+"/status", ts.token(t, customer),
		map[string]interface{}{"status": "cancelled"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Неизвестный статус отклоняется.
	resp, _ = ts.request(t, http.MethodPut, "/api/v1/orders/"+id+"/status", ts.token(t, seller),
		map[string]interface{}{"status": "teleported"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// История видна покупателю.
	resp, apiResp = ts.request(t, http.MethodGet, "/api/v1/orders/"+id+"/history", ts.token(t, customer), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	changes := apiResp.Data.([]interface{})
	require.Len(t, changes, 2)
}

func TestServer_CustomerCancelsPendingOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	_, placed := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), placeBody, nil)
	id := orderID(t, placed)

	resp, apiResp := ts.request(t, http.MethodPut, "/api/v1/orders/"+id+"/status", ts.token(t, customer),
		map[string]interface{}{"status": "cancelled", "note": "changed my mind"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", apiResp.Data.(map[string]interface{})["status"])
}

func TestServer_ForeignOrderIsHidden(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: "customer-2", Role: domain.RoleCustomer}

	_, placed := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), placeBody, nil)
	id := orderID(t, placed)

	resp, _ := ts.request(t, http.MethodGet, "/api/v1/orders/"+id, ts.token(t, stranger), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.request(t, http.MethodGet, "/api/v1/orders/no-such-order", ts.token(t, customer), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SellerOrderDetailIsScoped(t *testing.T) {
	ts := newTestServer(t)
	ts.approveSeller(t, "seller-1")
	ts.approveSeller(t, "seller-2")
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)
	ts.seedProduct(t, "product-2", "seller-2", 300, 5)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "product-1", "qty": 5},
			{"product_id": "product-2", "qty": 1},
		},
		"delivery_address": "Tverskaya 1, Moscow",
		"payment_method":   "card",
	}
	resp, placed := ts.request(t, http.MethodPost, "/api/v1/orders", ts.token(t, customer), body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := orderID(t, placed)

	// Продавец видит только свои позиции и подытог, без суммы заказа.
	seller1 := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	resp, apiResp := ts.request(t, http.MethodGet, "/api/v1/orders/"+id, ts.token(t, seller1), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := apiResp.Data.(map[string]interface{})
	assert.EqualValues(t, 500, data["subtotal_minor"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "product-1", items[0].(map[string]interface{})["product_id"])
	_, leaked := data["amount_minor"]
	assert.False(t, leaked, "order total must not be exposed to a seller")

	seller2 := domain.Actor{ID: "seller-2", Role: domain.RoleSeller}
	resp, apiResp = ts.request(t, http.MethodGet, "/api/v1/orders/"+id, ts.token(t, seller2), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 300, apiResp.Data.(map[string]interface{})["subtotal_minor"])

	// Покупатель-владелец по-прежнему видит заказ целиком.
	resp, apiResp = ts.request(t, http.MethodGet, "/api/v1/orders/"+id, ts.token(t, customer), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = apiResp.Data.(map[string]interface{})
	assert.EqualValues(t, 800, data["amount_minor"])
	assert.Len(t, data["items"].([]interface{}), 2)

	// Продавец без позиций в заказе его не видит.
	ts.approveSeller(t, "seller-3")
	foreign := domain.Actor{ID: "seller-3", Role: domain.RoleSeller}
	resp, _ = ts.request(t, http.MethodGet, "/api/v1/orders/"+id, ts.token(t, foreign), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_IdempotentPlacement(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "product-1", "seller-1", 100, 10)

	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	token := ts.token(t, customer)
	headers := map[string]string{"Idempotency-Key": "place-once"}

	resp, first := ts.request(t, http.MethodPost, "/api/v1/orders", token, placeBody, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, second := ts.request(t, http.MethodPost, "/api/v1/orders", token, placeBody, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, orderID(t, first), orderID(t, second), "replay must return the original order")

	// Списание произошло ровно один раз.
	product, err := ts.products.Get("product-1")
	require.NoError(t, err)
	assert.EqualValues(t, 8, product.Stock)

	// Тот же ключ с другим телом — конфликт.
	otherBody := map[string]interface{}{
		"items":            []map[string]interface{}{{"product_id": "product-1", "qty": 1}},
		"delivery_address": "Tverskaya 1, Moscow",
		"payment_method":   "card",
	}
	resp, apiResp := ts.request(t, http.MethodPost, "/api/v1/orders", token, otherBody, headers)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, apiResp.Error)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", apiResp.Error.Code)
}

func TestServer_CatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.approveSeller(t, "seller-1")
	seller := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	token := ts.token(t, seller)

	body := map[string]interface{}{
		"id":          "product-1",
		"name":        "Mechanical keyboard",
		"price_minor": 450000,
		"stock":       7,
		"category_id": "peripherals",
	}
	resp, apiResp := ts.request(t, http.MethodPut, "/api/v1/products", token, body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := apiResp.Data.(map[string]interface{})
	assert.Equal(t, "seller-1", data["seller_id"], "seller id comes from the token")

	resp, apiResp = ts.request(t, http.MethodGet, "/api/v1/products/product-1", token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mechanical keyboard", apiResp.Data.(map[string]interface{})["name"])

	resp, _ = ts.request(t, http.MethodGet, "/api/v1/products/missing", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	customer := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}

	resp, _ := ts.request(t, http.MethodGet, "/api/v1/definitely-missing", ts.token(t, customer), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
