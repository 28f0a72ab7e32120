package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/catalog"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/handlers"
	"github.com/remedyroot/remedyroot-golang/internal/models"
	"github.com/remedyroot/remedyroot-golang/internal/payments"
	"github.com/remedyroot/remedyroot-golang/internal/routes"
	"github.com/remedyroot/remedyroot-golang/internal/session"
	"github.com/remedyroot/remedyroot-golang/internal/state"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtSecret = []byte("handlers-test-secret")

// memoryGateway is a row store standing in for the data service.
type memoryGateway struct {
	mu     sync.Mutex
	tables map[string][]gateway.Row
	nextID int64
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{tables: make(map[string][]gateway.Row)}
}

func (g *memoryGateway) matches(row gateway.Row, filter gateway.Filter) bool {
	for k, v := range filter {
		if fmt.Sprint(row[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func (g *memoryGateway) Create(_ context.Context, table string, fields gateway.Row) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	row := gateway.Row{"id": g.nextID}
	for k, v := range fields {
		row[k] = v
	}
	g.tables[table] = append(g.tables[table], row)
	return g.nextID, nil
}

func (g *memoryGateway) Read(_ context.Context, table string, filter gateway.Filter, _ *gateway.ReadOptions) ([]gateway.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []gateway.Row
	for _, row := range g.tables[table] {
		if g.matches(row, filter) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (g *memoryGateway) Update(_ context.Context, table string, filter gateway.Filter, fields gateway.Row) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, row := range g.tables[table] {
		if g.matches(row, filter) {
			for k, v := range fields {
				row[k] = v
			}
		}
	}
	return nil
}

func (g *memoryGateway) Delete(_ context.Context, table string, filter gateway.Filter) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var kept []gateway.Row
	for _, row := range g.tables[table] {
		if !g.matches(row, filter) {
			kept = append(kept, row)
		}
	}
	g.tables[table] = kept
	return nil
}

func (g *memoryGateway) Count(_ context.Context, table string, filter gateway.Filter) (int64, error) {
	rows, _ := g.Read(context.Background(), table, filter, nil)
	return int64(len(rows)), nil
}

// missCache never hits, so catalog reads always go to the gateway.
type missCache struct{}

func (missCache) GetRemedies(context.Context, string) ([]models.Remedy, error) {
	return nil, catalog.ErrCacheMiss
}
func (missCache) SetRemedies(context.Context, string, []models.Remedy) error { return nil }
func (missCache) GetProducts(context.Context, string) ([]models.Product, error) {
	return nil, catalog.ErrCacheMiss
}
func (missCache) SetProducts(context.Context, string, []models.Product) error { return nil }
func (missCache) Delete(context.Context, string) error                        { return nil }

// stubPayments settles every confirmation the way the test configures.
type stubPayments struct {
	declineMessage string // decline with this message when non-empty
}

func (s *stubPayments) CreateIntent(_ context.Context, _ cart.Snapshot, _ decimal.Decimal, bearerToken string) (*payments.Intent, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	return &payments.Intent{ClientSecret: "cs_test"}, nil
}

func (s *stubPayments) ConfirmPayment(context.Context, string, payments.Method) (*payments.Outcome, error) {
	if s.declineMessage != "" {
		return &payments.Outcome{Succeeded: false, Message: s.declineMessage}, nil
	}
	return &payments.Outcome{Succeeded: true}, nil
}

type testApp struct {
	router   *gin.Engine
	gw       *memoryGateway
	payments *stubPayments
}

func newTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	gw := newMemoryGateway()
	pay := &stubPayments{}
	app := &handlers.Handlers{
		Gateway: gw,
		Catalog: catalog.NewService(gw, missCache{}, log),
		Syncer:  cart.NewSyncer(gw, log),
		States:  state.NewRegistry(gw, pay, time.Second, time.Second, log),
		Log:     log,
	}

	seed := func(table string, fields gateway.Row) {
		_, err := gw.Create(context.Background(), table, fields)
		require.NoError(t, err)
	}
	seed("ailments", gateway.Row{"name": "Sleep", "slug": "sleep"})
	seed("remedies", gateway.Row{
		"ailment_id": int64(1), "name": "Valerian Root", "slug": "valerian-root", "likes_count": int64(0),
	})
	seed("products", gateway.Row{
		"remedy_id": int64(2), "name": "Valerian Tea", "price": "10.00", "status": "active", "stock_quantity": 20,
	})
	seed("products", gateway.Row{
		"remedy_id": int64(2), "name": "Valerian Drops", "price": "5.00", "status": "active", "stock_quantity": 20,
	})

	return &testApp{
		router:   routes.SetupRouter(app, jwtSecret, "http://localhost:5173"),
		gw:       gw,
		payments: pay,
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func userToken(t *testing.T, userID int64, role string) string {
	token, err := session.GenerateToken(userID, role, jwtSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCartFlow_AddUpdateRemove(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	// Add 2 x 10.00 and 1 x 5.00.
	w := app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	w = app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 4, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "25.00", decodeBody(t, w)["total"])

	// Bump the first line to 3 units.
	w = app.do(t, http.MethodPut, "/v1/cart/items/3", token, gin.H{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "35.00", decodeBody(t, w)["total"])

	// Drop the first line.
	w = app.do(t, http.MethodDelete, "/v1/cart/items/3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5.00", decodeBody(t, w)["total"])

	// Quantity 0 removes the remaining line.
	w = app.do(t, http.MethodPut, "/v1/cart/items/4", token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.00", decodeBody(t, w)["total"])
}

func TestCartFlow_UnknownProductRejected(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	w := app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartSync_PersistsAndRestores(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	w := app.do(t, http.MethodPost, "/v1/cart/sync", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	rows, err := app.gw.Read(context.Background(), "cart_items", gateway.Filter{"user_id": int64(7)}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// A fresh device restores the same cart from the persisted rows.
	w = app.do(t, http.MethodPost, "/v1/cart/restore", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20.00", decodeBody(t, w)["total"])
}

func TestCheckout_SuccessClearsCartAndRecordsOrder(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 4, "quantity": 1})

	w := app.do(t, http.MethodPost, "/v1/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "awaiting_payment_method", body["status"])
	assert.Equal(t, "25.00", body["totalAmount"])

	w = app.do(t, http.MethodPost, "/v1/checkout/payment", token, gin.H{"payment_method_token": "pm_ok"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "succeeded", decodeBody(t, w)["status"])

	// Cart is empty and the order was written with its frozen total.
	w = app.do(t, http.MethodGet, "/v1/cart", token, nil)
	assert.Equal(t, "0.00", decodeBody(t, w)["total"])

	orders, err := app.gw.Read(context.Background(), "orders", gateway.Filter{"user_id": int64(7)}, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "25.00", fmt.Sprint(orders[0]["total_amount"]))

	// The success toast is waiting in the feed.
	w = app.do(t, http.MethodGet, "/v1/notifications", token, nil)
	assert.Contains(t, w.Body.String(), "Payment successful")
}

func TestCheckout_DeclinePreservesCart(t *testing.T) {
	app := newTestApp(t)
	app.payments.declineMessage = "Your card has insufficient funds."
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	app.do(t, http.MethodPost, "/v1/checkout", token, nil)

	w := app.do(t, http.MethodPost, "/v1/checkout/payment", token, gin.H{"payment_method_token": "pm_bad"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "Your card has insufficient funds.", body["failureMessage"])

	// Nothing has to be re-added.
	w = app.do(t, http.MethodGet, "/v1/cart", token, nil)
	assert.Equal(t, "20.00", decodeBody(t, w)["total"])
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	w := app.do(t, http.MethodPost, "/v1/checkout", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLikeToggle_CreatesAndDeletesRelationRow(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	w := app.do(t, http.MethodPost, "/v1/likes/remedies/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	remedy := decodeBody(t, w)["remedy"].(map[string]any)
	assert.Equal(t, true, remedy["isLikedByCurrentUser"])
	assert.Equal(t, float64(1), remedy["likesCount"])

	likeRows, _ := app.gw.Read(context.Background(), "remedy_likes", gateway.Filter{"user_id": int64(7)}, nil)
	assert.Len(t, likeRows, 1)

	// Toggling again removes the row.
	w = app.do(t, http.MethodPost, "/v1/likes/remedies/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	likeRows, _ = app.gw.Read(context.Background(), "remedy_likes", gateway.Filter{"user_id": int64(7)}, nil)
	assert.Empty(t, likeRows)
}

func TestDashboardStats(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	app.do(t, http.MethodPost, "/v1/cart/sync", token, nil)
	app.do(t, http.MethodPost, "/v1/likes/remedies/2", token, nil)

	w := app.do(t, http.MethodGet, "/v1/dashboard-stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["cartLineCount"])
	assert.Equal(t, float64(1), body["likedRemedies"])
	assert.Equal(t, float64(0), body["orderCount"])
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	app := newTestApp(t)

	input := gin.H{"name": "Chamomile", "ailment_id": 1}
	w := app.do(t, http.MethodPost, "/v1/admin/remedies", userToken(t, 7, session.RoleUser), input)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/v1/admin/remedies", userToken(t, 1, session.RoleAdmin), input)
	require.Equal(t, http.StatusCreated, w.Code)

	rows, _ := app.gw.Read(context.Background(), "remedies", gateway.Filter{"slug": "chamomile"}, nil)
	assert.Len(t, rows, 1)
}

func TestOrderHistory(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 1})
	app.do(t, http.MethodPost, "/v1/checkout", token, nil)
	app.do(t, http.MethodPost, "/v1/checkout/payment", token, gin.H{"payment_method_token": "pm_ok"})

	w := app.do(t, http.MethodGet, "/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decodeBody(t, w)["orders"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	assert.Equal(t, "10.00", order["totalAmount"])

	// Another user cannot see it.
	other := userToken(t, 8, session.RoleUser)
	w = app.do(t, http.MethodGet, fmt.Sprintf("/v1/orders/%v", order["id"]), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout_DiscardsInMemoryStateOnly(t *testing.T) {
	app := newTestApp(t)
	token := userToken(t, 7, session.RoleUser)

	app.do(t, http.MethodPost, "/v1/cart/items", token, gin.H{"product_id": 3, "quantity": 2})
	app.do(t, http.MethodPost, "/v1/cart/sync", token, nil)

	w := app.do(t, http.MethodPost, "/v1/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The in-memory cart is gone, but the persisted rows survive for restore.
	w = app.do(t, http.MethodGet, "/v1/cart", token, nil)
	assert.Equal(t, "0.00", decodeBody(t, w)["total"])

	w = app.do(t, http.MethodPost, "/v1/cart/restore", token, nil)
	assert.Equal(t, "20.00", decodeBody(t, w)["total"])
}

func TestPublicCatalogRoutes(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/v1/remedies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Valerian Root")

	w = app.do(t, http.MethodGet, "/v1/remedies/valerian-root", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Valerian Tea")

	w = app.do(t, http.MethodGet, "/v1/ailments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sleep")

	// Cart routes are gated.
	w = app.do(t, http.MethodGet, "/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
