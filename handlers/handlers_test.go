package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-go/access"
	"little-lemon-go/config"
	"little-lemon-go/database/dbtest"
	"little-lemon-go/logger"
	"little-lemon-go/models"
	"little-lemon-go/utils"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *utils.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	tokens, err := utils.NewTokenManager("test-secret", "LittleLemon", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	h := New(db, logger.NewWithWriter("little-lemon-test", io.Discard, slog.LevelError), tokens)
	return &testServer{
		t:      t,
		db:     db,
		router: SetupRouter(h, &config.Config{Env: "test"}),
		tokens: tokens,
	}
}

func (s *testServer) token(user models.User) string {
	s.t.Helper()
	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.t.Fatalf("generate token: %v", err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Money is compared as the exact string clients receive.
type cartLineBody struct {
	ID        uint   `json:"id"`
	MenuItem  uint   `json:"menuitem"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Price     string `json:"price"`
}

type orderBody struct {
	ID           uint   `json:"id"`
	User         string `json:"user"`
	DeliveryCrew *uint  `json:"delivery_crew"`
	Status       string `json:"status"`
	Total        string `json:"total"`
	OrderItems   []struct {
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		Price     string `json:"price"`
	} `json:"order_items"`
}

type menuItemBody struct {
	ID    uint   `json:"id"`
	Price string `json:"price"`
}

func TestCheckout_ConvertsCartIntoOrder(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	item := dbtest.CreateMenuItem(t, s.db, "Lemon Dessert", "9.50")
	token := s.token(customer)

	w := s.do(http.MethodPost, "/api/cart", token, map[string]any{
		"menuitem":   item.ID,
		"quantity":   3,
		"unit_price": "0.01",
		"price":      "0.03",
	})
	expectStatus(t, w, http.StatusCreated)

	var line cartLineBody
	decodeBody(t, w, &line)
	if line.UnitPrice != "9.50" || line.Price != "28.50" {
		t.Errorf("unit_price = %q, price = %q, want 9.50 and 28.50", line.UnitPrice, line.Price)
	}

	w = s.do(http.MethodPost, "/api/orders", token, nil)
	expectStatus(t, w, http.StatusCreated)
	if w.Body.Len() != 0 {
		t.Errorf("checkout body = %q, want empty", w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/orders", token, nil)
	expectStatus(t, w, http.StatusOK)
	var orders []orderBody
	decodeBody(t, w, &orders)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	order := orders[0]
	if order.User != "carol" || order.Status != string(models.OrderStatusUnprocessed) || order.DeliveryCrew != nil {
		t.Errorf("unexpected order %+v", order)
	}
	if order.Total != "28.50" {
		t.Errorf("total = %q, want 28.50", order.Total)
	}
	if len(order.OrderItems) != 1 {
		t.Fatalf("got %d order items, want 1", len(order.OrderItems))
	}
	orderItem := order.OrderItems[0]
	if orderItem.Quantity != 3 || orderItem.UnitPrice != "9.50" || orderItem.Price != "28.50" {
		t.Errorf("unexpected order item %+v", orderItem)
	}

	w = s.do(http.MethodGet, "/api/cart", token, nil)
	expectStatus(t, w, http.StatusOK)
	var cart []cartLineBody
	decodeBody(t, w, &cart)
	if len(cart) != 0 {
		t.Errorf("cart has %d lines after checkout, want 0", len(cart))
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)

	w := s.do(http.MethodPost, "/api/orders", s.token(customer), nil)
	expectStatus(t, w, http.StatusPreconditionFailed)

	var count int64
	s.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("%d orders created, want 0", count)
	}
}

func TestCheckout_CartChangedIsPreconditionFailed(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	item := dbtest.CreateMenuItem(t, s.db, "Lemon Dessert", "9.50")
	token := s.token(customer)

	expectStatus(t, s.do(http.MethodPost, "/api/cart", token, map[string]any{"menuitem": item.ID, "quantity": 1}), http.StatusCreated)

	err := s.db.Callback().Create().After("gorm:create").Register("test:drain_cart", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM cart_lines")
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	expectStatus(t, s.do(http.MethodPost, "/api/orders", token, nil), http.StatusPreconditionFailed)

	var orders int64
	s.db.Model(&models.Order{}).Count(&orders)
	if orders != 0 {
		t.Errorf("%d orders created, want 0", orders)
	}
}

func TestCheckout_StaffGetsNoContent(t *testing.T) {
	s := newTestServer(t)
	manager := dbtest.CreateUser(t, s.db, "mario", false, models.GroupManager)
	item := dbtest.CreateMenuItem(t, s.db, "Greek Salad", "12.00")
	token := s.token(manager)

	expectStatus(t, s.do(http.MethodPost, "/api/cart", token, map[string]any{"menuitem": item.ID, "quantity": 1}), http.StatusCreated)

	w := s.do(http.MethodPost, "/api/orders", token, nil)
	expectStatus(t, w, http.StatusNoContent)

	var orders, lines int64
	s.db.Model(&models.Order{}).Count(&orders)
	s.db.Model(&models.CartLine{}).Count(&lines)
	if orders != 0 {
		t.Errorf("%d orders created, want 0", orders)
	}
	if lines != 1 {
		t.Errorf("cart has %d lines, want 1", lines)
	}
}

func TestCart_RejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	item := dbtest.CreateMenuItem(t, s.db, "Bruschetta", "5.25")
	token := s.token(customer)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing menu item", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"menuitem": item.ID, "quantity": -2}, http.StatusBadRequest},
		{"unknown menu item", map[string]any{"menuitem": item.ID + 100, "quantity": 1}, http.StatusNotFound},
		{"line price over limit", map[string]any{"menuitem": item.ID, "quantity": 1905}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(http.MethodPost, "/api/cart", token, tt.body), tt.want)
		})
	}
}

func TestOrders_CustomerCannotMutate(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	item := dbtest.CreateMenuItem(t, s.db, "Lemon Dessert", "9.50")
	token := s.token(customer)

	expectStatus(t, s.do(http.MethodPost, "/api/cart", token, map[string]any{"menuitem": item.ID, "quantity": 1}), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/orders", token, nil), http.StatusCreated)

	var order models.Order
	if err := s.db.First(&order).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	path := "/api/orders/" + itoa(order.ID)

	expectStatus(t, s.do(http.MethodGet, path, token, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPatch, path, token, map[string]any{"status": "delivered"}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPut, path, token, map[string]any{"status": "delivered"}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodDelete, path, token, nil), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodGet, path, "", nil), http.StatusUnauthorized)

	other := dbtest.CreateUser(t, s.db, "oscar", false)
	expectStatus(t, s.do(http.MethodGet, path, s.token(other), nil), http.StatusNotFound)
}

func TestOrders_StaffWorkflow(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	manager := dbtest.CreateUser(t, s.db, "mario", false, models.GroupManager)
	crew := dbtest.CreateUser(t, s.db, "dino", false, models.GroupDeliveryCrew)
	item := dbtest.CreateMenuItem(t, s.db, "Lemon Dessert", "9.50")

	customerToken := s.token(customer)
	managerToken := s.token(manager)
	crewToken := s.token(crew)

	expectStatus(t, s.do(http.MethodPost, "/api/cart", customerToken, map[string]any{"menuitem": item.ID, "quantity": 2}), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/orders", customerToken, nil), http.StatusCreated)

	var order models.Order
	if err := s.db.First(&order).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	path := "/api/orders/" + itoa(order.ID)

	// Not assigned yet, so invisible to the crew.
	expectStatus(t, s.do(http.MethodGet, path, crewToken, nil), http.StatusNotFound)

	expectStatus(t, s.do(http.MethodPatch, path, managerToken, map[string]any{"delivery_crew": customer.ID}), http.StatusBadRequest)

	w := s.do(http.MethodPatch, path, managerToken, map[string]any{"delivery_crew": crew.ID})
	expectStatus(t, w, http.StatusOK)
	var updated orderBody
	decodeBody(t, w, &updated)
	if updated.DeliveryCrew == nil || *updated.DeliveryCrew != crew.ID {
		t.Fatalf("delivery_crew = %v, want %d", updated.DeliveryCrew, crew.ID)
	}

	expectStatus(t, s.do(http.MethodPut, path, crewToken, map[string]any{}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPatch, path, crewToken, map[string]any{"delivery_crew": crew.ID}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPatch, path, crewToken, map[string]any{"status": "cooking"}), http.StatusBadRequest)

	w = s.do(http.MethodPatch, path, crewToken, map[string]any{"status": "processing"})
	expectStatus(t, w, http.StatusOK)
	decodeBody(t, w, &updated)
	if updated.Status != string(models.OrderStatusProcessing) {
		t.Errorf("status = %s, want processing", updated.Status)
	}

	expectStatus(t, s.do(http.MethodPatch, path, crewToken, map[string]any{"status": "unprocessed"}), http.StatusBadRequest)

	w = s.do(http.MethodGet, "/api/orders", crewToken, nil)
	expectStatus(t, w, http.StatusOK)
	var crewOrders []orderBody
	decodeBody(t, w, &crewOrders)
	if len(crewOrders) != 1 || crewOrders[0].ID != order.ID {
		t.Errorf("crew sees %+v, want order %d", crewOrders, order.ID)
	}

	w = s.do(http.MethodPatch, path, managerToken, map[string]any{"delivery_crew": nil})
	expectStatus(t, w, http.StatusOK)
	updated = orderBody{}
	decodeBody(t, w, &updated)
	if updated.DeliveryCrew != nil {
		t.Errorf("delivery_crew = %d, want null", *updated.DeliveryCrew)
	}
	expectStatus(t, s.do(http.MethodGet, path, crewToken, nil), http.StatusNotFound)

	expectStatus(t, s.do(http.MethodDelete, path, managerToken, nil), http.StatusNoContent)
	expectStatus(t, s.do(http.MethodGet, path, managerToken, nil), http.StatusNotFound)

	var items int64
	s.db.Model(&models.OrderItem{}).Count(&items)
	if items != 0 {
		t.Errorf("%d order items left after delete, want 0", items)
	}
}

func TestGroups_ManagerRoster(t *testing.T) {
	s := newTestServer(t)
	admin := dbtest.CreateUser(t, s.db, "admin", true)
	alice := dbtest.CreateUser(t, s.db, "alice", false)
	manager := dbtest.CreateUser(t, s.db, "mario", false, models.GroupManager)
	adminToken := s.token(admin)

	w := s.postForm("/api/groups/managers", adminToken, url.Values{"username": {"alice"}})
	expectStatus(t, w, http.StatusCreated)

	w = s.do(http.MethodPost, "/api/groups/managers", adminToken, map[string]any{})
	expectStatus(t, w, http.StatusBadRequest)
	var message map[string]string
	decodeBody(t, w, &message)
	if message["message"] != "error" {
		t.Errorf("body = %v, want message error", message)
	}

	expectStatus(t, s.postForm("/api/groups/managers", adminToken, url.Values{"username": {"nobody"}}), http.StatusNotFound)
	expectStatus(t, s.postForm("/api/groups/managers", s.token(manager), url.Values{"username": {"alice"}}), http.StatusForbidden)

	w = s.do(http.MethodGet, "/api/groups/managers", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var members []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	decodeBody(t, w, &members)
	if len(members) != 2 {
		t.Fatalf("got %d managers, want 2: %+v", len(members), members)
	}

	// alice now resolves as a manager
	expectStatus(t, s.do(http.MethodPost, "/api/orders", s.token(alice), nil), http.StatusNoContent)

	expectStatus(t, s.do(http.MethodDelete, "/api/groups/managers/"+itoa(alice.ID), adminToken, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/orders", s.token(alice), nil), http.StatusPreconditionFailed)

	w = s.do(http.MethodGet, "/api/groups/delivery-crew", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	decodeBody(t, w, &members)
	if len(members) != 0 {
		t.Errorf("got %d delivery crew, want 0", len(members))
	}
}

func TestGroups_DeliveryCrewRoster(t *testing.T) {
	s := newTestServer(t)
	admin := dbtest.CreateUser(t, s.db, "admin", true)
	dino := dbtest.CreateUser(t, s.db, "dino", false)
	adminToken := s.token(admin)

	expectStatus(t, s.postForm("/api/groups/delivery-crew", adminToken, url.Values{}), http.StatusBadRequest)
	expectStatus(t, s.postForm("/api/groups/delivery-crew", s.token(dino), url.Values{"username": {"dino"}}), http.StatusForbidden)

	w := s.postForm("/api/groups/delivery-crew", adminToken, url.Values{"username": {"dino"}})
	expectStatus(t, w, http.StatusCreated)

	var members []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	w = s.do(http.MethodGet, "/api/groups/delivery-crew", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	decodeBody(t, w, &members)
	if len(members) != 1 || members[0].Username != "dino" {
		t.Fatalf("delivery crew = %+v, want dino", members)
	}

	// dino is staff now, so checkout is refused without creating anything
	expectStatus(t, s.do(http.MethodPost, "/api/orders", s.token(dino), nil), http.StatusNoContent)

	expectStatus(t, s.do(http.MethodDelete, "/api/groups/delivery-crew/"+itoa(dino.ID), adminToken, nil), http.StatusOK)

	w = s.do(http.MethodGet, "/api/groups/delivery-crew", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	decodeBody(t, w, &members)
	if len(members) != 0 {
		t.Errorf("got %d delivery crew after removal, want 0", len(members))
	}
	expectStatus(t, s.do(http.MethodPost, "/api/orders", s.token(dino), nil), http.StatusPreconditionFailed)
	expectStatus(t, s.do(http.MethodDelete, "/api/groups/delivery-crew/"+itoa(dino.ID+100), adminToken, nil), http.StatusNotFound)
}

func TestMenuItems_Permissions(t *testing.T) {
	s := newTestServer(t)
	admin := dbtest.CreateUser(t, s.db, "admin", true)
	manager := dbtest.CreateUser(t, s.db, "mario", false, models.GroupManager)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	existing := dbtest.CreateMenuItem(t, s.db, "Bruschetta", "5.25")

	expectStatus(t, s.do(http.MethodGet, "/api/menu-items", "", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/menu-items/"+itoa(existing.ID), "", nil), http.StatusOK)

	create := map[string]any{"title": "Pasta", "price": "11.00", "category": existing.CategoryID}
	expectStatus(t, s.do(http.MethodPost, "/api/menu-items", "", create), http.StatusUnauthorized)
	expectStatus(t, s.do(http.MethodPost, "/api/menu-items", s.token(customer), create), http.StatusForbidden)

	w := s.do(http.MethodPost, "/api/menu-items", s.token(manager), create)
	expectStatus(t, w, http.StatusCreated)
	var created menuItemBody
	decodeBody(t, w, &created)
	if created.Price != "11.00" {
		t.Errorf("price = %q, want 11.00", created.Price)
	}

	for _, price := range []string{"0", "-3", "10000", "1.005"} {
		badPrice := map[string]any{"title": "Odd", "price": price, "category": existing.CategoryID}
		expectStatus(t, s.do(http.MethodPost, "/api/menu-items", s.token(manager), badPrice), http.StatusBadRequest)
	}

	path := "/api/menu-items/" + itoa(created.ID)
	expectStatus(t, s.do(http.MethodPatch, path, s.token(manager), map[string]any{"price": "12.00"}), http.StatusForbidden)
	w = s.do(http.MethodPatch, path, s.token(admin), map[string]any{"price": 12})
	expectStatus(t, w, http.StatusOK)
	var patched menuItemBody
	decodeBody(t, w, &patched)
	if patched.Price != "12.00" {
		t.Errorf("price = %q, want 12.00", patched.Price)
	}
	expectStatus(t, s.do(http.MethodPut, path, s.token(admin), map[string]any{"title": "Pasta"}), http.StatusBadRequest)

	var stored models.MenuItem
	if err := s.db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load menu item: %v", err)
	}
	if !stored.Price.Equal(decimal.RequireFromString("12.00")) {
		t.Errorf("price = %s, want 12.00", stored.Price)
	}

	expectStatus(t, s.do(http.MethodDelete, path, s.token(admin), nil), http.StatusNoContent)
	expectStatus(t, s.do(http.MethodGet, path, "", nil), http.StatusNotFound)
}

func TestMenuItems_DeleteReferencedByOrder(t *testing.T) {
	s := newTestServer(t)
	admin := dbtest.CreateUser(t, s.db, "admin", true)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	item := dbtest.CreateMenuItem(t, s.db, "Lemon Dessert", "9.50")
	token := s.token(customer)

	expectStatus(t, s.do(http.MethodPost, "/api/cart", token, map[string]any{"menuitem": item.ID, "quantity": 1}), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/orders", token, nil), http.StatusCreated)

	expectStatus(t, s.do(http.MethodDelete, "/api/menu-items/"+itoa(item.ID), s.token(admin), nil), http.StatusBadRequest)
}

func TestCategories_RequireAuthentication(t *testing.T) {
	s := newTestServer(t)
	customer := dbtest.CreateUser(t, s.db, "carol", false)
	token := s.token(customer)

	expectStatus(t, s.do(http.MethodGet, "/api/categories", "", nil), http.StatusUnauthorized)

	body := map[string]any{"slug": "desserts", "title": "Desserts"}
	expectStatus(t, s.do(http.MethodPost, "/api/categories", token, body), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/categories", token, body), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodGet, "/api/categories", token, nil), http.StatusOK)
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(http.MethodGet, "/api/cart", "not-a-jwt", nil), http.StatusUnauthorized)

	ghost := models.User{ID: 999, Username: "ghost"}
	expectStatus(t, s.do(http.MethodGet, "/api/cart", s.token(ghost), nil), http.StatusUnauthorized)
}

func TestRouter_HealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(http.MethodGet, "/health", "", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/unknown", "", nil), http.StatusNotFound)
}

func TestRouter_EveryRouteHasRule(t *testing.T) {
	s := newTestServer(t)
	rules := access.DefaultRules()

	routes := s.router.Routes()
	for _, route := range routes {
		if _, ok := rules[access.Route{Method: route.Method, Path: route.Path}]; !ok {
			t.Errorf("no access rule for %s %s", route.Method, route.Path)
		}
	}
	if len(routes) != len(rules) {
		t.Errorf("%d routes registered, %d rules defined", len(routes), len(rules))
	}
}
