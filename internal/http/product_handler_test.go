package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mercado-api/internal/catalog"
	"mercado-api/internal/domain"
	"mercado-api/internal/service"
)

type memProductRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: make(map[uuid.UUID]catalog.Product)}
}

func (m *memProductRepo) Create(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = *p
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *memProductRepo) Update(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	m.items[p.ID] = *p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProductRepo) List(_ context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Product
	for _, p := range m.items {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.MinRating > 0 && p.Rating < filter.MinRating {
			continue
		}
		if filter.SellersEmail != "" && p.SellersEmail != filter.SellersEmail {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type productFixture struct {
	router   *gin.Engine
	products *memProductRepo
	jwtSvc   *service.JWTService
	users    *memUserRepo
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := newMemUserRepo()
	products := newMemProductRepo()
	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	versions := service.NewTokenVersions(users, nil)

	h := NewProductHandler(logger, products)
	authRequired := JWTAuthMiddleware(jwtSvc, versions)
	sellerOnly := RequireRole(domain.RoleSeller)

	r := gin.New()
	api := r.Group("/api/products")
	api.GET("", h.List)
	api.GET("/:id", h.GetByID)
	api.POST("", authRequired, sellerOnly, h.Create)
	api.PUT("/:id", authRequired, sellerOnly, h.Update)
	api.DELETE("/:id", authRequired, sellerOnly, h.Delete)

	return &productFixture{router: r, products: products, jwtSvc: jwtSvc, users: users}
}

func (f *productFixture) sellerToken(t *testing.T) (domain.User, string) {
	t.Helper()
	seller := domain.User{
		ID:         uuid.NewString(),
		Name:       "Tienda Sur",
		Email:      "tienda@example.com",
		Role:       domain.RoleSeller,
		TokenEpoch: 1,
	}
	if err := f.users.Create(context.Background(), seller); err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	pair, err := f.jwtSvc.GeneratePair(seller)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return seller, pair.AccessToken
}

func (f *productFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const productPayload = `{
	"name": "Campera de cuero",
	"category": "ropa",
	"shortDescription": "Campera clásica",
	"description": "Campera de cuero vacuno, forrada",
	"price": 150.5,
	"count": 10
}`

func TestProductHandler_CreateRequiresSeller(t *testing.T) {
	f := newProductFixture(t)

	if rec := f.do(t, http.MethodPost, "/api/products", productPayload, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	customer := domain.User{ID: uuid.NewString(), Email: "c@example.com", Role: domain.RoleCustomer, TokenEpoch: 1}
	if err := f.users.Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	pair, err := f.jwtSvc.GeneratePair(customer)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if rec := f.do(t, http.MethodPost, "/api/products", productPayload, pair.AccessToken); rec.Code != http.StatusForbidden {
		t.Fatalf("customer token: expected 403, got %d", rec.Code)
	}
}

func TestProductHandler_CreateDenormalizesSeller(t *testing.T) {
	f := newProductFixture(t)
	seller, token := f.sellerToken(t)

	rec := f.do(t, http.MethodPost, "/api/products", productPayload, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	product := body["product"].(map[string]any)
	// La identidad del vendedor sale de los claims, no del body.
	if product["sellersEmail"] != seller.Email || product["sellersName"] != seller.Name {
		t.Fatalf("seller not taken from claims: %v", product)
	}
}

func TestProductHandler_CreateValidation(t *testing.T) {
	f := newProductFixture(t)
	_, token := f.sellerToken(t)

	rec := f.do(t, http.MethodPost, "/api/products", `{"name":"Sin categoría"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Please provide all fields" {
		t.Fatalf("unexpected message: %v", body)
	}
}

func TestProductHandler_ListWithFilters(t *testing.T) {
	f := newProductFixture(t)
	seedProduct := func(name, category string, rating float64) {
		p := catalog.Product{Name: name, Category: category, Rating: rating, SellersEmail: "tienda@example.com"}
		if err := f.products.Create(context.Background(), &p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	seedProduct("Campera de cuero", "ropa", 4.5)
	seedProduct("Zapatillas urbanas", "calzado", 3.0)

	rec := f.do(t, http.MethodGet, "/api/products?category=ropa", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	products := body["products"].([]any)
	if len(products) != 1 {
		t.Fatalf("expected 1 product for category filter, got %d", len(products))
	}

	rec = f.do(t, http.MethodGet, "/api/products?rating=4", "", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got := len(body["products"].([]any)); got != 1 {
		t.Fatalf("expected 1 product for rating filter, got %d", got)
	}

	if rec := f.do(t, http.MethodGet, "/api/products?rating=alto", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid rating, got %d", rec.Code)
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	f := newProductFixture(t)
	p := catalog.Product{Name: "Campera", Category: "ropa"}
	if err := f.products.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/products/"+p.ID.String(), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := f.do(t, http.MethodGet, "/api/products/no-es-uuid", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	f := newProductFixture(t)
	_, token := f.sellerToken(t)
	p := catalog.Product{Name: "Campera", Category: "ropa"}
	if err := f.products.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	rec := f.do(t, http.MethodPut, "/api/products/"+p.ID.String(),
		`{"name":"Campera premium","category":"ropa","price":200,"count":5}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated, err := f.products.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.Name != "Campera premium" {
		t.Fatalf("update not applied: %+v", updated)
	}

	rec = f.do(t, http.MethodPut, "/api/products/"+uuid.NewString(), `{"name":"X"}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/products/"+p.ID.String(), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if _, err := f.products.GetByID(context.Background(), p.ID); err == nil {
		t.Fatalf("expected product removed")
	}
}
