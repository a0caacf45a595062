package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
)

type fakeCatalog struct {
	categories []models.Category
	products   map[string]models.Product
	advertised map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   map[string]models.Product{},
		advertised: map[string]bool{},
	}
}

func (f *fakeCatalog) Categories(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p *models.Product) error {
	p.Status = models.StatusAvailable
	f.products[p.Name] = *p
	return nil
}

func (f *fakeCatalog) ProductsByCategory(_ context.Context, name string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		if p.Category == name && p.Status == models.StatusAvailable {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProductsBySeller(_ context.Context, email string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		if p.SellerEmail == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SetAdvertised(_ context.Context, id string, on bool) error {
	if _, ok := f.products[id]; !ok {
		return database.ErrNotFound
	}
	f.advertised[id] = on
	return nil
}

func (f *fakeCatalog) SetImageURL(_ context.Context, id, url string) error {
	p, ok := f.products[id]
	if !ok {
		return database.ErrNotFound
	}
	p.ImageURL = url
	f.products[id] = p
	return nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) FindProduct(_ context.Context, id string) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func catalogTestRouter(c *CatalogController) http.Handler {
	r := chi.NewRouter()
	r.Get("/categories", c.Categories)
	r.Get("/category/{name}", c.ProductsByCategory)
	r.Post("/category", c.CreateProduct)
	r.Put("/productAdvertise/{id}", c.Advertise)
	return r
}

func TestProductsByCategoryFiltersAvailable(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.products["p1"] = models.Product{Name: "iPhone 12", Category: "phones", Status: models.StatusAvailable}
	catalog.products["p2"] = models.Product{Name: "iPhone 13", Category: "phones", Status: models.StatusUnavailable}
	catalog.products["p3"] = models.Product{Name: "ThinkPad", Category: "laptops", Status: models.StatusAvailable}

	srv := catalogTestRouter(NewCatalogController(catalog))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/category/phones", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool             `json:"success"`
		Data    []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "iPhone 12", body.Data[0].Name)
}

func TestCreateProductUsesTokenSeller(t *testing.T) {
	catalog := newFakeCatalog()
	srv := catalogTestRouter(NewCatalogController(catalog))

	// No sellerEmail in the body: the token identity fills it in.
	payload := `{"name":"iPhone 12","category":"phones","resalePrice":250}`
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/category", strings.NewReader(payload)), "seller@example.com")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "seller@example.com", catalog.products["iPhone 12"].SellerEmail)

	// A sellerEmail in the body is ignored, not an error.
	payload = `{"name":"iPhone 13","category":"phones","resalePrice":300,"sellerEmail":"spoofed@example.com"}`
	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest(http.MethodPost, "/category", strings.NewReader(payload)), "seller@example.com")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "seller@example.com", catalog.products["iPhone 13"].SellerEmail)
}

func TestAdvertiseUnknownIDCreatesNothing(t *testing.T) {
	catalog := newFakeCatalog()

	srv := catalogTestRouter(NewCatalogController(catalog))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/productAdvertise/64f000000000000000000000", nil))

	// Not-found rides the neutral failure envelope, still HTTP 200.
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "product not found", body.Message)
	assert.Empty(t, catalog.products, "no ghost product document")
}

func TestStoragePathResolvesLocalURLsOnly(t *testing.T) {
	rel, ok := storagePath("http://localhost:5000/storage/products/p1/front.jpg")
	require.True(t, ok)
	assert.Equal(t, "products/p1/front.jpg", rel)

	_, ok = storagePath("https://bucket.s3.us-east-1.amazonaws.com/products/p1/front.jpg")
	assert.False(t, ok)

	_, ok = storagePath("")
	assert.False(t, ok)
}

func TestCategoriesList(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories = []models.Category{{Name: "phones"}, {Name: "laptops"}}

	srv := catalogTestRouter(NewCatalogController(catalog))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}
