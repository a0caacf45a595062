package controllers

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/config"
	"github.com/shashiranjanraj/deviceexpress/pkg/bind"
	"github.com/shashiranjanraj/deviceexpress/pkg/cache"
	"github.com/shashiranjanraj/deviceexpress/pkg/logger"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
	"github.com/shashiranjanraj/deviceexpress/pkg/storage"
	"github.com/shashiranjanraj/deviceexpress/pkg/validate"
)

const (
	categoriesCacheKey = "deviceexpress:categories"
	categoryCachePfx   = "deviceexpress:category:"
	catalogCacheTTL    = 5 * time.Minute
)

// CatalogStore is the slice of the catalog repository the HTTP surface needs.
type CatalogStore interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ProductsByCategory(ctx context.Context, name string) ([]models.Product, error)
	ProductsBySeller(ctx context.Context, email string) ([]models.Product, error)
	SetAdvertised(ctx context.Context, id string, on bool) error
	SetImageURL(ctx context.Context, id, url string) error
	DeleteProduct(ctx context.Context, id string) error
	FindProduct(ctx context.Context, id string) (models.Product, error)
}

// CatalogController serves category browsing and the seller's product CRUD.
type CatalogController struct {
	catalog CatalogStore
}

func NewCatalogController(catalog CatalogStore) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// Categories handles GET /categories. The flat list changes rarely, so it is
// served from cache when Redis is up.
func (c *CatalogController) Categories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if cache.Get(r.Context(), categoriesCacheKey, &categories) {
		response.OK(w, categories)
		return
	}

	categories, err := c.catalog.Categories(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err, "no categories found")
		return
	}
	_ = cache.Set(r.Context(), categoriesCacheKey, categories, catalogCacheTTL)
	response.OK(w, categories)
}

// ProductsByCategory handles GET /category/{name}: available products only.
func (c *CatalogController) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var products []models.Product
	key := categoryCachePfx + name
	if cache.Get(r.Context(), key, &products) {
		response.OK(w, products)
		return
	}

	products, err := c.catalog.ProductsByCategory(r.Context(), name)
	if err != nil {
		response.FromError(r.Context(), w, err, "no products found")
		return
	}
	_ = cache.Set(r.Context(), key, products, catalogCacheTTL)
	response.OK(w, products)
}

type productInput struct {
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	SellerName    string  `json:"sellerName"`
	OriginalPrice float64 `json:"originalPrice"`
	ResalePrice   float64 `json:"resalePrice" validate:"required,gt=0"`
	Condition     string  `json:"condition"`
	Location      string  `json:"location"`
	Phone         string  `json:"phone"`
	Description   string  `json:"description"`
	YearsOfUse    string  `json:"yearsOfUse"`
}

// CreateProduct handles POST /category. The seller identity comes from the
// token, not the body, so a seller cannot list on someone else's behalf.
func (c *CatalogController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	email, _ := middleware.EmailFromCtx(r.Context())
	p := models.Product{
		Name:          in.Name,
		Category:      in.Category,
		SellerName:    in.SellerName,
		SellerEmail:   email,
		OriginalPrice: in.OriginalPrice,
		ResalePrice:   in.ResalePrice,
		Condition:     in.Condition,
		Location:      in.Location,
		Phone:         in.Phone,
		Description:   in.Description,
		YearsOfUse:    in.YearsOfUse,
	}

	if err := c.catalog.CreateProduct(r.Context(), &p); err != nil {
		response.FromError(r.Context(), w, err, "could not create product")
		return
	}

	c.InvalidateCategory(r.Context(), p.Category)
	response.Created(w, "product created", p)
}

// SellerProducts handles GET /category?email=: everything the seller listed.
func (c *CatalogController) SellerProducts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if tokenEmail, ok := middleware.EmailFromCtx(r.Context()); ok {
			email = tokenEmail
		}
	}

	products, err := c.catalog.ProductsBySeller(r.Context(), email)
	if err != nil {
		response.FromError(r.Context(), w, err, "no products found")
		return
	}
	response.OK(w, products)
}

// Advertise handles PUT /productAdvertise/{id}. An id that matches no
// product is a plain failure; no document is created.
func (c *CatalogController) Advertise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.catalog.SetAdvertised(r.Context(), id, true); err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}

	c.invalidateProduct(r.Context(), id)
	response.Message(w, "product advertised")
}

// DeleteSold handles DELETE /soldProduct/{id}. The stored image goes with
// the document.
func (c *CatalogController) DeleteSold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := c.catalog.FindProduct(r.Context(), id)
	if err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}
	if err := c.catalog.DeleteProduct(r.Context(), id); err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}

	if objPath, ok := storagePath(product.ImageURL); ok {
		if err := storage.Delete(objPath); err != nil {
			logger.WithCtx(r.Context()).Warn("could not delete product image",
				"path", objPath, "error", err)
		}
	}

	c.InvalidateCategory(r.Context(), product.Category)
	response.Message(w, "product deleted")
}

// UploadImage handles POST /productImage/{id}: multipart upload to the
// configured storage disk, public URL stored on the product.
func (c *CatalogController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := c.catalog.FindProduct(r.Context(), id); err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	dest := path.Join("products", id, header.Filename)
	if err := storage.PutStream(dest, file); err != nil {
		response.FromError(r.Context(), w, err, "could not store image")
		return
	}

	url := storage.URL(dest)
	if err := c.catalog.SetImageURL(r.Context(), id, url); err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}

	c.invalidateProduct(r.Context(), id)
	response.OK(w, map[string]string{"imageURL": url})
}

// InvalidateCategory drops the cached category list and one category's
// products. The payment cascade calls it after a sale retires a product.
func (c *CatalogController) InvalidateCategory(ctx context.Context, category string) {
	_ = cache.Del(ctx, categoriesCacheKey, categoryCachePfx+category)
}

// invalidateProduct drops the cache entry for the product's category.
func (c *CatalogController) invalidateProduct(ctx context.Context, id string) {
	if p, err := c.catalog.FindProduct(ctx, id); err == nil {
		c.InvalidateCategory(ctx, p.Category)
	}
}

// storagePath maps a public image URL back to its path on the default disk.
// Only URLs under the configured storage prefix resolve; s3 URLs point at
// the bucket and are left alone.
func storagePath(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	base := strings.TrimRight(config.StorageURL(), "/") + "/"
	rel, ok := strings.CutPrefix(url, base)
	return rel, ok && rel != ""
}
