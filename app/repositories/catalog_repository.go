package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/metrics"
)

// CatalogRepository handles store operations for categories, products, and
// reported items.
type CatalogRepository struct {
	store *database.Store
}

func NewCatalogRepository(store *database.Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// Categories returns the flat category list.
func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveStoreOp("categories", "find", time.Now())

	cur, err := r.store.Categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("repositories: list categories: %w", err)
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("repositories: decode categories: %w", err)
	}
	return categories, nil
}

// CreateProduct inserts a new product as available.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStoreOp("products", "insertOne", time.Now())

	p.Status = models.StatusAvailable
	p.PostedAt = time.Now().UTC()
	res, err := r.store.Products.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("repositories: create product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// FindProduct looks up one product by id.
func (r *CatalogRepository) FindProduct(ctx context.Context, id string) (models.Product, error) {
	defer metrics.ObserveStoreOp("products", "findOne", time.Now())

	var p models.Product
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return p, database.ErrNotFound
	}
	err = r.store.Products.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return p, database.ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("repositories: find product %s: %w", id, err)
	}
	return p, nil
}

// ProductsByCategory returns the products in a category that are still
// available. Sold products never show up in a category browse.
func (r *CatalogRepository) ProductsByCategory(ctx context.Context, name string) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("products", "find", time.Now())

	cur, err := r.store.Products.Find(ctx, bson.M{
		"category": name,
		"status":   models.StatusAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("repositories: products in %s: %w", name, err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, nil
}

// ProductsBySeller returns everything a seller has listed, sold or not.
func (r *CatalogRepository) ProductsBySeller(ctx context.Context, email string) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("products", "find", time.Now())

	cur, err := r.store.Products.Find(ctx, bson.M{"sellerEmail": email})
	if err != nil {
		return nil, fmt.Errorf("repositories: products of %s: %w", email, err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, nil
}

// setProductField runs an update-if-exists single-field $set on a product.
// MatchedCount of zero is ErrNotFound so a stray id can never conjure up a
// near-empty product document.
func (r *CatalogRepository) setProductField(ctx context.Context, id, field string, value interface{}) error {
	defer metrics.ObserveStoreOp("products", "updateOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.Products.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("repositories: update product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetAdvertised flips the display flag on an existing product.
func (r *CatalogRepository) SetAdvertised(ctx context.Context, id string, on bool) error {
	return r.setProductField(ctx, id, "advertised", on)
}

// SetReported flips the reported flag on an existing product.
func (r *CatalogRepository) SetReported(ctx context.Context, id string, on bool) error {
	return r.setProductField(ctx, id, "reported", on)
}

// SetStatus moves a product between available and unavailable.
func (r *CatalogRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.setProductField(ctx, id, "status", status)
}

// SetImageURL stores the uploaded image location on the product.
func (r *CatalogRepository) SetImageURL(ctx context.Context, id, url string) error {
	return r.setProductField(ctx, id, "imageURL", url)
}

// DeleteProduct removes a sold product listing.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	defer metrics.ObserveStoreOp("products", "deleteOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.Products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("repositories: delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// VerifyBySeller marks every product of a seller as verified. Returns the
// matched count; zero products is fine, a seller may not have listed yet.
func (r *CatalogRepository) VerifyBySeller(ctx context.Context, email string, verified bool) (int64, error) {
	defer metrics.ObserveStoreOp("products", "updateMany", time.Now())

	res, err := r.store.Products.UpdateMany(ctx,
		bson.M{"sellerEmail": email},
		bson.M{"$set": bson.M{"verified": verified}},
	)
	if err != nil {
		return 0, fmt.Errorf("repositories: verify products of %s: %w", email, err)
	}
	return res.MatchedCount, nil
}

// InsertReport logs a reported item.
func (r *CatalogRepository) InsertReport(ctx context.Context, item *models.ReportedItem) error {
	defer metrics.ObserveStoreOp("reportedItems", "insertOne", time.Now())

	item.ReportedAt = time.Now().UTC()
	if _, err := r.store.ReportedItems.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("repositories: insert report: %w", err)
	}
	return nil
}

// ListReports returns all open reports.
func (r *CatalogRepository) ListReports(ctx context.Context) ([]models.ReportedItem, error) {
	defer metrics.ObserveStoreOp("reportedItems", "find", time.Now())

	cur, err := r.store.ReportedItems.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("repositories: list reports: %w", err)
	}
	items := []models.ReportedItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("repositories: decode reports: %w", err)
	}
	return items, nil
}

// FindReport looks up one report by id.
func (r *CatalogRepository) FindReport(ctx context.Context, id string) (models.ReportedItem, error) {
	defer metrics.ObserveStoreOp("reportedItems", "findOne", time.Now())

	var item models.ReportedItem
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return item, database.ErrNotFound
	}
	err = r.store.ReportedItems.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return item, database.ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("repositories: find report %s: %w", id, err)
	}
	return item, nil
}

// DeleteReport removes a resolved report.
func (r *CatalogRepository) DeleteReport(ctx context.Context, id string) error {
	defer metrics.ObserveStoreOp("reportedItems", "deleteOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.ReportedItems.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("repositories: delete report %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
