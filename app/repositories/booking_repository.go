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

// BookingRepository handles store operations for bookings and payments.
type BookingRepository struct {
	store *database.Store
}

func NewBookingRepository(store *database.Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create inserts a new booking in the unpaid state.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	defer metrics.ObserveStoreOp("bookings", "insertOne", time.Now())

	b.Paid = false
	b.TransactionID = ""
	b.CreatedAt = time.Now().UTC()
	res, err := r.store.Bookings.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("repositories: create booking: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

// FindByID looks up one booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (models.Booking, error) {
	defer metrics.ObserveStoreOp("bookings", "findOne", time.Now())

	var b models.Booking
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return b, database.ErrNotFound
	}
	err = r.store.Bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return b, database.ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("repositories: find booking %s: %w", id, err)
	}
	return b, nil
}

// ListByEmail returns a buyer's own bookings.
func (r *BookingRepository) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	defer metrics.ObserveStoreOp("bookings", "find", time.Now())

	cur, err := r.store.Bookings.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("repositories: bookings of %s: %w", email, err)
	}
	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("repositories: decode bookings: %w", err)
	}
	return bookings, nil
}

// MarkPaid sets paid and the transaction id on an existing booking.
// Update-if-exists: no match is ErrNotFound.
func (r *BookingRepository) MarkPaid(ctx context.Context, id, transactionID string) error {
	return r.setPaid(ctx, id, bson.M{"paid": true, "transactionId": transactionID})
}

// ClearPaid undoes MarkPaid. Only the payment saga's compensation path
// calls this.
func (r *BookingRepository) ClearPaid(ctx context.Context, id string) error {
	return r.setPaid(ctx, id, bson.M{"paid": false, "transactionId": ""})
}

func (r *BookingRepository) setPaid(ctx context.Context, id string, fields bson.M) error {
	defer metrics.ObserveStoreOp("bookings", "updateOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.Bookings.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
	)
	if err != nil {
		return fmt.Errorf("repositories: update booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CountUnpaid returns the number of bookings still waiting on payment.
// The scheduler feeds this into the unpaid-bookings gauge.
func (r *BookingRepository) CountUnpaid(ctx context.Context) (int64, error) {
	defer metrics.ObserveStoreOp("bookings", "countDocuments", time.Now())

	n, err := r.store.Bookings.CountDocuments(ctx, bson.M{"paid": bson.M{"$ne": true}})
	if err != nil {
		return 0, fmt.Errorf("repositories: count unpaid bookings: %w", err)
	}
	return n, nil
}

// InsertPayment appends a payment record and returns its id so the saga can
// compensate it if a later step fails.
func (r *BookingRepository) InsertPayment(ctx context.Context, p *models.Payment) (string, error) {
	defer metrics.ObserveStoreOp("payments", "insertOne", time.Now())

	p.CreatedAt = time.Now().UTC()
	res, err := r.store.Payments.InsertOne(ctx, p)
	if err != nil {
		return "", fmt.Errorf("repositories: insert payment: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("repositories: insert payment: unexpected id type %T", res.InsertedID)
	}
	p.ID = oid
	return oid.Hex(), nil
}

// DeletePayment removes a payment record. Compensation only.
func (r *BookingRepository) DeletePayment(ctx context.Context, id string) error {
	defer metrics.ObserveStoreOp("payments", "deleteOne", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	res, err := r.store.Payments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("repositories: delete payment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
