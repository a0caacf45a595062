package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
)

type fakeBookings struct {
	bookings map[string]models.Booking
	payments map[string]models.Payment
	nextID   int

	failMarkPaid      error
	failDeletePayment error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		bookings: map[string]models.Booking{},
		payments: map[string]models.Payment{},
	}
}

func (f *fakeBookings) FindByID(_ context.Context, id string) (models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return models.Booking{}, database.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) MarkPaid(_ context.Context, id, txID string) error {
	if f.failMarkPaid != nil {
		return f.failMarkPaid
	}
	b, ok := f.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Paid = true
	b.TransactionID = txID
	f.bookings[id] = b
	return nil
}

func (f *fakeBookings) ClearPaid(_ context.Context, id string) error {
	b, ok := f.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Paid = false
	b.TransactionID = ""
	f.bookings[id] = b
	return nil
}

func (f *fakeBookings) InsertPayment(_ context.Context, p *models.Payment) (string, error) {
	f.nextID++
	id := fmt.Sprintf("pay-%d", f.nextID)
	f.payments[id] = *p
	return id, nil
}

func (f *fakeBookings) DeletePayment(_ context.Context, id string) error {
	if f.failDeletePayment != nil {
		return f.failDeletePayment
	}
	if _, ok := f.payments[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.payments, id)
	return nil
}

type fakeProducts struct {
	products map[string]models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: map[string]models.Product{}}
}

func (f *fakeProducts) FindProduct(_ context.Context, id string) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) SetStatus(_ context.Context, id, status string) error {
	p, ok := f.products[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Status = status
	f.products[id] = p
	return nil
}

type fakeProvider struct {
	amounts []int64
	keys    []string
}

func (f *fakeProvider) CreateIntent(_ context.Context, amountMinor int64, key string) (string, error) {
	f.amounts = append(f.amounts, amountMinor)
	f.keys = append(f.keys, key)
	return fmt.Sprintf("pi_secret_%d", amountMinor), nil
}

func TestCompleteHappyPath(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	bookings.bookings["B1"] = models.Booking{ProductID: "P1", Email: "buyer@example.com"}
	products.products["P1"] = models.Product{Status: models.StatusAvailable}

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	var dispatched []queue.Job
	svc.dispatch = func(j queue.Job) error { dispatched = append(dispatched, j); return nil }

	err := svc.Complete(context.Background(), models.Payment{
		BookingID:     "B1",
		ProductID:     "P1",
		TransactionID: "T1",
		Email:         "buyer@example.com",
		Amount:        120,
	})
	require.NoError(t, err)

	require.Len(t, bookings.payments, 1)
	for _, p := range bookings.payments {
		assert.Equal(t, "T1", p.TransactionID)
	}
	assert.True(t, bookings.bookings["B1"].Paid)
	assert.Equal(t, "T1", bookings.bookings["B1"].TransactionID)
	assert.Equal(t, models.StatusUnavailable, products.products["P1"].Status)
	require.Len(t, dispatched, 1)
}

func TestCompleteCompensatesWhenProductUpdateFails(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	bookings.bookings["B1"] = models.Booking{ProductID: "P-gone"}

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	svc.dispatch = func(queue.Job) error { return nil }

	err := svc.Complete(context.Background(), models.Payment{
		BookingID:     "B1",
		ProductID:     "P-gone",
		TransactionID: "T1",
	})
	require.Error(t, err)

	// Both earlier steps were undone: no payment record survives and the
	// booking is back to unpaid.
	assert.Empty(t, bookings.payments)
	assert.False(t, bookings.bookings["B1"].Paid)
	assert.Empty(t, bookings.bookings["B1"].TransactionID)
}

func TestCompleteCompensatesWhenBookingUpdateFails(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	products.products["P1"] = models.Product{Status: models.StatusAvailable}
	bookings.failMarkPaid = errors.New("write concern timeout")

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	svc.dispatch = func(queue.Job) error { return nil }

	err := svc.Complete(context.Background(), models.Payment{
		BookingID:     "B1",
		ProductID:     "P1",
		TransactionID: "T1",
	})
	require.Error(t, err)

	assert.Empty(t, bookings.payments)
	assert.Equal(t, models.StatusAvailable, products.products["P1"].Status)
}

func TestCompleteInvalidatesCategoryCache(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	bookings.bookings["B1"] = models.Booking{ProductID: "P1"}
	products.products["P1"] = models.Product{Category: "phones", Status: models.StatusAvailable}

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	svc.dispatch = func(queue.Job) error { return nil }
	var invalidated []string
	svc.OnProductSold(func(_ context.Context, category string) {
		invalidated = append(invalidated, category)
	})

	err := svc.Complete(context.Background(), models.Payment{
		BookingID: "B1", ProductID: "P1", TransactionID: "T1",
	})
	require.NoError(t, err)

	// A buyer browsing phones right after the sale must not see P1.
	assert.Equal(t, []string{"phones"}, invalidated)
}

func TestCompleteKeepsCacheOnFailedCascade(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	products.products["P1"] = models.Product{Category: "phones", Status: models.StatusAvailable}
	bookings.failMarkPaid = errors.New("write concern timeout")

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	svc.dispatch = func(queue.Job) error { return nil }
	var invalidated []string
	svc.OnProductSold(func(_ context.Context, category string) {
		invalidated = append(invalidated, category)
	})

	err := svc.Complete(context.Background(), models.Payment{
		BookingID: "B1", ProductID: "P1", TransactionID: "T1",
	})
	require.Error(t, err)
	assert.Empty(t, invalidated, "a compensated sale leaves the listing alone")
}

func TestCompleteRetriesReceiptDispatchLater(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	bookings.bookings["B1"] = models.Booking{ProductID: "P1"}
	products.products["P1"] = models.Product{Status: models.StatusAvailable}

	svc := NewPaymentService(bookings, products, &fakeProvider{})
	svc.dispatch = func(queue.Job) error { return errors.New("redis down") }
	var retried []queue.Job
	svc.retryLater = func(j queue.Job, _ time.Duration) { retried = append(retried, j) }

	err := svc.Complete(context.Background(), models.Payment{
		BookingID:     "B1",
		ProductID:     "P1",
		TransactionID: "T1",
		Email:         "buyer@example.com",
	})
	require.NoError(t, err, "a receipt hiccup must not fail the paid booking")
	require.Len(t, retried, 1)
}

func TestCreateIntentMinorUnitsAndIdempotency(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	provider := &fakeProvider{}
	bookings.bookings["B1"] = models.Booking{ProductID: "P1", Price: 12.5}

	svc := NewPaymentService(bookings, products, provider)

	secret, err := svc.CreateIntent(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "pi_secret_1250", secret)

	_, err = svc.CreateIntent(context.Background(), "B1")
	require.NoError(t, err)

	require.Len(t, provider.keys, 2)
	assert.Equal(t, provider.keys[0], provider.keys[1], "retry must reuse the idempotency key")
}

func TestCreateIntentFallsBackToProductPrice(t *testing.T) {
	bookings := newFakeBookings()
	products := newFakeProducts()
	provider := &fakeProvider{}
	bookings.bookings["B1"] = models.Booking{ProductID: "P1"}
	products.products["P1"] = models.Product{ResalePrice: 499.99}

	svc := NewPaymentService(bookings, products, provider)

	_, err := svc.CreateIntent(context.Background(), "B1")
	require.NoError(t, err)
	require.Len(t, provider.amounts, 1)
	assert.Equal(t, int64(49999), provider.amounts[0])
}

func TestCreateIntentUnknownBooking(t *testing.T) {
	svc := NewPaymentService(newFakeBookings(), newFakeProducts(), &fakeProvider{})

	_, err := svc.CreateIntent(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
