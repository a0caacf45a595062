package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/deviceexpress/app/jobs"
	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/logger"
	"github.com/shashiranjanraj/deviceexpress/pkg/metrics"
	"github.com/shashiranjanraj/deviceexpress/pkg/payments"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
)

// BookingStore is the slice of the booking repository the payment flow needs.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (models.Booking, error)
	MarkPaid(ctx context.Context, id, transactionID string) error
	ClearPaid(ctx context.Context, id string) error
	InsertPayment(ctx context.Context, p *models.Payment) (string, error)
	DeletePayment(ctx context.Context, id string) error
}

// ProductStatusStore is the slice of the catalog the payment flow needs.
type ProductStatusStore interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
	SetStatus(ctx context.Context, id, status string) error
}

// receiptRetryDelay is how long to wait before re-dispatching a receipt
// whose first queue push failed.
const receiptRetryDelay = time.Minute

// PaymentService creates provider intents and runs the payment completion
// cascade as a compensating saga.
type PaymentService struct {
	bookings BookingStore
	products ProductStatusStore
	provider payments.Provider

	// invalidate is called with the sold product's category after a
	// completed cascade, so cached listings drop the product immediately.
	invalidate func(ctx context.Context, category string)

	// dispatch and retryLater hand jobs to the queue; swapped in tests.
	dispatch   func(queue.Job) error
	retryLater func(queue.Job, time.Duration)
}

func NewPaymentService(bookings BookingStore, products ProductStatusStore, provider payments.Provider) *PaymentService {
	return &PaymentService{
		bookings:   bookings,
		products:   products,
		provider:   provider,
		dispatch:   queue.Dispatch,
		retryLater: queue.DispatchAfter,
	}
}

// OnProductSold registers the cache invalidation hook run after a completed
// cascade retires the product from its category listing.
func (s *PaymentService) OnProductSold(fn func(ctx context.Context, category string)) {
	s.invalidate = fn
}

// CreateIntent resolves the booking's price, converts it to integer minor
// units, and asks the provider for a payment intent. The idempotency key is
// derived from the booking id so a client retry lands on the same intent
// instead of minting a duplicate.
func (s *PaymentService) CreateIntent(ctx context.Context, bookingID string) (clientSecret string, err error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}

	price := booking.Price
	if price <= 0 {
		product, perr := s.products.FindProduct(ctx, booking.ProductID)
		if perr != nil {
			return "", perr
		}
		price = product.ResalePrice
	}

	secret, err := s.provider.CreateIntent(ctx,
		payments.MinorUnits(price),
		payments.IdempotencyKey(bookingID),
	)
	if err != nil {
		return "", fmt.Errorf("services: create intent for booking %s: %w", bookingID, err)
	}
	return secret, nil
}

// Complete runs the three-step payment cascade: record the payment, mark the
// booking paid, mark the product unavailable. The steps span three
// collections with no shared transaction, so a failure part-way undoes the
// steps already applied, in reverse order. The client sees failure either
// way; compensation keeps the collections consistent with each other.
func (s *PaymentService) Complete(ctx context.Context, p models.Payment) error {
	paymentID, err := s.bookings.InsertPayment(ctx, &p)
	if err != nil {
		return err
	}

	if err := s.bookings.MarkPaid(ctx, p.BookingID, p.TransactionID); err != nil {
		s.compensate(ctx, p, paymentID, false)
		return err
	}

	if err := s.products.SetStatus(ctx, p.ProductID, models.StatusUnavailable); err != nil {
		s.compensate(ctx, p, paymentID, true)
		return err
	}

	metrics.PaymentCascades.WithLabelValues("completed").Inc()

	// The product just left its category listing; drop the cached copy so
	// buyers stop seeing it as available before the TTL runs out.
	if s.invalidate != nil {
		if product, perr := s.products.FindProduct(ctx, p.ProductID); perr == nil {
			s.invalidate(ctx, product.Category)
		}
	}

	if p.Email != "" {
		job := &jobs.ReceiptEmailJob{
			To:            p.Email,
			BookingID:     p.BookingID,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
		}
		if derr := s.dispatch(job); derr != nil {
			logger.WithCtx(ctx).Warn("payment receipt dispatch failed, retrying later", "error", derr)
			s.retryLater(job, receiptRetryDelay)
		}
	}
	return nil
}

// compensate undoes the applied cascade steps in reverse order. A failing
// compensation is logged and counted but not surfaced; the caller already
// reports the original failure.
func (s *PaymentService) compensate(ctx context.Context, p models.Payment, paymentID string, bookingMarked bool) {
	log := logger.WithCtx(ctx)
	failed := false

	if bookingMarked {
		if err := s.bookings.ClearPaid(ctx, p.BookingID); err != nil {
			failed = true
			log.Error("payment compensation: clear booking paid state",
				"bookingId", p.BookingID, "error", err)
		}
	}
	if err := s.bookings.DeletePayment(ctx, paymentID); err != nil {
		failed = true
		log.Error("payment compensation: delete payment record",
			"paymentId", paymentID, "error", err)
	}

	if failed {
		metrics.PaymentCascades.WithLabelValues("compensation_failed").Inc()
		return
	}
	metrics.PaymentCascades.WithLabelValues("compensated").Inc()
}
