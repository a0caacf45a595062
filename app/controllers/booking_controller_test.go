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
	"github.com/shashiranjanraj/deviceexpress/app/services"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
)

type fakeBookingRepo struct {
	bookings map[string]models.Booking
	payments map[string]models.Payment
	nextID   int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[string]models.Booking{},
		payments: map[string]models.Payment{},
	}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	f.nextID++
	f.bookings[b.ProductID] = *b
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id string) (models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return models.Booking{}, database.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) ListByEmail(_ context.Context, email string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.bookings {
		if b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) MarkPaid(_ context.Context, id, txID string) error {
	b, ok := f.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Paid = true
	b.TransactionID = txID
	f.bookings[id] = b
	return nil
}

func (f *fakeBookingRepo) ClearPaid(_ context.Context, id string) error {
	b, ok := f.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Paid = false
	b.TransactionID = ""
	f.bookings[id] = b
	return nil
}

func (f *fakeBookingRepo) InsertPayment(_ context.Context, p *models.Payment) (string, error) {
	f.nextID++
	id := "pay-" + p.TransactionID
	f.payments[id] = *p
	return id, nil
}

func (f *fakeBookingRepo) DeletePayment(_ context.Context, id string) error {
	delete(f.payments, id)
	return nil
}

type fakeStatuses struct {
	products map[string]models.Product
}

func (f *fakeStatuses) FindProduct(_ context.Context, id string) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeStatuses) SetStatus(_ context.Context, id, status string) error {
	p, ok := f.products[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Status = status
	f.products[id] = p
	return nil
}

type stubProvider struct{ secret string }

func (s *stubProvider) CreateIntent(context.Context, int64, string) (string, error) {
	return s.secret, nil
}

func bookingTestRouter(c *BookingController) http.Handler {
	r := chi.NewRouter()
	r.Post("/booking", c.Create)
	r.Get("/booking", c.List)
	r.Get("/booking/{id}", c.Get)
	r.Post("/create-payment-intent", c.CreateIntent)
	r.Post("/payments", c.Complete)
	return r
}

func asUser(r *http.Request, email string) *http.Request {
	return r.WithContext(middleware.WithEmail(r.Context(), email))
}

func newBookingController(repo *fakeBookingRepo, statuses *fakeStatuses) *BookingController {
	if statuses == nil {
		statuses = &fakeStatuses{products: map[string]models.Product{}}
	}
	svc := services.NewPaymentService(repo, statuses, &stubProvider{secret: "pi_test_secret"})
	return NewBookingController(repo, svc)
}

func TestListBookingsRequiresOwnEmail(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["B1"] = models.Booking{Email: "buyer@example.com"}

	srv := bookingTestRouter(newBookingController(repo, nil))

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/booking?email=buyer@example.com", nil), "other@example.com")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest(http.MethodGet, "/booking?email=buyer@example.com", nil), "buyer@example.com")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
}

func TestCreateBookingUsesTokenEmail(t *testing.T) {
	repo := newFakeBookingRepo()
	srv := bookingTestRouter(newBookingController(repo, nil))

	// No email in the body: the token identity fills it in.
	payload := `{"productId":"P1","productName":"iPhone 12"}`
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(payload)), "buyer@example.com")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "buyer@example.com", repo.bookings["P1"].Email)

	// A spoofed email in the body is ignored, not an error.
	payload = `{"productId":"P2","email":"spoofed@example.com"}`
	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(payload)), "buyer@example.com")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "buyer@example.com", repo.bookings["P2"].Email)
}

func TestGetBookingNotFound(t *testing.T) {
	srv := bookingTestRouter(newBookingController(newFakeBookingRepo(), nil))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/booking/missing", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestCreateIntentReturnsClientSecret(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["B1"] = models.Booking{ProductID: "P1", Price: 250}

	srv := bookingTestRouter(newBookingController(repo, nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"bookingId":"B1"}`))
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success      bool   `json:"success"`
		ClientSecret string `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "pi_test_secret", body.ClientSecret)
}

func TestCompletePaymentCascade(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["B1"] = models.Booking{ProductID: "P1"}
	statuses := &fakeStatuses{products: map[string]models.Product{
		"P1": {Category: "phones", Status: models.StatusAvailable},
	}}

	svc := services.NewPaymentService(repo, statuses, &stubProvider{secret: "pi_test_secret"})
	var invalidated []string
	svc.OnProductSold(func(_ context.Context, category string) {
		invalidated = append(invalidated, category)
	})
	srv := bookingTestRouter(NewBookingController(repo, svc))

	payload := `{"bookingId":"B1","productId":"P1","transactionId":"T1","amount":250}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.bookings["B1"].Paid)
	assert.Equal(t, models.StatusUnavailable, statuses.products["P1"].Status)
	assert.Len(t, repo.payments, 1)
	assert.Equal(t, []string{"phones"}, invalidated, "the sold product's category listing is dropped from cache")
}
