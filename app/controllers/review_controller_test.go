package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/deviceexpress/app/models"
)

type fakeReviews struct {
	reviews []models.Review
}

func (f *fakeReviews) ListReviews(context.Context) ([]models.Review, error) {
	return f.reviews, nil
}

func (f *fakeReviews) AddReview(_ context.Context, review *models.Review) error {
	f.reviews = append(f.reviews, *review)
	return nil
}

func reviewTestRouter(c *ReviewController) http.Handler {
	r := chi.NewRouter()
	r.Get("/userReviews", c.List)
	r.Post("/userReviews", c.Create)
	return r
}

func TestCreateReviewUsesTokenEmail(t *testing.T) {
	reviews := &fakeReviews{}
	srv := reviewTestRouter(NewReviewController(reviews))

	// No email in the body: the token identity fills it in.
	payload := `{"name":"Jo","rating":5,"comment":"smooth pickup"}`
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/userReviews", strings.NewReader(payload)), "buyer@example.com")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, reviews.reviews, 1)
	assert.Equal(t, "buyer@example.com", reviews.reviews[0].Email)
}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	srv := reviewTestRouter(NewReviewController(&fakeReviews{}))

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/userReviews", strings.NewReader(`{"name":"Jo","rating":9}`)), "buyer@example.com")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
