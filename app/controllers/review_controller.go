package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/bind"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
	"github.com/shashiranjanraj/deviceexpress/pkg/validate"
)

// ReviewStore holds the site reviews.
type ReviewStore interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	AddReview(ctx context.Context, review *models.Review) error
}

// ReviewController serves the site review list on the landing page.
type ReviewController struct {
	reviews ReviewStore
}

func NewReviewController(reviews ReviewStore) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// List handles GET /userReviews.
func (c *ReviewController) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.reviews.ListReviews(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err, "no reviews found")
		return
	}
	response.OK(w, reviews)
}

type reviewInput struct {
	Name    string `json:"name" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,max=5"`
	Comment string `json:"comment" validate:"nullable,max=1000"`
}

// Create handles POST /userReviews. The reviewer email comes from the
// token; the body carries no email field.
func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	var in reviewInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	email, _ := middleware.EmailFromCtx(r.Context())
	review := models.Review{
		Name:    in.Name,
		Email:   email,
		Rating:  in.Rating,
		Comment: in.Comment,
	}

	if err := c.reviews.AddReview(r.Context(), &review); err != nil {
		response.FromError(r.Context(), w, err, "could not add review")
		return
	}
	response.Created(w, "review added", review)
}
