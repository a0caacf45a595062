package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/app/services"
	"github.com/shashiranjanraj/deviceexpress/pkg/bind"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
	"github.com/shashiranjanraj/deviceexpress/pkg/validate"
)

// BookingReader is the slice of the booking repository the HTTP surface
// needs directly; the payment cascade goes through the service.
type BookingReader interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id string) (models.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]models.Booking, error)
}

// BookingController serves booking CRUD and the payment endpoints.
type BookingController struct {
	bookings BookingReader
	payments *services.PaymentService
}

func NewBookingController(bookings BookingReader, payments *services.PaymentService) *BookingController {
	return &BookingController{bookings: bookings, payments: payments}
}

type bookingInput struct {
	ProductID    string  `json:"productId" validate:"required"`
	ProductName  string  `json:"productName"`
	BuyerName    string  `json:"buyerName"`
	Price        float64 `json:"price"`
	MeetingPoint string  `json:"meetingPoint"`
	Phone        string  `json:"phone"`
}

// Create handles POST /booking. The buyer is whoever holds the token; the
// body carries no email field.
func (c *BookingController) Create(w http.ResponseWriter, r *http.Request) {
	var in bookingInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	email, _ := middleware.EmailFromCtx(r.Context())
	b := models.Booking{
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		Email:        email,
		BuyerName:    in.BuyerName,
		Price:        in.Price,
		MeetingPoint: in.MeetingPoint,
		Phone:        in.Phone,
	}

	if err := c.bookings.Create(r.Context(), &b); err != nil {
		response.FromError(r.Context(), w, err, "could not create booking")
		return
	}
	response.Created(w, "booking created", b)
}

// List handles GET /booking?email=. Buyers only see their own bookings: the
// query email has to match the token email.
func (c *BookingController) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	tokenEmail, ok := middleware.EmailFromCtx(r.Context())
	if !ok || email != tokenEmail {
		response.Forbidden(w)
		return
	}

	bookings, err := c.bookings.ListByEmail(r.Context(), email)
	if err != nil {
		response.FromError(r.Context(), w, err, "no bookings found")
		return
	}
	response.OK(w, bookings)
}

// Get handles GET /booking/{id}.
func (c *BookingController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := c.bookings.FindByID(r.Context(), id)
	if err != nil {
		response.FromError(r.Context(), w, err, "booking not found")
		return
	}
	response.OK(w, booking)
}

type intentInput struct {
	BookingID string `json:"bookingId" validate:"required"`
}

// CreateIntent handles POST /create-payment-intent: the booking's price in
// minor units goes to the provider and the client secret comes back.
func (c *BookingController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var in intentInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	secret, err := c.payments.CreateIntent(r.Context(), in.BookingID)
	if err != nil {
		response.FromError(r.Context(), w, err, "booking not found")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"clientSecret": secret,
	})
}

// Complete handles POST /payments: record the payment and cascade the
// booking and product updates.
func (c *BookingController) Complete(w http.ResponseWriter, r *http.Request) {
	var p models.Payment
	if errs, err := bind.JSON(r, &p); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	if err := c.payments.Complete(r.Context(), p); err != nil {
		response.FromError(r.Context(), w, err, "payment could not be completed")
		return
	}
	response.Message(w, "payment completed")
}
