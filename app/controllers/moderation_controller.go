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

// UserDirectory is the slice of the user repository the admin surface needs.
type UserDirectory interface {
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	DeleteByID(ctx context.Context, id string) error
}

// ReportLister lists the open reports; resolution goes through the service.
type ReportLister interface {
	ListReports(ctx context.Context) ([]models.ReportedItem, error)
}

// ModerationController serves the admin surface: user lists and deletes,
// seller verification, and the report lifecycle.
type ModerationController struct {
	users      UserDirectory
	reports    ReportLister
	moderation *services.ModerationService
}

func NewModerationController(users UserDirectory, reports ReportLister, moderation *services.ModerationService) *ModerationController {
	return &ModerationController{users: users, reports: reports, moderation: moderation}
}

// Buyers handles GET /users/buyer.
func (c *ModerationController) Buyers(w http.ResponseWriter, r *http.Request) {
	c.listByRole(w, r, models.RoleBuyer)
}

// Sellers handles GET /users/seller.
func (c *ModerationController) Sellers(w http.ResponseWriter, r *http.Request) {
	c.listByRole(w, r, models.RoleSeller)
}

func (c *ModerationController) listByRole(w http.ResponseWriter, r *http.Request, role string) {
	users, err := c.users.ListByRole(r.Context(), role)
	if err != nil {
		response.FromError(r.Context(), w, err, "no users found")
		return
	}
	response.OK(w, users)
}

// DeleteUser handles DELETE /users/buyer/{id} and /users/seller/{id}. A
// hard delete; there is no soft-delete state to restore from.
func (c *ModerationController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		// The seller route reuses the {email} wildcard of its sibling
		// probe route; the value is still the user id.
		id = chi.URLParam(r, "email")
	}

	if err := c.users.DeleteByID(r.Context(), id); err != nil {
		response.FromError(r.Context(), w, err, "user not found")
		return
	}
	response.Message(w, "user deleted")
}

// VerifySeller handles PUT /userVerified/{email}: the user flag and the
// product fan-out move together or not at all.
func (c *ModerationController) VerifySeller(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := c.moderation.VerifySeller(r.Context(), email); err != nil {
		response.FromError(r.Context(), w, err, "user not found")
		return
	}
	response.Message(w, "seller verified")
}

type reportInput struct {
	ProductID string `json:"productId" validate:"required"`
	Reason    string `json:"reason" validate:"nullable,max=500"`
}

// CreateReport handles POST /reportItems. Any authenticated user can
// report; the reporter identity comes from the token.
func (c *ModerationController) CreateReport(w http.ResponseWriter, r *http.Request) {
	var in reportInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	reporter, _ := middleware.EmailFromCtx(r.Context())
	err := c.moderation.Report(r.Context(), models.ReportedItem{
		ProductID:     in.ProductID,
		ReporterEmail: reporter,
		Reason:        in.Reason,
	})
	if err != nil {
		response.FromError(r.Context(), w, err, "product not found")
		return
	}
	response.Message(w, "product reported")
}

// Reports handles GET /reportItems.
func (c *ModerationController) Reports(w http.ResponseWriter, r *http.Request) {
	items, err := c.reports.ListReports(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err, "no reported items found")
		return
	}
	response.OK(w, items)
}

// ResolveReport handles DELETE /reportedItem/{id}: drop the report and
// clear the product's reported flag.
func (c *ModerationController) ResolveReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.moderation.Resolve(r.Context(), id); err != nil {
		response.FromError(r.Context(), w, err, "reported item not found")
		return
	}
	response.Message(w, "reported item resolved")
}
