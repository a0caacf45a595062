package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/app/services"
	"github.com/shashiranjanraj/deviceexpress/pkg/bind"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
	"github.com/shashiranjanraj/deviceexpress/pkg/validate"
)

// AuthController serves registration, token issuance, and the role probes.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,in=buyer,Seller,admin"`
	Password string `json:"password" validate:"nullable,min=8"`
}

// Register handles POST /users: create the account if the email is new,
// otherwise log the existing user in. Both outcomes carry a token.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	token, message, err := c.auth.Register(r.Context(), models.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	}, in.Password)
	if err != nil {
		response.FromError(r.Context(), w, err, "could not register user")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     message,
		"accessToken": token,
	})
}

// Token handles GET /jwt?email=. An unknown email gets an empty token and a
// not-authorized verdict rather than a not-found error.
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		response.Error(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	token, err := c.auth.IssueToken(r.Context(), email)
	if errors.Is(err, database.ErrNotFound) {
		response.JSON(w, http.StatusForbidden, map[string]any{
			"success":     false,
			"message":     "not authorized",
			"accessToken": "",
		})
		return
	}
	if err != nil {
		response.FromError(r.Context(), w, err, "could not issue token")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"accessToken": token,
	})
}

// IsAdmin handles GET /users/admin/{email}.
func (c *AuthController) IsAdmin(w http.ResponseWriter, r *http.Request) {
	c.roleProbe(w, r, models.RoleAdmin, "isAdmin")
}

// IsSeller handles GET /users/seller/{email}.
func (c *AuthController) IsSeller(w http.ResponseWriter, r *http.Request) {
	c.roleProbe(w, r, models.RoleSeller, "isSeller")
}

func (c *AuthController) roleProbe(w http.ResponseWriter, r *http.Request, role, field string) {
	email := chi.URLParam(r, "email")

	ok, err := c.auth.HasRole(r.Context(), email, role)
	if err != nil {
		response.FromError(r.Context(), w, err, "user not found")
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{field: ok})
}
