package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/deviceexpress/pkg/validate"
)

type productInput struct {
	Name        string  `json:"name"     validate:"required,min=2,max=120"`
	Category    string  `json:"category" validate:"required"`
	ResalePrice float64 `json:"resalePrice" validate:"required,gt=0"`
	Condition   string  `json:"condition" validate:"nullable,in=excellent,good,fair"`
	SellerEmail string  `json:"sellerEmail" validate:"required,email"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{
		Name:        "iPhone 11",
		Category:    "iPhone",
		ResalePrice: 320,
		Condition:   "good",
		SellerEmail: "seller@example.com",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["sellerEmail"]; !ok {
		t.Error("expected sellerEmail to be required")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestGreaterThan(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"required,gt=0"`
	}
	if errs := validate.Struct(in{Price: -5}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail")
	}
	if errs := validate.Struct(in{Price: 120}); validate.HasErrors(errs) {
		t.Errorf("expected positive price to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=buyer,Seller,admin"`
	}
	if errs := validate.Struct(in{Role: "superuser"}); !validate.HasErrors(errs) {
		t.Error("expected unknown role to fail")
	}
	if errs := validate.Struct(in{Role: "Seller"}); validate.HasErrors(errs) {
		t.Errorf("expected Seller to pass, got: %v", errs)
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	type in struct {
		Condition string `json:"condition" validate:"nullable,in=excellent,good,fair"`
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable field to pass, got: %v", errs)
	}
	if errs := validate.Struct(in{Condition: "broken"}); !validate.HasErrors(errs) {
		t.Error("expected invalid condition to fail")
	}
}
