package validation

import (
	"errors"
	"testing"

	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
)

type sample struct {
	Email     string `json:"email" validate:"required,email"`
	VisitType string `json:"visit_type" validate:"required,oneof=I V"`
	Password  string `json:"password" validate:"omitempty,min=8"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Email: "a@example.com", VisitType: "I"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_FieldKeyedErrors(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Email: "nope", VisitType: "X", Password: "short"})

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"email", "visit_type", "password"} {
		if len(verr.Fields[field]) == 0 {
			t.Errorf("expected error for field %q, got %v", field, verr.Fields)
		}
	}
}

func TestValidate_RequiredMessage(t *testing.T) {
	v := New()
	err := v.Validate(&sample{})

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["email"][0] != "This field is required." {
		t.Errorf("unexpected message: %v", verr.Fields["email"])
	}
}
