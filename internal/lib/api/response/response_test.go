package response_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	resp "github.com/xtding233/spin-wheel/internal/lib/api/response"
)

func TestError(t *testing.T) {
	if r := resp.Error("boom", 0); r.Status != http.StatusInternalServerError || r.Error != "boom" {
		t.Fatalf("got %+v", r)
	}
	if r := resp.OK(); r.Status != resp.StatusOK || r.Error != "" {
		t.Fatalf("got %+v", r)
	}
}

func TestValidationError(t *testing.T) {
	type req struct {
		Text   string `validate:"required"`
		Weight int    `validate:"min=1"`
	}
	err := validator.New().Struct(req{Weight: 0})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	r := resp.ValidationError(verrs)
	if r.Status != http.StatusBadRequest {
		t.Fatalf("status %d", r.Status)
	}
	for _, want := range []string{"field Text is required", "field Weight must be at least 1"} {
		if !strings.Contains(r.Error, want) {
			t.Fatalf("%q missing %q", r.Error, want)
		}
	}
}
