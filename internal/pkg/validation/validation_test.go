package validation

import (
	"errors"
	"strings"
	"testing"

	"sehatku-paylater/internal/core/domain"
)

type sampleRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Tenor    int     `json:"tenor" validate:"min=1,max=36"`
	OpenTime string  `json:"openTime" validate:"omitempty,hhmm"`
}

func TestStruct_Valid(t *testing.T) {
	req := sampleRequest{Email: "a@b.co", Amount: 1000, Tenor: 12, OpenTime: "08:30"}
	if err := Struct(req); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	req := sampleRequest{Email: "", Amount: 0, Tenor: 40, OpenTime: "25:00"}
	err := Struct(req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{
		"email is required",
		"amount must be greater than 0",
		"tenor must be at most 36",
		"openTime must be in HH:MM format",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
