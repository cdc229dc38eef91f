package validator

import (
	"testing"

	"sirkap_backend/platform/apperr"

	"github.com/shopspring/decimal"
)

type lineInput struct {
	Name     string          `json:"itemName" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"discountedUnitPrice" validate:"gte=0"`
}

type payload struct {
	Project string      `json:"projectName" validate:"max=10"`
	Items   []lineInput `json:"items" validate:"min=1,dive"`
}

func TestValidateReportsEveryField(t *testing.T) {
	v := New()
	err := v.Validate(payload{
		Project: "a very long project name",
		Items: []lineInput{
			{Name: "", Quantity: decimal.Zero, Price: decimal.NewFromInt(-1)},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	appErr := err.(*apperr.Error)
	fields, ok := appErr.Details.([]apperr.FieldError)
	if !ok {
		t.Fatalf("expected field details, got %T", appErr.Details)
	}

	want := map[string]bool{
		"projectName":                  false,
		"items[0].itemName":            false,
		"items[0].quantity":            false,
		"items[0].discountedUnitPrice": false,
	}
	for _, f := range fields {
		if _, ok := want[f.Field]; ok {
			want[f.Field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Fatalf("expected violation for %s, got %+v", field, fields)
		}
	}
}

func TestValidateAcceptsValidPayload(t *testing.T) {
	v := New()
	err := v.Validate(payload{
		Project: "Villa",
		Items: []lineInput{
			{Name: "Tile", Quantity: decimal.NewFromInt(2), Price: decimal.Zero},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
