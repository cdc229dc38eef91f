package service

import (
	"errors"
	"fmt"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/platform/apperr"

	"github.com/shopspring/decimal"
)

var (
	// minQuantity is the smallest quantity a NUMERIC(15,2) column keeps positive.
	minQuantity = decimal.RequireFromString("0.01")
	// maxAmount bounds every stored quantity and amount (NUMERIC(15,2)).
	maxAmount = decimal.New(1, 13)
)

// RecomputeItem validates a line and derives its row total.
// Quantity and prices are rounded to the stored precision first, so the row
// total always equals the product of the stored values.
// Any client-supplied row total is discarded.
func RecomputeItem(item domain.LineItem) (domain.LineItem, error) {
	item, violations := recompute("", item)
	if len(violations) > 0 {
		return item, apperr.ValidationFields(violations)
	}
	return item, nil
}

// RecomputeItems recomputes every line and reports all violations at once,
// keyed as items[i].field.
func RecomputeItems(items []domain.LineItem) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, len(items))
	var violations []apperr.FieldError
	for i, item := range items {
		priced, v := recompute(fmt.Sprintf("items[%d].", i), item)
		violations = append(violations, v...)
		out[i] = priced
	}
	if len(violations) > 0 {
		return nil, apperr.ValidationFields(violations)
	}
	return out, nil
}

func recompute(prefix string, item domain.LineItem) (domain.LineItem, []apperr.FieldError) {
	var v []apperr.FieldError

	if domain.Round2(item.Quantity).LessThan(minQuantity) {
		v = append(v, apperr.FieldError{Field: prefix + "quantity", Message: "must be at least " + minQuantity.String()})
	}
	if item.OriginalUnitPrice.IsNegative() {
		v = append(v, apperr.FieldError{Field: prefix + "originalUnitPrice", Message: "must be at least 0"})
	}
	if item.DiscountedUnitPrice.IsNegative() {
		v = append(v, apperr.FieldError{Field: prefix + "discountedUnitPrice", Message: "must be at least 0"})
	}
	if item.CostPrice.IsNegative() {
		v = append(v, apperr.FieldError{Field: prefix + "costPrice", Message: "must be at least 0"})
	}

	item.Quantity = domain.Round2(item.Quantity)
	item.OriginalUnitPrice = domain.Round2(item.OriginalUnitPrice)
	item.DiscountedUnitPrice = domain.Round2(item.DiscountedUnitPrice)
	item.CostPrice = domain.Round2(item.CostPrice)

	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"quantity", item.Quantity},
		{"originalUnitPrice", item.OriginalUnitPrice},
		{"discountedUnitPrice", item.DiscountedUnitPrice},
		{"costPrice", item.CostPrice},
	} {
		if f.value.GreaterThanOrEqual(maxAmount) {
			v = append(v, tooLarge(prefix+f.name))
		}
	}
	if len(v) > 0 {
		return item, v
	}

	item.RowTotal = domain.Round2(item.Quantity.Mul(item.DiscountedUnitPrice))
	if item.RowTotal.GreaterThanOrEqual(maxAmount) {
		return item, []apperr.FieldError{tooLarge(prefix + "rowTotal")}
	}
	return item, nil
}

func tooLarge(field string) apperr.FieldError {
	return apperr.FieldError{Field: field, Message: "must be less than " + maxAmount.String()}
}

// ComputeTotals aggregates recomputed lines into the quote money summary.
// VAT is either zero or exactly round2(subtotal*0.05). Profit may be negative.
func ComputeTotals(items []domain.LineItem, vatApplicable, deliveryApplicable bool, deliveryCharge decimal.Decimal) (domain.Totals, error) {
	if deliveryCharge.IsNegative() {
		return domain.Totals{}, apperr.ValidationFields([]apperr.FieldError{
			{Field: "deliveryCharge", Message: "must be at least 0"},
		})
	}
	deliveryCharge = domain.Round2(deliveryCharge)
	if deliveryCharge.GreaterThanOrEqual(maxAmount) {
		return domain.Totals{}, apperr.ValidationFields([]apperr.FieldError{tooLarge("deliveryCharge")})
	}

	subtotal := decimal.Zero
	totalCost := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.RowTotal)
		totalCost = totalCost.Add(item.CostPrice.Mul(item.Quantity))
	}
	subtotal = domain.Round2(subtotal)
	totalCost = domain.Round2(totalCost)

	vat := decimal.Zero
	if vatApplicable {
		vat = domain.Round2(subtotal.Mul(domain.VATRate))
	}

	delivery := decimal.Zero
	if deliveryApplicable {
		delivery = deliveryCharge
	}

	grandTotal := subtotal.Add(vat).Add(delivery)
	if grandTotal.GreaterThanOrEqual(maxAmount) {
		return domain.Totals{}, apperr.ValidationFields([]apperr.FieldError{tooLarge("grandTotal")})
	}

	profit := subtotal.Sub(totalCost)

	return domain.Totals{
		Subtotal:      subtotal,
		VAT:           vat,
		Delivery:      delivery,
		GrandTotal:    grandTotal,
		TotalCost:     totalCost,
		Profit:        profit,
		MarginPercent: domain.Percent(profit, subtotal),
	}, nil
}

// PriceQuote recomputes items and totals for a draft in one step.
func PriceQuote(items []domain.LineItem, vatApplicable, deliveryApplicable bool, deliveryCharge decimal.Decimal) ([]domain.LineItem, domain.Totals, error) {
	priced, itemErr := RecomputeItems(items)
	totals, totalsErr := ComputeTotals(priced, vatApplicable, deliveryApplicable, deliveryCharge)
	if itemErr != nil || totalsErr != nil {
		return nil, domain.Totals{}, mergeValidation(itemErr, totalsErr)
	}
	return priced, totals, nil
}

// mergeValidation folds several validation errors into one field list.
// A non-validation error wins as-is.
func mergeValidation(errs ...error) error {
	var fields []apperr.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !apperr.Is(err, apperr.KindValidation) {
			return err
		}
		fields = append(fields, detailsOf(err)...)
	}
	if len(fields) == 0 {
		return nil
	}
	return apperr.ValidationFields(fields)
}

func detailsOf(err error) []apperr.FieldError {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Details.([]apperr.FieldError)
	return fields
}
