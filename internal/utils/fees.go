package utils

import (
	"fmt"

	"cleanhub/internal/models"
	"cleanhub/internal/types"

	"github.com/shopspring/decimal"
)

// RecurringDiscountRate is applied to the pre-discount total of every booking
// that is not once-off.
var RecurringDiscountRate = decimal.NewFromFloat(0.10)

type FeeBreakdown struct {
	ExtrasTotal    decimal.Decimal `json:"extrasTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ServiceFee     decimal.Decimal `json:"serviceFee"`
	IsRecurring    bool            `json:"isRecurring"`
}

// ComputeFee totals the base fee and extras, then applies the recurring
// discount. The discount is rounded to cents half away from zero before it is
// subtracted, so the fee plus the discount always equals the subtotal. It has
// no side effects, so repeating a call with the same inputs always gives the
// same breakdown.
func ComputeFee(
	baseFee decimal.Decimal,
	extras []models.Extra,
	frequency models.BookingFrequency,
) (FeeBreakdown, error) {
	if !frequency.IsValid() {
		return FeeBreakdown{}, types.Validationf("unknown booking frequency %q", frequency)
	}

	if baseFee.IsNegative() {
		return FeeBreakdown{}, fmt.Errorf("%w: baseFee must not be negative", types.ErrInvalidFee)
	}

	extrasTotal := decimal.Zero
	for i, extra := range extras {
		if extra.Fee.IsNegative() {
			return FeeBreakdown{}, fmt.Errorf(
				"%w: extra %d (%s) has a negative fee",
				types.ErrInvalidFee,
				i,
				extra.Name,
			)
		}
		extrasTotal = extrasTotal.Add(extra.Fee)
	}

	subtotal := baseFee.Add(extrasTotal)
	isRecurring := frequency.IsRecurring()

	discount := decimal.Zero
	if isRecurring {
		discount = subtotal.Mul(RecurringDiscountRate).Round(2)
	}

	serviceFee := subtotal.Sub(discount).Round(2)
	if serviceFee.IsNegative() {
		return FeeBreakdown{}, fmt.Errorf("%w: service fee is negative", types.ErrInvalidFee)
	}

	return FeeBreakdown{
		ExtrasTotal:    extrasTotal.Round(2),
		DiscountAmount: discount,
		ServiceFee:     serviceFee,
		IsRecurring:    isRecurring,
	}, nil
}

// Percentage returns pct percent of amount, rounded to cents.
func Percentage(amount decimal.Decimal, pct int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
}
