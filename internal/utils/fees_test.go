package utils

import (
	"math/rand"
	"testing"

	"cleanhub/internal/models"
	"cleanhub/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeFee(t *testing.T) {
	tests := []struct {
		name             string
		baseFee          decimal.Decimal
		extras           []models.Extra
		frequency        models.BookingFrequency
		expectedExtras   string
		expectedDiscount string
		expectedFee      string
		expectedErr      error
	}{
		{
			name:             "weekly booking gets ten percent off",
			baseFee:          d("50"),
			extras:           []models.Extra{{Name: "Oven", Fee: d("10")}},
			frequency:        models.FrequencyWeekly,
			expectedExtras:   "10.00",
			expectedDiscount: "6.00",
			expectedFee:      "54.00",
		},
		{
			name:             "once-off booking has no discount",
			baseFee:          d("50"),
			extras:           []models.Extra{{Name: "Oven", Fee: d("10")}},
			frequency:        models.FrequencyOnceOff,
			expectedExtras:   "10.00",
			expectedDiscount: "0.00",
			expectedFee:      "60.00",
		},
		{
			name:             "monthly with no extras",
			baseFee:          d("80.50"),
			frequency:        models.FrequencyMonthly,
			expectedExtras:   "0.00",
			expectedDiscount: "8.05",
			expectedFee:      "72.45",
		},
		{
			name:             "half cent discount rounds up",
			baseFee:          d("54.55"),
			frequency:        models.FrequencyWeekly,
			expectedExtras:   "0.00",
			expectedDiscount: "5.46",
			expectedFee:      "49.09",
		},
		{
			name:             "smallest discount is one cent",
			baseFee:          d("0.05"),
			frequency:        models.FrequencyWeekly,
			expectedExtras:   "0.00",
			expectedDiscount: "0.01",
			expectedFee:      "0.04",
		},
		{
			name:             "sub half cent discount rounds to zero",
			baseFee:          d("0.04"),
			frequency:        models.FrequencyMonthly,
			expectedExtras:   "0.00",
			expectedDiscount: "0.00",
			expectedFee:      "0.04",
		},
		{
			name:             "zero fee is allowed",
			baseFee:          decimal.Zero,
			frequency:        models.FrequencyBiWeekly,
			expectedExtras:   "0.00",
			expectedDiscount: "0.00",
			expectedFee:      "0.00",
		},
		{
			name:        "negative extra is rejected",
			baseFee:     d("50"),
			extras:      []models.Extra{{Name: "Refund", Fee: d("-5")}},
			frequency:   models.FrequencyOnceOff,
			expectedErr: types.ErrInvalidFee,
		},
		{
			name:        "negative base fee is rejected",
			baseFee:     d("-1"),
			frequency:   models.FrequencyOnceOff,
			expectedErr: types.ErrInvalidFee,
		},
		{
			name:        "unknown frequency",
			baseFee:     d("50"),
			frequency:   models.BookingFrequency("daily"),
			expectedErr: types.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := ComputeFee(tt.baseFee, tt.extras, tt.frequency)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, types.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedExtras, fee.ExtrasTotal.StringFixed(2))
			assert.Equal(t, tt.expectedDiscount, fee.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.expectedFee, fee.ServiceFee.StringFixed(2))
			assert.Equal(t, tt.frequency.IsRecurring(), fee.IsRecurring)
		})
	}
}

func TestComputeFee_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	frequencies := []models.BookingFrequency{
		models.FrequencyOnceOff,
		models.FrequencyWeekly,
		models.FrequencyBiWeekly,
		models.FrequencyMonthly,
	}

	for i := 0; i < 500; i++ {
		baseFee := decimal.New(rng.Int63n(100000), -2)
		extras := make([]models.Extra, rng.Intn(5))
		for j := range extras {
			extras[j] = models.Extra{Name: "extra", Fee: decimal.New(rng.Int63n(20000), -2)}
		}
		frequency := frequencies[rng.Intn(len(frequencies))]

		first, err := ComputeFee(baseFee, extras, frequency)
		require.NoError(t, err)

		second, err := ComputeFee(baseFee, extras, frequency)
		require.NoError(t, err)
		assert.Equal(t, first, second, "fee computation must be idempotent")

		subtotal := baseFee.Add(first.ExtrasTotal)
		assert.True(t, first.ServiceFee.Equal(subtotal.Sub(first.DiscountAmount)))
		assert.False(t, first.ServiceFee.IsNegative())

		if frequency == models.FrequencyOnceOff {
			assert.True(t, first.DiscountAmount.IsZero())
		} else {
			assert.True(t, first.DiscountAmount.Equal(subtotal.Mul(RecurringDiscountRate).Round(2)))
		}
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "43.20", Percentage(d("54"), 80).StringFixed(2))
	assert.Equal(t, "0.00", Percentage(d("54"), 0).StringFixed(2))
	assert.Equal(t, "54.00", Percentage(d("54"), 100).StringFixed(2))
}
