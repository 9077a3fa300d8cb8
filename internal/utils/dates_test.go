package utils

import (
	"testing"
	"time"

	"cleanhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		start time.Time
	}{
		{
			name:  "midweek",
			input: time.Date(2024, 6, 12, 15, 4, 0, 0, time.UTC), // Wednesday
			start: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday is the first day",
			input: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
			start: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "saturday night stays in the same week",
			input: time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC),
			start: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "crosses a month boundary",
			input: time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC),
			start: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.input)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.start.AddDate(0, 0, 7), end)
		})
	}
}

func TestValidateRequestedDates(t *testing.T) {
	t.Run("returns earliest start", func(t *testing.T) {
		earliest, err := ValidateRequestedDates([]models.RequestedDate{
			{Date: "2024-06-20", TimeOfArrival: "10:00"},
			{Date: "2024-06-18", TimeOfArrival: "14:30"},
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 18, 14, 30, 0, 0, time.UTC), earliest)
	})

	t.Run("requires at least one date", func(t *testing.T) {
		_, err := ValidateRequestedDates(nil)
		assert.Error(t, err)
	})

	t.Run("rejects bad date", func(t *testing.T) {
		_, err := ValidateRequestedDates([]models.RequestedDate{{Date: "20-06-2024", TimeOfArrival: "10:00"}})
		assert.EqualError(t, err, "requestedDates[0].date must be YYYY-MM-DD")
	})

	t.Run("rejects bad arrival time", func(t *testing.T) {
		_, err := ValidateRequestedDates([]models.RequestedDate{{Date: "2024-06-20", TimeOfArrival: "10am"}})
		assert.EqualError(t, err, "requestedDates[0].timeOfArrival must be HH:MM")
	})
}
