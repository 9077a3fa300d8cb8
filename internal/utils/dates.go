package utils

import (
	"fmt"
	"sort"
	"time"

	"cleanhub/internal/models"
)

const (
	RequestedDateLayout = "2006-01-02"
	ArrivalTimeLayout   = "15:04"
)

// WeekWindow returns the Sunday-to-Sunday window, in UTC, that contains t.
// The end is exclusive.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

// ValidateRequestedDates checks each entry and returns the earliest start time.
func ValidateRequestedDates(dates []models.RequestedDate) (time.Time, error) {
	if len(dates) == 0 {
		return time.Time{}, fmt.Errorf("at least one requested date is required")
	}

	starts := make([]time.Time, 0, len(dates))
	for i, date := range dates {
		if _, err := time.Parse(RequestedDateLayout, date.Date); err != nil {
			return time.Time{}, fmt.Errorf("requestedDates[%d].date must be YYYY-MM-DD", i)
		}
		if _, err := time.Parse(ArrivalTimeLayout, date.TimeOfArrival); err != nil {
			return time.Time{}, fmt.Errorf("requestedDates[%d].timeOfArrival must be HH:MM", i)
		}
		start, err := date.StartsAt()
		if err != nil {
			return time.Time{}, fmt.Errorf("requestedDates[%d] is not a valid date", i)
		}
		starts = append(starts, start)
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts[0], nil
}
