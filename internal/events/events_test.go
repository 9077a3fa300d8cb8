package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrepare(t *testing.T) {
	t.Run("fills missing fields", func(t *testing.T) {
		event := Prepare(NOTIFICATIONS_CHANNEL, Event{Type: NOTIFICATION})

		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, NOTIFICATIONS_CHANNEL, event.Channel)
	})

	t.Run("keeps provided fields", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		event := Prepare(NOTIFICATIONS_CHANNEL, Event{ID: "abc", Channel: "other", Timestamp: at})

		assert.Equal(t, "abc", event.ID)
		assert.Equal(t, Channel("other"), event.Channel)
		assert.Equal(t, at, event.Timestamp)
	})
}
