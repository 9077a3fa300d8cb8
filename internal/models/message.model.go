package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const MaxMessageContentLength = 2000

type MessageRecipient struct {
	UserID uuid.UUID  `json:"userId"`
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"readAt,omitempty"`
}

// Message is a chat line on a service. Only the service's participants can
// send or receive one.
type Message struct {
	BaseUUIDModel
	ServiceID  uuid.UUID                             `gorm:"type:uuid;not null;index"    json:"serviceId"`
	SenderID   uuid.UUID                             `gorm:"type:uuid;not null"          json:"senderId"`
	Content    string                                `gorm:"type:varchar(2000);not null" json:"content"`
	Recipients datatypes.JSONSlice[MessageRecipient] `gorm:"type:jsonb;not null"         json:"recipients"`
}

func (m *Message) IsRecipient(userID uuid.UUID) bool {
	for _, recipient := range m.Recipients {
		if recipient.UserID == userID {
			return true
		}
	}
	return false
}

// MarkReadBy flags the user's unread entries and reports whether any changed.
func (m *Message) MarkReadBy(userID uuid.UUID, at time.Time) bool {
	changed := false
	for i := range m.Recipients {
		if m.Recipients[i].UserID != userID || m.Recipients[i].Read {
			continue
		}
		readAt := at
		m.Recipients[i].Read = true
		m.Recipients[i].ReadAt = &readAt
		changed = true
	}
	return changed
}
