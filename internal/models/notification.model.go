package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationSystem  NotificationType = "system"
)

const (
	MaxNotificationTitleLength   = 100
	MaxNotificationMessageLength = 500
	MaxNotificationLinkLength    = 200
)

type Notification struct {
	BaseUUIDModel
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index"     json:"userId"`
	Title   string           `gorm:"type:varchar(100);not null"   json:"title"`
	Message string           `gorm:"type:varchar(500);not null"   json:"message"`
	Type    NotificationType `gorm:"type:text;not null"           json:"type"`
	Link    string           `gorm:"type:varchar(200)"            json:"link,omitempty"`
	IsRead  bool             `gorm:"not null;default:false;index" json:"isRead"`
	Data    datatypes.JSON   `gorm:"type:jsonb"                   json:"data,omitempty"`
}
