package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReviewerRole string

const (
	ReviewerCleaner ReviewerRole = "cleaner"
	ReviewerUser    ReviewerRole = "user"
)

const (
	MinReviewStars         = 1
	MaxReviewStars         = 5
	MinReviewMessageLength = 4
	MaxReviewMessageLength = 1000
)

// Review is one participant's verdict on the other side of a completed
// service. Each participant reviews a service at most once.
type Review struct {
	BaseUUIDModel
	ServiceID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_service_reviewer" json:"serviceId"`
	ReviewerID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_service_reviewer" json:"reviewerId"`
	ReceiverID   uuid.UUID    `gorm:"type:uuid;not null;index"                                    json:"receiverId"`
	ReviewerRole ReviewerRole `gorm:"type:text;not null"                                          json:"reviewerRole"`
	Stars        int          `gorm:"not null"                                                    json:"reviewStars"`
	Message      string       `gorm:"type:varchar(1000);not null"                                 json:"reviewMessage"`
}

type ReviewStats struct {
	NumberOfReviews int             `json:"numberOfReviews"`
	AverageRating   decimal.Decimal `json:"averageRating"`
}
