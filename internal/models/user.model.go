package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleCleaner   UserRole = "cleaner"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleCleaner, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	FirstName       string          `gorm:"type:text"                             json:"firstName"`
	LastName        string          `gorm:"type:text"                             json:"lastName"`
	FullName        string          `gorm:"type:text"                             json:"fullName"`
	DisplayName     string          `gorm:"type:text"                             json:"displayName"`
	Email           *string         `gorm:"type:text;uniqueIndex"                 json:"email"`
	PhoneNumber     string          `gorm:"type:text"                             json:"phoneNumber,omitempty"`
	Role            UserRole        `gorm:"type:text;not null;default:'user'"     json:"role"`
	Balance         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	HasAStreak      bool            `gorm:"not null;default:false"                json:"hasAStreak"`
	AverageRating   decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"  json:"averageRating"`
	NumberOfReviews int             `gorm:"not null;default:0"                    json:"numberOfReviews"`
	IsActive        bool            `gorm:"type:bool;default:true"                json:"isActive"`
	LastLoginAt     *time.Time      `gorm:"type:timestamp"                        json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.DisplayName == "" {
		u.DisplayName = u.FullName
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsCleaner() bool {
	return u.Role == RoleCleaner
}

// Name is what other users see: the display name, else the full name.
func (u *User) Name() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.FullName != "":
		return u.FullName
	}
	return "a user"
}

type UserProfile struct {
	ID              string          `json:"id"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	FullName        string          `json:"fullName"`
	DisplayName     string          `json:"displayName"`
	Email           *string         `json:"email,omitempty"`
	Role            UserRole        `json:"role"`
	Balance         decimal.Decimal `json:"balance"`
	HasAStreak      bool            `json:"hasAStreak"`
	AverageRating   decimal.Decimal `json:"averageRating"`
	NumberOfReviews int             `json:"numberOfReviews"`
	IsActive        bool            `json:"isActive"`
}

// ToProfile converts a User to a UserProfile (public information only)
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:              u.ID.String(),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName,
		DisplayName:     u.DisplayName,
		Email:           u.Email,
		Role:            u.Role,
		Balance:         u.Balance,
		HasAStreak:      u.HasAStreak,
		AverageRating:   u.AverageRating,
		NumberOfReviews: u.NumberOfReviews,
		IsActive:        u.IsActive,
	}
}
