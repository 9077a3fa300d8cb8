package models

import "github.com/google/uuid"

type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyOffice     PropertyType = "office"
	PropertyCommercial PropertyType = "commercial"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyHouse, PropertyApartment, PropertyOffice, PropertyCommercial:
		return true
	}
	return false
}

type Property struct {
	BaseUUIDModel
	OwnerID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"ownerId"`
	Name         string       `gorm:"type:text;not null"       json:"name"`
	Address      string       `gorm:"type:text;not null"       json:"address"`
	City         string       `gorm:"type:text"                json:"city"`
	PropertyType PropertyType `gorm:"type:text;not null"       json:"propertyType"`
	Bedrooms     int          `gorm:"not null;default:0"       json:"bedrooms"`
	Bathrooms    int          `gorm:"not null;default:0"       json:"bathrooms"`
	Notes        string       `gorm:"type:text"                json:"notes,omitempty"`
}
