package propertyController

import (
	"context"
	"strings"

	. "cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	MaxPropertyNameLength    = 100
	MaxPropertyAddressLength = 300
	MaxPropertyNotesLength   = 1000
)

type PropertyController struct {
	propertyRepo repositories.PropertyRepository
	log          logger.Logger
}

type CreatePropertyRequest struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	City         string       `json:"city,omitempty"`
	PropertyType PropertyType `json:"propertyType"`
	Bedrooms     int          `json:"bedrooms,omitempty"`
	Bathrooms    int          `json:"bathrooms,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

type PropertyControllerInterface interface {
	Create(ctx context.Context, user *User, request *CreatePropertyRequest) (*Property, error)
	List(ctx context.Context, user *User) ([]Property, error)
}

func New(repos repositories.Repository) PropertyControllerInterface {
	return &PropertyController{
		propertyRepo: repos.Property,
		log:          logger.New("propertyController"),
	}
}

func (r *CreatePropertyRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)

	switch {
	case r.Name == "":
		return types.Validationf("name is required")
	case len(r.Name) > MaxPropertyNameLength:
		return types.Validationf("name exceeds %d characters", MaxPropertyNameLength)
	case r.Address == "":
		return types.Validationf("address is required")
	case len(r.Address) > MaxPropertyAddressLength:
		return types.Validationf("address exceeds %d characters", MaxPropertyAddressLength)
	case !r.PropertyType.IsValid():
		return types.Validationf("unknown property type %q", r.PropertyType)
	case r.Bedrooms < 0 || r.Bathrooms < 0:
		return types.Validationf("room counts must not be negative")
	case len(r.Notes) > MaxPropertyNotesLength:
		return types.Validationf("notes exceed %d characters", MaxPropertyNotesLength)
	}
	return nil
}

func (c *PropertyController) Create(
	ctx context.Context,
	user *User,
	request *CreatePropertyRequest,
) (*Property, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if err := request.validate(); err != nil {
		return nil, err
	}

	property := &Property{
		OwnerID:      user.ID,
		Name:         request.Name,
		Address:      request.Address,
		City:         request.City,
		PropertyType: request.PropertyType,
		Bedrooms:     request.Bedrooms,
		Bathrooms:    request.Bathrooms,
		Notes:        request.Notes,
	}
	if err := c.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	log.Info("Property created", "propertyID", property.ID, "ownerID", user.ID)
	return property, nil
}

func (c *PropertyController) List(ctx context.Context, user *User) ([]Property, error) {
	return c.propertyRepo.ListByOwner(ctx, user.ID)
}
