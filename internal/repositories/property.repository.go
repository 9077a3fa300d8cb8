package repositories

import (
	"context"
	"errors"

	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error)
}

type propertyRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPropertyRepository(db database.DB) PropertyRepository {
	return &propertyRepository{
		db:  db,
		log: logger.New("propertyRepository"),
	}
}

func (r *propertyRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

func (r *propertyRepository) Create(ctx context.Context, property *Property) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(property).Error; err != nil {
		return types.Persistence(log.Err("failed to create property", err, "ownerID", property.OwnerID))
	}

	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	log := r.log.Function("GetByID")

	var property Property
	if err := r.getDB(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Persistence(log.Err("failed to get property", err, "propertyID", id))
	}

	return &property, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error) {
	log := r.log.Function("ListByOwner")

	var properties []Property
	if err := r.getDB(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list properties", err, "ownerID", ownerID))
	}

	return properties, nil
}
