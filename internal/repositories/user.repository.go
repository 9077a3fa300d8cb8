package repositories

import (
	"context"
	"errors"

	"cleanhub/internal/constants"
	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetFresh(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	UpdateStreak(ctx context.Context, id uuid.UUID, hasStreak bool) error
	UpdateReviewStats(ctx context.Context, id uuid.UUID, stats ReviewStats) error
	ClearCache(ctx context.Context, id uuid.UUID)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

// GetByID serves from the user cache when possible. Use GetFresh when the
// balance must be current.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found := r.getCacheByID(ctx, id, &user); found {
		return &user, nil
	}

	fresh, err := r.GetFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.addUserToCache(ctx, fresh); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return fresh, nil
}

func (r *userRepository) GetFresh(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetFresh")

	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Persistence(log.Err("failed to get user by id", err, "id", id))
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return types.Persistence(log.Err("failed to create user", err, "email", user.Email))
	}

	return nil
}

// Update saves profile fields. The balance column is owned by the ledger and
// is never written here.
func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Model(user).Select("*").Omit("balance", "created_at", "deleted_at").Updates(user).Error; err != nil {
		return types.Persistence(log.Err("failed to update user", err, "userID", user.ID))
	}

	r.ClearCache(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdateStreak(ctx context.Context, id uuid.UUID, hasStreak bool) error {
	log := r.log.Function("UpdateStreak")

	result := r.getDB(ctx).Model(&User{}).Where("id = ?", id).Update("has_a_streak", hasStreak)
	if result.Error != nil {
		return types.Persistence(log.Err("failed to update streak flag", result.Error, "userID", id))
	}
	if result.RowsAffected == 0 {
		return types.ErrNotFound
	}

	r.ClearCache(ctx, id)
	return nil
}

func (r *userRepository) UpdateReviewStats(ctx context.Context, id uuid.UUID, stats ReviewStats) error {
	log := r.log.Function("UpdateReviewStats")

	result := r.getDB(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"number_of_reviews": stats.NumberOfReviews,
		"average_rating":    stats.AverageRating,
	})
	if result.Error != nil {
		return types.Persistence(log.Err("failed to update review stats", result.Error, "userID", id))
	}
	if result.RowsAffected == 0 {
		return types.ErrNotFound
	}

	r.ClearCache(ctx, id)
	return nil
}

func (r *userRepository) ClearCache(ctx context.Context, id uuid.UUID) {
	if r.db.Cache.User == nil {
		return
	}

	if err := database.NewCacheBuilder(r.db.Cache.User, id).
		WithHash(constants.UserCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("ClearCache").Warn("failed to clear user cache", "userID", id, "error", err)
	}
}

func (r *userRepository) getCacheByID(ctx context.Context, id uuid.UUID, user *User) bool {
	if r.db.Cache.User == nil {
		return false
	}

	found, err := database.NewCacheBuilder(r.db.Cache.User, id).
		WithHash(constants.UserCachePrefix).
		WithContext(ctx).
		Get(user)
	if err != nil {
		r.log.Function("getCacheByID").Warn("failed to read user cache", "userID", id, "error", err)
		return false
	}

	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) error {
	if r.db.Cache.User == nil {
		return nil
	}

	return database.NewCacheBuilder(r.db.Cache.User, user.ID).
		WithHash(constants.UserCachePrefix).
		WithStruct(user).
		WithTTL(constants.UserCacheExpiry).
		WithContext(ctx).
		Set()
}
