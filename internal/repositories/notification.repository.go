package repositories

import (
	"context"

	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DEFAULT_NOTIFICATION_PAGE_SIZE = 50

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewNotificationRepository(db database.DB) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

func (r *notificationRepository) Create(ctx context.Context, notification *Notification) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(notification).Error; err != nil {
		return types.Persistence(log.Err("failed to store notification", err, "userID", notification.UserID))
	}

	return nil
}

func (r *notificationRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]Notification, error) {
	log := r.log.Function("ListByUser")

	if limit <= 0 {
		limit = DEFAULT_NOTIFICATION_PAGE_SIZE
	}

	query := r.getDB(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list notifications", err, "userID", userID))
	}

	return notifications, nil
}

// MarkRead flags the user's notifications as read. An empty id list marks all.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	log := r.log.Function("MarkRead")

	query := r.getDB(ctx).Model(&Notification{}).Where("user_id = ? AND is_read = ?", userID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	result := query.Update("is_read", true)
	if result.Error != nil {
		return 0, types.Persistence(log.Err("failed to mark notifications read", result.Error, "userID", userID))
	}

	return result.RowsAffected, nil
}
