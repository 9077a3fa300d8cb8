package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// markRecipientRead rewrites one user's unread recipient entries in place so
// two recipients reading at once cannot overwrite each other.
const markRecipientRead = `(
	SELECT jsonb_agg(
		CASE WHEN r->>'userId' = ? AND NOT (r->>'read')::boolean
			THEN r || jsonb_build_object('read', true, 'readAt', ?::timestamptz)
			ELSE r
		END
	)
	FROM jsonb_array_elements(recipients) AS r
)`

type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]Message, error)
	MarkRead(ctx context.Context, serviceID, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, message *Message) error
}

type messageRepository struct {
	db  database.DB
	log logger.Logger
}

func NewMessageRepository(db database.DB) MessageRepository {
	return &messageRepository{
		db:  db,
		log: logger.New("messageRepository"),
	}
}

func (r *messageRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

func (r *messageRepository) Create(ctx context.Context, message *Message) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(message).Error; err != nil {
		return types.Persistence(log.Err("failed to create message", err, "serviceID", message.ServiceID))
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	log := r.log.Function("GetByID")

	var message Message
	if err := r.getDB(ctx).First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Persistence(log.Err("failed to get message", err, "messageID", id))
	}

	return &message, nil
}

func (r *messageRepository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]Message, error) {
	log := r.log.Function("ListByService")

	var messages []Message
	if err := r.getDB(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list messages", err, "serviceID", serviceID))
	}

	return messages, nil
}

// MarkRead flags every unread entry the user holds on the service's messages.
func (r *messageRepository) MarkRead(ctx context.Context, serviceID, userID uuid.UUID, at time.Time) (int64, error) {
	log := r.log.Function("MarkRead")

	unread := fmt.Sprintf(`[{"userId":%q,"read":false}]`, userID.String())

	result := r.getDB(ctx).
		Model(&Message{}).
		Where("service_id = ? AND recipients @> ?", serviceID, unread).
		Update("recipients", gorm.Expr(markRecipientRead, userID.String(), at))
	if result.Error != nil {
		return 0, types.Persistence(log.Err("failed to mark messages read", result.Error, "serviceID", serviceID))
	}

	return result.RowsAffected, nil
}

func (r *messageRepository) Delete(ctx context.Context, message *Message) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(message).Error; err != nil {
		return types.Persistence(log.Err("failed to delete message", err, "messageID", message.ID))
	}

	return nil
}
