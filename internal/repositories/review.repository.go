package repositories

import (
	"context"
	"errors"
	"fmt"

	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]Review, error)
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]Review, error)
	Delete(ctx context.Context, review *Review) error
	StatsForReceiver(ctx context.Context, receiverID uuid.UUID) (ReviewStats, error)
}

type reviewRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReviewRepository(db database.DB) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: logger.New("reviewRepository"),
	}
}

func (r *reviewRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create fails with ErrConflict when the reviewer already reviewed the service.
func (r *reviewRepository) Create(ctx context.Context, review *Review) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: service %s was already reviewed by this user", types.ErrConflict, review.ServiceID)
		}
		return types.Persistence(log.Err("failed to create review", err, "serviceID", review.ServiceID))
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	log := r.log.Function("GetByID")

	var review Review
	if err := r.getDB(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Persistence(log.Err("failed to get review", err, "reviewID", id))
	}

	return &review, nil
}

func (r *reviewRepository) ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]Review, error) {
	return r.list(ctx, "receiver_id = ?", receiverID)
}

func (r *reviewRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]Review, error) {
	return r.list(ctx, "reviewer_id = ?", reviewerID)
}

func (r *reviewRepository) list(ctx context.Context, where string, userID uuid.UUID) ([]Review, error) {
	log := r.log.Function("list")

	var reviews []Review
	if err := r.getDB(ctx).Where(where, userID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list reviews", err, "userID", userID))
	}

	return reviews, nil
}

// Delete removes the row for good so the reviewer may review the service again.
func (r *reviewRepository) Delete(ctx context.Context, review *Review) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Unscoped().Delete(review).Error; err != nil {
		return types.Persistence(log.Err("failed to delete review", err, "reviewID", review.ID))
	}

	return nil
}

func (r *reviewRepository) StatsForReceiver(ctx context.Context, receiverID uuid.UUID) (ReviewStats, error) {
	log := r.log.Function("StatsForReceiver")

	var row struct {
		Count   int
		Average decimal.NullDecimal
	}
	if err := r.getDB(ctx).
		Model(&Review{}).
		Select("COUNT(*) AS count, AVG(stars) AS average").
		Where("receiver_id = ?", receiverID).
		Scan(&row).Error; err != nil {
		return ReviewStats{}, types.Persistence(log.Err("failed to aggregate reviews", err, "receiverID", receiverID))
	}

	stats := ReviewStats{NumberOfReviews: row.Count, AverageRating: decimal.Zero}
	if row.Average.Valid {
		stats.AverageRating = row.Average.Decimal.Round(2)
	}
	return stats, nil
}
