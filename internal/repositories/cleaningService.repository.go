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
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DEFAULT_JOB_BATCH_SIZE = 100
	// A completed service still unclaimed after this long missed its payout.
	STALE_PAYOUT_AFTER = 10 * time.Minute
)

type CleaningServiceRepository interface {
	Create(ctx context.Context, service *CleaningService) error
	GetByID(ctx context.Context, id uuid.UUID) (*CleaningService, error)
	Update(ctx context.Context, service *CleaningService) error
	MarkPaidToCleaner(
		ctx context.Context,
		id uuid.UUID,
		amount decimal.Decimal,
		payments []Payment,
	) (bool, error)
	Delete(ctx context.Context, service *CleaningService) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]CleaningService, error)
	ListForUserByStatus(ctx context.Context, userID uuid.UUID, status ServiceStatus) ([]CleaningService, error)
	ListPending(ctx context.Context) ([]CleaningService, error)
	ListRatedForCleanerBetween(
		ctx context.Context,
		cleanerID uuid.UUID,
		start, end time.Time,
	) ([]CleaningService, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]CleaningService, error)
	ListSettlementCandidates(ctx context.Context, now time.Time, limit int) ([]CleaningService, error)
}

type cleaningServiceRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCleaningServiceRepository(db database.DB) CleaningServiceRepository {
	return &cleaningServiceRepository{
		db:  db,
		log: logger.New("cleaningServiceRepository"),
	}
}

func (r *cleaningServiceRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

func (r *cleaningServiceRepository) Create(ctx context.Context, service *CleaningService) error {
	log := r.log.Function("Create")

	if service.Version == 0 {
		service.Version = 1
	}

	if err := r.getDB(ctx).Create(service).Error; err != nil {
		return types.Persistence(log.Err("failed to create cleaning service", err, "serviceID", service.ID))
	}

	return nil
}

func (r *cleaningServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*CleaningService, error) {
	log := r.log.Function("GetByID")

	var service CleaningService
	if err := r.getDB(ctx).First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, types.Persistence(log.Err("failed to get cleaning service", err, "serviceID", id))
	}

	return &service, nil
}

// Update writes every column if the row still carries service.Version, and
// bumps the version. A lost race returns types.ErrConflict and leaves service
// untouched.
func (r *cleaningServiceRepository) Update(ctx context.Context, service *CleaningService) error {
	log := r.log.Function("Update")

	expected := service.Version
	service.Version = expected + 1

	result := r.getDB(ctx).
		Model(service).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(service)
	if result.Error != nil {
		service.Version = expected
		return types.Persistence(log.Err("failed to update cleaning service", result.Error, "serviceID", service.ID))
	}
	if result.RowsAffected == 0 {
		service.Version = expected
		return fmt.Errorf("%w: service %s changed since version %d", types.ErrConflict, service.ID, expected)
	}

	return nil
}

// MarkPaidToCleaner claims the payout of a completed service. Only one caller
// ever sees true for a given service.
func (r *cleaningServiceRepository) MarkPaidToCleaner(
	ctx context.Context,
	id uuid.UUID,
	amount decimal.Decimal,
	payments []Payment,
) (bool, error) {
	log := r.log.Function("MarkPaidToCleaner")

	result := r.getDB(ctx).
		Model(&CleaningService{}).
		Where("id = ? AND paid_to_cleaner = ? AND service_status = ?", id, false, ServiceStatusCompleted).
		Updates(map[string]any{
			"paid_to_cleaner": true,
			"payout_amount":   amount,
			"payments":        datatypes.NewJSONSlice(payments),
			"version":         gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, types.Persistence(log.Err("failed to claim payout", result.Error, "serviceID", id))
	}

	return result.RowsAffected == 1, nil
}

// Delete soft-deletes the row if it is still at service.Version.
func (r *cleaningServiceRepository) Delete(ctx context.Context, service *CleaningService) error {
	log := r.log.Function("Delete")

	result := r.getDB(ctx).Where("version = ?", service.Version).Delete(service)
	if result.Error != nil {
		return types.Persistence(log.Err("failed to delete cleaning service", result.Error, "serviceID", service.ID))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: service %s changed since version %d", types.ErrConflict, service.ID, service.Version)
	}

	return nil
}

func (r *cleaningServiceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]CleaningService, error) {
	log := r.log.Function("ListForUser")

	teamMember := fmt.Sprintf(`[{"cleanerId":%q}]`, userID.String())

	var services []CleaningService
	if err := r.getDB(ctx).
		Where("requesting_user_id = ? OR cleaner_id = ? OR team @> ?", userID, userID, teamMember).
		Order("created_at DESC").
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list cleaning services", err, "userID", userID))
	}

	return services, nil
}

func (r *cleaningServiceRepository) ListForUserByStatus(
	ctx context.Context,
	userID uuid.UUID,
	status ServiceStatus,
) ([]CleaningService, error) {
	log := r.log.Function("ListForUserByStatus")

	teamMember := fmt.Sprintf(`[{"cleanerId":%q}]`, userID.String())

	var services []CleaningService
	if err := r.getDB(ctx).
		Where("service_status = ?", status).
		Where("requesting_user_id = ? OR cleaner_id = ? OR team @> ?", userID, userID, teamMember).
		Order("created_at DESC").
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list cleaning services", err, "userID", userID, "status", status))
	}

	return services, nil
}

func (r *cleaningServiceRepository) ListPending(ctx context.Context) ([]CleaningService, error) {
	log := r.log.Function("ListPending")

	var services []CleaningService
	if err := r.getDB(ctx).
		Where("service_status = ? AND cleaner_id IS NULL", ServiceStatusPending).
		Order("created_at ASC").
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list pending services", err))
	}

	return services, nil
}

func (r *cleaningServiceRepository) ListRatedForCleanerBetween(
	ctx context.Context,
	cleanerID uuid.UUID,
	start, end time.Time,
) ([]CleaningService, error) {
	log := r.log.Function("ListRatedForCleanerBetween")

	var services []CleaningService
	if err := r.getDB(ctx).
		Where("cleaner_id = ? AND service_status = ? AND rating_score IS NOT NULL", cleanerID, ServiceStatusCompleted).
		Where("updated_at >= ? AND updated_at < ?", start, end).
		Order("updated_at ASC").
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list rated services", err, "cleanerID", cleanerID))
	}

	return services, nil
}

func (r *cleaningServiceRepository) ListExpired(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]CleaningService, error) {
	log := r.log.Function("ListExpired")

	if limit <= 0 {
		limit = DEFAULT_JOB_BATCH_SIZE
	}

	var services []CleaningService
	if err := r.getDB(ctx).
		Where("service_status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]ServiceStatus{ServiceStatusPending, ServiceStatusAssigned}, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list expired services", err))
	}

	return services, nil
}

// ListSettlementCandidates finds services whose money movement is recorded on
// the row but missing from the ledger, plus completed services that never
// claimed their payout.
func (r *cleaningServiceRepository) ListSettlementCandidates(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]CleaningService, error) {
	log := r.log.Function("ListSettlementCandidates")

	if limit <= 0 {
		limit = DEFAULT_JOB_BATCH_SIZE
	}

	var services []CleaningService
	if err := r.getDB(ctx).
		Where(`(service_status = ? AND paid_to_cleaner = false AND updated_at < ?)
			OR (service_status = ? AND paid_to_cleaner = true AND payout_amount > 0
				AND NOT EXISTS (SELECT 1 FROM ledger_entries le WHERE le.event_key = 'payout:' || cleaning_services.id::text))
			OR (service_status IN ? AND refund_amount > 0
				AND NOT EXISTS (SELECT 1 FROM ledger_entries le WHERE le.event_key = 'refund:' || cleaning_services.id::text))`,
			ServiceStatusCompleted, now.Add(-STALE_PAYOUT_AFTER),
			ServiceStatusCompleted,
			[]ServiceStatus{ServiceStatusCancelled, ServiceStatusExpired},
		).
		Order("updated_at ASC").
		Limit(limit).
		Find(&services).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list settlement candidates", err))
	}

	return services, nil
}
