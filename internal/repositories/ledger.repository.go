package repositories

import (
	"context"
	"errors"
	"time"

	contextutil "cleanhub/internal/context"
	"cleanhub/internal/database"
	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DEFAULT_LEDGER_PAGE_SIZE = 50

// LedgerRepository holds the balance column and the append-only entry table.
// Callers run these inside one transaction carried on the context.
type LedgerRepository interface {
	FindByEventKey(ctx context.Context, eventKey string) (*LedgerEntry, error)
	DecreaseBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)
	IncreaseBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	Create(ctx context.Context, entry *LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error)
}

type ledgerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewLedgerRepository(db database.DB) LedgerRepository {
	return &ledgerRepository{
		db:  db,
		log: logger.New("ledgerRepository"),
	}
}

func (r *ledgerRepository) getDB(ctx context.Context) *gorm.DB {
	return contextutil.DB(ctx, r.db.SQL)
}

// FindByEventKey returns nil when the key has not been applied yet.
func (r *ledgerRepository) FindByEventKey(ctx context.Context, eventKey string) (*LedgerEntry, error) {
	log := r.log.Function("FindByEventKey")

	var entry LedgerEntry
	if err := r.getDB(ctx).Where("event_key = ?", eventKey).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, types.Persistence(log.Err("failed to look up ledger entry", err, "eventKey", eventKey))
	}

	return &entry, nil
}

// DecreaseBalance subtracts amount only if the balance covers it. It reports
// false without mutating anything when the user is missing or short.
func (r *ledgerRepository) DecreaseBalance(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (bool, error) {
	log := r.log.Function("DecreaseBalance")

	result := r.getDB(ctx).Exec(
		"UPDATE users SET balance = balance - ?, updated_at = ? WHERE id = ? AND balance >= ? AND deleted_at IS NULL",
		amount,
		time.Now().UTC(),
		userID,
		amount,
	)
	if result.Error != nil {
		return false, types.Persistence(log.Err("failed to debit balance", result.Error, "userID", userID))
	}

	return result.RowsAffected == 1, nil
}

func (r *ledgerRepository) IncreaseBalance(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (bool, error) {
	log := r.log.Function("IncreaseBalance")

	result := r.getDB(ctx).Exec(
		"UPDATE users SET balance = balance + ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		amount,
		time.Now().UTC(),
		userID,
	)
	if result.Error != nil {
		return false, types.Persistence(log.Err("failed to credit balance", result.Error, "userID", userID))
	}

	return result.RowsAffected == 1, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	log := r.log.Function("GetBalance")

	var rows []struct{ Balance decimal.Decimal }
	if err := r.getDB(ctx).
		Raw("SELECT balance FROM users WHERE id = ? AND deleted_at IS NULL", userID).
		Scan(&rows).Error; err != nil {
		return decimal.Zero, types.Persistence(log.Err("failed to read balance", err, "userID", userID))
	}
	if len(rows) == 0 {
		return decimal.Zero, types.ErrNotFound
	}

	return rows[0].Balance, nil
}

func (r *ledgerRepository) Create(ctx context.Context, entry *LedgerEntry) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(entry).Error; err != nil {
		return types.Persistence(log.Err("failed to append ledger entry", err, "eventKey", entry.EventKey))
	}

	return nil
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error) {
	log := r.log.Function("ListByUser")

	if limit <= 0 {
		limit = DEFAULT_LEDGER_PAGE_SIZE
	}

	var entries []LedgerEntry
	if err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, types.Persistence(log.Err("failed to list ledger entries", err, "userID", userID))
	}

	return entries, nil
}
