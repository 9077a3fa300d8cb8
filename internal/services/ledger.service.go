package services

import (
	"context"
	"errors"

	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger moves money between user balances. Every movement is identified by
// an event key and is applied at most once; replaying a key returns the entry
// recorded the first time.
type Ledger interface {
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, eventKey string, serviceID *uuid.UUID) (*models.LedgerEntry, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, eventKey string, serviceID *uuid.UUID) (*models.LedgerEntry, error)
	Refund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, eventKey string, serviceID *uuid.UUID) (*models.LedgerEntry, error)
	// Deposit credits a top-up and reports whether this call recorded it.
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, eventKey string, description string) (*models.LedgerEntry, bool, error)
	HasEntry(ctx context.Context, eventKey string) (bool, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type LedgerService struct {
	transactor Transactor
	ledger     repositories.LedgerRepository
	users      repositories.UserRepository
	log        logger.Logger
}

func NewLedgerService(transactor Transactor, repos repositories.Repository) *LedgerService {
	return &LedgerService{
		transactor: transactor,
		ledger:     repos.Ledger,
		users:      repos.User,
		log:        logger.New("LedgerService"),
	}
}

func (s *LedgerService) Debit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	eventKey string,
	serviceID *uuid.UUID,
) (*models.LedgerEntry, error) {
	entry, _, err := s.apply(ctx, models.LedgerDebit, userID, amount, eventKey, serviceID, "")
	return entry, err
}

func (s *LedgerService) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	eventKey string,
	serviceID *uuid.UUID,
) (*models.LedgerEntry, error) {
	entry, _, err := s.apply(ctx, models.LedgerCredit, userID, amount, eventKey, serviceID, "")
	return entry, err
}

func (s *LedgerService) Refund(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	eventKey string,
	serviceID *uuid.UUID,
) (*models.LedgerEntry, error) {
	entry, _, err := s.apply(ctx, models.LedgerRefund, userID, amount, eventKey, serviceID, "")
	return entry, err
}

func (s *LedgerService) Deposit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	eventKey string,
	description string,
) (*models.LedgerEntry, bool, error) {
	return s.apply(ctx, models.LedgerCredit, userID, amount, eventKey, nil, description)
}

func (s *LedgerService) HasEntry(ctx context.Context, eventKey string) (bool, error) {
	entry, err := s.ledger.FindByEventKey(ctx, eventKey)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *LedgerService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	return s.ledger.ListByUser(ctx, userID, limit)
}

func (s *LedgerService) apply(
	ctx context.Context,
	kind models.LedgerEntryKind,
	userID uuid.UUID,
	amount decimal.Decimal,
	eventKey string,
	serviceID *uuid.UUID,
	description string,
) (*models.LedgerEntry, bool, error) {
	log := s.log.Function("apply")

	if !amount.IsPositive() {
		return nil, false, types.Validationf("%s amount must be positive", kind)
	}
	if eventKey == "" {
		return nil, false, types.Validationf("%s requires an event key", kind)
	}
	amount = amount.Round(2)

	var result *models.LedgerEntry
	recorded := false
	err := s.transactor.Execute(ctx, func(ctx context.Context, _ *gorm.DB) error {
		existing, err := s.ledger.FindByEventKey(ctx, eventKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if kind.IsIncrease() {
			ok, err := s.ledger.IncreaseBalance(ctx, userID, amount)
			if err != nil {
				return err
			}
			if !ok {
				return types.ErrNotFound
			}
		} else {
			ok, err := s.ledger.DecreaseBalance(ctx, userID, amount)
			if err != nil {
				return err
			}
			if !ok {
				current, err := s.ledger.GetBalance(ctx, userID)
				if err != nil {
					return err
				}
				return &types.InsufficientFundsError{Required: amount, Current: current}
			}
		}

		balance, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return err
		}

		entry := &models.LedgerEntry{
			UserID:       userID,
			ServiceID:    serviceID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: balance,
			EventKey:     eventKey,
			Description:  description,
		}
		if err := s.ledger.Create(ctx, entry); err != nil {
			return err
		}

		result = entry
		recorded = true
		return nil
	})
	if err != nil {
		// A concurrent writer may have committed the same key first, in which
		// case our insert hit the unique index and rolled back.
		if errors.Is(err, types.ErrPersistence) {
			if existing, findErr := s.ledger.FindByEventKey(ctx, eventKey); findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		if !errors.Is(err, types.ErrInsufficientFunds) && !errors.Is(err, types.ErrNotFound) {
			log.Er("ledger movement failed", err, "kind", kind, "userID", userID, "eventKey", eventKey)
		}
		return nil, false, err
	}

	if recorded {
		s.users.ClearCache(ctx, userID)
	}
	return result, recorded, nil
}
