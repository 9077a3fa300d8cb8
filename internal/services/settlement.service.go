package services

import (
	"context"
	"fmt"
	"time"

	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
)

// Settler moves the money attached to a service after its state has been
// committed.
type Settler interface {
	Payout(ctx context.Context, service *models.CleaningService) (decimal.Decimal, error)
	Refund(ctx context.Context, service *models.CleaningService) error
	Reconcile(ctx context.Context, service *models.CleaningService) error
}

type SettlementService struct {
	services repositories.CleaningServiceRepository
	ledger   Ledger
	notifier Notifier
	now      func() time.Time
	log      logger.Logger
}

func NewSettlementService(
	services repositories.CleaningServiceRepository,
	ledger Ledger,
	notifier Notifier,
) *SettlementService {
	return &SettlementService{
		services: services,
		ledger:   ledger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.New("SettlementService"),
	}
}

// Payout claims the unpaid payments of a completed service for its cleaner
// and credits them. It returns the amount credited by this call, which is zero
// when another caller already holds the claim. A credit failure after a won
// claim is logged and left for Reconcile.
func (s *SettlementService) Payout(ctx context.Context, service *models.CleaningService) (decimal.Decimal, error) {
	log := s.log.TraceFromContext(ctx).Function("Payout")

	if service.PaidToCleaner {
		return decimal.Zero, nil
	}
	if service.CleanerID == nil {
		return decimal.Zero, fmt.Errorf("%w: service %s has no cleaner to pay", types.ErrValidation, service.ID)
	}

	amount, settled := service.UnpaidPayments(s.now())
	claimed, err := s.services.MarkPaidToCleaner(ctx, service.ID, amount, settled)
	if err != nil {
		return decimal.Zero, err
	}
	if !claimed {
		log.Info("payout already claimed", "serviceID", service.ID)
		return decimal.Zero, nil
	}

	service.PaidToCleaner = true
	service.PayoutAmount = amount
	service.Payments = settled
	service.Version++

	if !amount.IsPositive() {
		return decimal.Zero, nil
	}

	if err := s.creditPayout(ctx, service); err != nil {
		log.Er("payout credit failed, left for reconciliation", err, "serviceID", service.ID)
		return decimal.Zero, nil
	}

	return amount, nil
}

// Refund returns service.RefundAmount to the requester. Every refund of a
// service shares one event key, so repeating it is harmless.
func (s *SettlementService) Refund(ctx context.Context, service *models.CleaningService) error {
	if !service.RefundAmount.IsPositive() {
		return nil
	}

	key := models.RefundKey(service.ID)
	applied, err := s.ledger.HasEntry(ctx, key)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	serviceID := service.ID
	if _, err := s.ledger.Refund(ctx, service.RequestingUserID, service.RefundAmount, key, &serviceID); err != nil {
		return s.log.TraceFromContext(ctx).Function("Refund").
			Err("refund failed", err, "serviceID", service.ID)
	}

	s.notifier.Push(ctx, service.RequestingUserID, NotificationInput{
		Title:   "Refund Issued",
		Message: fmt.Sprintf("%s has been returned to your balance.", service.RefundAmount.StringFixed(2)),
		Type:    models.NotificationSuccess,
		Data:    map[string]any{"serviceId": service.ID, "amount": service.RefundAmount},
	})
	return nil
}

// Reconcile replays whichever money movement the row records but the ledger
// lacks.
func (s *SettlementService) Reconcile(ctx context.Context, service *models.CleaningService) error {
	switch service.ServiceStatus {
	case models.ServiceStatusCompleted:
		if !service.PaidToCleaner {
			_, err := s.Payout(ctx, service)
			return err
		}
		if service.PayoutAmount.IsPositive() {
			return s.creditPayout(ctx, service)
		}
	case models.ServiceStatusCancelled, models.ServiceStatusExpired:
		return s.Refund(ctx, service)
	}
	return nil
}

func (s *SettlementService) creditPayout(ctx context.Context, service *models.CleaningService) error {
	if service.CleanerID == nil {
		return fmt.Errorf("%w: service %s has no cleaner to pay", types.ErrValidation, service.ID)
	}

	key := models.PayoutKey(service.ID)
	applied, err := s.ledger.HasEntry(ctx, key)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	serviceID := service.ID
	if _, err := s.ledger.Credit(ctx, *service.CleanerID, service.PayoutAmount, key, &serviceID); err != nil {
		return err
	}

	s.notifier.Push(ctx, *service.CleanerID, NotificationInput{
		Title:   "Payment Received",
		Message: fmt.Sprintf("You have been paid %s for a completed service.", service.PayoutAmount.StringFixed(2)),
		Type:    models.NotificationSuccess,
		Data:    map[string]any{"serviceId": service.ID, "amount": service.PayoutAmount},
	})
	return nil
}
