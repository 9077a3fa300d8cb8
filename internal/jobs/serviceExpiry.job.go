package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

// ServiceExpiryJob expires services nobody finished before their deadline and
// returns the full fee to the requester.
type ServiceExpiryJob struct {
	services  repositories.CleaningServiceRepository
	settler   services.Settler
	notifier  services.Notifier
	schedule  services.Schedule
	batchSize int
	now       func() time.Time
	log       logger.Logger
}

func NewServiceExpiryJob(
	cleaningServices repositories.CleaningServiceRepository,
	settler services.Settler,
	notifier services.Notifier,
	schedule services.Schedule,
) *ServiceExpiryJob {
	log := logger.New("serviceExpiryJob")
	log.Info("Creating new service expiry job", "schedule", schedule)

	return &ServiceExpiryJob{
		services:  cleaningServices,
		settler:   settler,
		notifier:  notifier,
		schedule:  schedule,
		batchSize: repositories.DEFAULT_JOB_BATCH_SIZE,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

func (j *ServiceExpiryJob) Name() string {
	return "ServiceExpiry"
}

func (j *ServiceExpiryJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *ServiceExpiryJob) Execute(ctx context.Context) error {
	log := j.log.TraceFromContext(ctx).Function("Execute")

	due, err := j.services.ListExpired(ctx, j.now(), j.batchSize)
	if err != nil {
		return log.Err("failed to list expired services", err)
	}
	if len(due) == 0 {
		return nil
	}

	expired, failed := 0, 0
	for i := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ok, err := j.expire(ctx, &due[i])
		if err != nil {
			failed++
			log.Er("failed to expire service", err, "serviceID", due[i].ID)
			continue
		}
		if ok {
			expired++
		}
	}

	log.Info("Service expiry run finished", "due", len(due), "expired", expired, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d services could not be expired", failed, len(due))
	}
	return nil
}

// expire reports false when the service moved on before the write landed.
func (j *ServiceExpiryJob) expire(ctx context.Context, service *models.CleaningService) (bool, error) {
	if !models.CanTransition(service.ServiceStatus, models.ServiceStatusExpired) {
		return false, nil
	}

	next := service.Clone()
	next.ServiceStatus = models.ServiceStatusExpired
	next.SettleCancellation(service.ServiceFee)

	err := j.services.Update(ctx, next)
	if errors.Is(err, types.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	j.notifier.Push(ctx, next.RequestingUserID, services.NotificationInput{
		Title:   "Service Expired",
		Message: "Your cleaning service expired before it was completed.",
		Type:    models.NotificationWarning,
		Link:    "/cleaning-services/" + next.ID.String(),
		Data:    map[string]any{"serviceId": next.ID},
	})

	if err := j.settler.Refund(ctx, next); err != nil {
		j.log.Er("expiry refund failed, left for reconciliation", err, "serviceID", next.ID)
	}
	return true, nil
}
