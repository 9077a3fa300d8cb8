package jobs

import (
	"context"
	"fmt"
	"time"

	"cleanhub/internal/repositories"
	"cleanhub/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// SettlementReconciliationJob replays payouts and refunds that a service row
// records but the ledger is missing.
type SettlementReconciliationJob struct {
	services  repositories.CleaningServiceRepository
	settler   services.Settler
	schedule  services.Schedule
	batchSize int
	now       func() time.Time
	log       logger.Logger
}

func NewSettlementReconciliationJob(
	cleaningServices repositories.CleaningServiceRepository,
	settler services.Settler,
	schedule services.Schedule,
) *SettlementReconciliationJob {
	log := logger.New("settlementReconciliationJob")
	log.Info("Creating new settlement reconciliation job", "schedule", schedule)

	return &SettlementReconciliationJob{
		services:  cleaningServices,
		settler:   settler,
		schedule:  schedule,
		batchSize: repositories.DEFAULT_JOB_BATCH_SIZE,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

func (j *SettlementReconciliationJob) Name() string {
	return "SettlementReconciliation"
}

func (j *SettlementReconciliationJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *SettlementReconciliationJob) Execute(ctx context.Context) error {
	log := j.log.TraceFromContext(ctx).Function("Execute")

	candidates, err := j.services.ListSettlementCandidates(ctx, j.now(), j.batchSize)
	if err != nil {
		return log.Err("failed to list settlement candidates", err)
	}

	failed := 0
	for i := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.settler.Reconcile(ctx, &candidates[i]); err != nil {
			failed++
			log.Er("reconciliation failed", err, "serviceID", candidates[i].ID)
		}
	}

	if len(candidates) > 0 {
		log.Info("Settlement reconciliation finished", "candidates", len(candidates), "failed", failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d services could not be reconciled", failed, len(candidates))
	}
	return nil
}
