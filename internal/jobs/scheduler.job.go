package jobs

import (
	"cleanhub/config"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
	repos repositories.Repository,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	expiryJob := NewServiceExpiryJob(
		repos.CleaningService,
		services.Settlement,
		services.Notification,
		Hourly,
	)
	if err := schedulerService.AddJob(expiryJob); err != nil {
		return log.Err("failed to register service expiry job", err)
	}
	log.Info("Registered service expiry job", "schedule", "hourly")

	reconciliationJob := NewSettlementReconciliationJob(
		repos.CleaningService,
		services.Settlement,
		Hourly,
	)
	if err := schedulerService.AddJob(reconciliationJob); err != nil {
		return log.Err("failed to register settlement reconciliation job", err)
	}
	log.Info("Registered settlement reconciliation job", "schedule", "hourly")

	return nil
}
