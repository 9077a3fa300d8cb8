package services

import (
	"cleanhub/config"
	"cleanhub/internal/database"
	"cleanhub/internal/events"
	"cleanhub/internal/repositories"
)

type Service struct {
	Transaction  *TransactionService
	Ledger       *LedgerService
	Notification *NotificationService
	Settlement   *SettlementService
	Token        *TokenService
	Scheduler    *SchedulerService
}

func New(
	db database.DB,
	config config.Config,
	repos repositories.Repository,
	publisher events.Publisher,
) Service {
	transactionService := NewTransactionService(db)
	ledgerService := NewLedgerService(transactionService, repos)

	var mailer Mailer
	if sendGrid := NewSendGridMailer(config); sendGrid != nil {
		mailer = sendGrid
	}
	notificationService := NewNotificationService(
		repos,
		publisher,
		mailer,
		config.NotificationBufferSize,
	)

	return Service{
		Transaction:  transactionService,
		Ledger:       ledgerService,
		Notification: notificationService,
		Settlement:   NewSettlementService(repos.CleaningService, ledgerService, notificationService),
		Token:        NewTokenService(config),
		Scheduler:    NewSchedulerService(),
	}
}
