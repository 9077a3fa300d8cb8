package repositories

import (
	"cleanhub/internal/database"
)

type Repository struct {
	User            UserRepository
	Property        PropertyRepository
	CleaningService CleaningServiceRepository
	Ledger          LedgerRepository
	Notification    NotificationRepository
	StreakCache     StreakCache
	Message         MessageRepository
	Review          ReviewRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:            NewUserRepository(db),
		Property:        NewPropertyRepository(db),
		CleaningService: NewCleaningServiceRepository(db),
		Ledger:          NewLedgerRepository(db),
		Notification:    NewNotificationRepository(db),
		StreakCache:     NewStreakCache(db),
		Message:         NewMessageRepository(db),
		Review:          NewReviewRepository(db),
	}
}
