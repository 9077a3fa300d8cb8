package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cleanhub/internal/events"
	"cleanhub/internal/models"
	"cleanhub/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const notificationDeliveryTimeout = 10 * time.Second

type NotificationInput struct {
	Title   string
	Message string
	Type    models.NotificationType
	Link    string
	Data    map[string]any
}

// Notifier accepts notifications without ever blocking or failing the caller.
type Notifier interface {
	Push(ctx context.Context, userID uuid.UUID, input NotificationInput)
}

type outboxItem struct {
	userID  uuid.UUID
	input   NotificationInput
	traceID string
}

// NotificationService is a buffered outbox. One consumer goroutine stores each
// notification, publishes it on the event bus and optionally emails it.
type NotificationService struct {
	repo      repositories.NotificationRepository
	users     repositories.UserRepository
	publisher events.Publisher
	mailer    Mailer
	queue     chan outboxItem
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	log       logger.Logger
}

func NewNotificationService(
	repos repositories.Repository,
	publisher events.Publisher,
	mailer Mailer,
	bufferSize int,
) *NotificationService {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	s := &NotificationService{
		repo:      repos.Notification,
		users:     repos.User,
		publisher: publisher,
		mailer:    mailer,
		queue:     make(chan outboxItem, bufferSize),
		done:      make(chan struct{}),
		log:       logger.New("NotificationService"),
	}

	go s.run()
	return s
}

func (s *NotificationService) Push(ctx context.Context, userID uuid.UUID, input NotificationInput) {
	log := s.log.TraceFromContext(ctx).Function("Push")

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		log.Warn("notification dropped after shutdown", "userID", userID, "title", input.Title)
		return
	}

	item := outboxItem{userID: userID, input: normalizeNotification(input), traceID: logger.TraceIDFromContext(ctx)}
	select {
	case s.queue <- item:
	default:
		log.Warn("notification outbox full, dropping", "userID", userID, "title", input.Title)
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (s *NotificationService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
}

func (s *NotificationService) run() {
	defer close(s.done)
	for item := range s.queue {
		s.deliver(item)
	}
}

func (s *NotificationService) deliver(item outboxItem) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationDeliveryTimeout)
	defer cancel()
	if item.traceID != "" {
		ctx = logger.ContextWithTraceID(ctx, item.traceID)
	}
	log := s.log.TraceFromContext(ctx).Function("deliver")

	notification := &models.Notification{
		UserID:  item.userID,
		Title:   item.input.Title,
		Message: item.input.Message,
		Type:    item.input.Type,
		Link:    item.input.Link,
	}
	if len(item.input.Data) > 0 {
		if data, err := json.Marshal(item.input.Data); err == nil {
			notification.Data = datatypes.JSON(data)
		}
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		log.Er("failed to store notification", err, "userID", item.userID)
	}

	if s.publisher != nil {
		userID := item.userID
		if err := s.publisher.Publish(events.NOTIFICATIONS_CHANNEL, events.Event{
			Type:   events.NOTIFICATION,
			UserID: &userID,
			Data: map[string]any{
				"id":      notification.ID,
				"title":   notification.Title,
				"message": notification.Message,
				"type":    notification.Type,
				"link":    notification.Link,
			},
		}); err != nil {
			log.Er("failed to publish notification", err, "userID", item.userID)
		}
	}

	if s.mailer != nil && emailWorthy(notification.Type) {
		s.email(ctx, log, notification)
	}
}

func (s *NotificationService) email(ctx context.Context, log logger.Logger, notification *models.Notification) {
	user, err := s.users.GetByID(ctx, notification.UserID)
	if err != nil {
		log.Er("failed to load notification recipient", err, "userID", notification.UserID)
		return
	}
	if user.Email == nil || *user.Email == "" {
		return
	}

	if err := s.mailer.Send(ctx, *user.Email, user.DisplayName, notification.Title, notification.Message); err != nil {
		log.Er("failed to email notification", err, "userID", notification.UserID)
	}
}

func emailWorthy(notificationType models.NotificationType) bool {
	switch notificationType {
	case models.NotificationSuccess, models.NotificationWarning, models.NotificationError:
		return true
	}
	return false
}

func normalizeNotification(input NotificationInput) NotificationInput {
	if input.Type == "" {
		input.Type = models.NotificationInfo
	}
	input.Title = truncate(input.Title, models.MaxNotificationTitleLength)
	input.Message = truncate(input.Message, models.MaxNotificationMessageLength)
	input.Link = truncate(input.Link, models.MaxNotificationLinkLength)
	return input
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
