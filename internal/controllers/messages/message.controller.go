package messageController

import (
	"context"
	"fmt"
	"strings"
	"time"

	. "cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type MessageController struct {
	serviceRepo repositories.CleaningServiceRepository
	messageRepo repositories.MessageRepository
	notifier    services.Notifier
	now         func() time.Time
	log         logger.Logger
}

type SendMessageRequest struct {
	ServiceID  string   `json:"serviceId"`
	Content    string   `json:"content"`
	Recipients []string `json:"recipients"`
}

type MessageControllerInterface interface {
	Send(ctx context.Context, user *User, request *SendMessageRequest) (*Message, error)
	ListForService(ctx context.Context, user *User, serviceID string) ([]Message, error)
	Delete(ctx context.Context, user *User, messageID string) error
}

func New(repos repositories.Repository, services services.Service) MessageControllerInterface {
	return &MessageController{
		serviceRepo: repos.CleaningService,
		messageRepo: repos.Message,
		notifier:    services.Notification,
		now:         func() time.Time { return time.Now().UTC() },
		log:         logger.New("messageController"),
	}
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, types.InvalidReferencef("%q is not a valid id", value)
	}
	return id, nil
}

func messagesLink(serviceID uuid.UUID) string {
	return fmt.Sprintf("/services/%s/messages", serviceID)
}

func (r *SendMessageRequest) validate() ([]uuid.UUID, error) {
	r.Content = strings.TrimSpace(r.Content)

	switch {
	case r.Content == "":
		return nil, types.Validationf("content is required")
	case len(r.Content) > MaxMessageContentLength:
		return nil, types.Validationf("content exceeds %d characters", MaxMessageContentLength)
	case len(r.Recipients) == 0:
		return nil, types.Validationf("at least one recipient is required")
	}

	seen := make(map[uuid.UUID]bool, len(r.Recipients))
	recipients := make([]uuid.UUID, 0, len(r.Recipients))
	for _, value := range r.Recipients {
		id, err := parseID(value)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}
	return recipients, nil
}

// Send posts a message on a service's chat. The sender and every recipient
// must take part in the service.
func (c *MessageController) Send(ctx context.Context, user *User, request *SendMessageRequest) (*Message, error) {
	log := c.log.TraceFromContext(ctx).Function("Send")

	serviceID, err := parseID(request.ServiceID)
	if err != nil {
		return nil, err
	}

	recipients, err := request.validate()
	if err != nil {
		return nil, err
	}

	service, err := c.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if !service.IsParticipant(user.ID) {
		return nil, types.Authorizationf("sender is not part of service %s", serviceID)
	}
	if !service.ChatEnabled {
		return nil, types.Validationf("chat is disabled for service %s", serviceID)
	}

	message := &Message{
		ServiceID: serviceID,
		SenderID:  user.ID,
		Content:   request.Content,
	}
	for _, recipientID := range recipients {
		if !service.IsParticipant(recipientID) {
			return nil, types.Validationf("recipient %s is not part of service %s", recipientID, serviceID)
		}
		message.Recipients = append(message.Recipients, MessageRecipient{UserID: recipientID})
	}

	if err := c.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	for _, recipient := range message.Recipients {
		if recipient.UserID == user.ID {
			continue
		}
		c.notifier.Push(ctx, recipient.UserID, services.NotificationInput{
			Title:   "New Message",
			Message: fmt.Sprintf("You have a new message from %s.", user.Name()),
			Type:    NotificationInfo,
			Link:    messagesLink(serviceID),
			Data:    map[string]any{"serviceId": serviceID, "messageId": message.ID},
		})
	}

	log.Info("Message sent", "messageID", message.ID, "serviceID", serviceID, "recipients", len(message.Recipients))
	return message, nil
}

// ListForService returns the chat in send order and marks the caller's
// entries read.
func (c *MessageController) ListForService(ctx context.Context, user *User, serviceID string) ([]Message, error) {
	log := c.log.TraceFromContext(ctx).Function("ListForService")

	id, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}

	service, err := c.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && !service.IsParticipant(user.ID) {
		return nil, types.Authorizationf("service %s is not visible to the caller", id)
	}

	messages, err := c.messageRepo.ListByService(ctx, id)
	if err != nil {
		return nil, err
	}

	now := c.now()
	unread := false
	for i := range messages {
		if messages[i].MarkReadBy(user.ID, now) {
			unread = true
		}
	}

	if unread {
		if _, err := c.messageRepo.MarkRead(ctx, id, user.ID, now); err != nil {
			log.Er("failed to mark messages read", err, "serviceID", id, "userID", user.ID)
		}
	}

	return messages, nil
}

// Delete removes a message. Only its sender may do so.
func (c *MessageController) Delete(ctx context.Context, user *User, messageID string) error {
	log := c.log.TraceFromContext(ctx).Function("Delete")

	id, err := parseID(messageID)
	if err != nil {
		return err
	}

	message, err := c.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if message.SenderID != user.ID {
		return types.Authorizationf("only the sender can delete message %s", id)
	}

	if err := c.messageRepo.Delete(ctx, message); err != nil {
		return err
	}

	for _, recipient := range message.Recipients {
		if recipient.UserID == user.ID {
			continue
		}
		c.notifier.Push(ctx, recipient.UserID, services.NotificationInput{
			Title:   "Message Deleted",
			Message: fmt.Sprintf("%s has deleted a message.", user.Name()),
			Type:    NotificationWarning,
			Link:    messagesLink(message.ServiceID),
			Data:    map[string]any{"serviceId": message.ServiceID, "messageId": message.ID},
		})
	}

	log.Info("Message deleted", "messageID", id, "serviceID", message.ServiceID)
	return nil
}
