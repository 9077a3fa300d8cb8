package websockets

import (
	"context"
	"time"

	"cleanhub/config"
	"cleanhub/internal/events"
	"cleanhub/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING          = "ping"
	MESSAGE_TYPE_PONG          = "pong"
	MESSAGE_TYPE_MESSAGE       = "message"
	MESSAGE_TYPE_ERROR         = "error"
	MESSAGE_TYPE_AUTH_REQUEST  = "auth_request"
	MESSAGE_TYPE_AUTH_RESPONSE = "auth_response"
	MESSAGE_TYPE_AUTH_SUCCESS  = "auth_success"
	MESSAGE_TYPE_AUTH_FAILURE  = "auth_failure"
	MESSAGE_TYPE_NOTIFICATION  = "notification"
	PING_INTERVAL              = 30 * time.Second
	PONG_TIMEOUT               = 60 * time.Second
	WRITE_TIMEOUT              = 10 * time.Second
	MAX_MESSAGE_SIZE           = 64 * 1024
	SEND_CHANNEL_SIZE          = 64
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (uuid.UUID, error)
}

// Manager pushes notifications to the sockets of the user they belong to.
// Clients must authenticate with a bearer token before they receive anything.
type Manager struct {
	hub      *Hub
	config   config.Config
	log      logger.Logger
	eventBus Subscriber
	tokens   TokenValidator
	userRepo repositories.UserRepository
}

func newManager(
	eventBus Subscriber,
	config config.Config,
	tokens TokenValidator,
	userRepo repositories.UserRepository,
) *Manager {
	return &Manager{
		hub: &Hub{
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		config:   config,
		log:      logger.New("websockets"),
		eventBus: eventBus,
		tokens:   tokens,
		userRepo: userRepo,
	}
}

func New(
	eventBus Subscriber,
	config config.Config,
	tokens TokenValidator,
	userRepo repositories.UserRepository,
) (*Manager, error) {
	manager := newManager(eventBus, config, tokens, userRepo)

	manager.log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if err := manager.eventBus.Subscribe(
		events.NOTIFICATIONS_CHANNEL,
		manager.handleNotificationEvent,
	); err != nil {
		return nil, manager.log.Function("New").Err("failed to subscribe to notifications", err)
	}

	return manager, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")
	clientID := uuid.New().String()

	client := &Client{
		ID:         clientID,
		UserID:     uuid.Nil,
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	client.startAuthTimeout()
	defer func() {
		log.Info("Client disconnected", "clientID", clientID)
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
	}()

	go client.readPump()
	client.writePump()
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
			log.Er("failed to set read deadline in pong handler", err, "clientID", c.ID)
		}
		return nil
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == MESSAGE_TYPE_AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Manager.clientStatus(c) != STATUS_AUTHENTICATED {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.trySend(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_PONG,
			Channel:   "system",
			Timestamp: time.Now(),
		})
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) handleNotificationEvent(event events.Event) error {
	log := m.log.Function("handleNotificationEvent")

	if event.UserID == nil {
		log.Warn("Notification event without user", "eventID", event.ID)
		return nil
	}

	m.SendMessageToUser(*event.UserID, Message{
		ID:        event.ID,
		Type:      MESSAGE_TYPE_NOTIFICATION,
		Channel:   events.NOTIFICATIONS_CHANNEL.String(),
		Action:    "created",
		UserID:    event.UserID.String(),
		Data:      event.Data,
		Timestamp: event.Timestamp,
	})
	return nil
}
