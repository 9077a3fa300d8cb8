package websockets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.clientStatus(c) != STATUS_UNAUTHENTICATED {
			return
		}

		log.Warn("Client failed to authenticate within timeout, disconnecting",
			"clientID", c.ID,
			"timeout", AUTH_HANDSHAKE_TIMEOUT)
		c.sendAuthFailure("Authentication timeout")
	})
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.clientStatus(c) != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), AUTH_HANDSHAKE_TIMEOUT)
	defer cancel()

	userID, err := c.Manager.tokens.ValidateToken(ctx, token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	user, err := c.Manager.userRepo.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		log.Info("WebSocket user not found or inactive", "clientID", c.ID, "userID", userID)
		c.sendAuthFailure("User not found")
		return
	}

	c.Manager.promoteClientToAuthenticated(c, user.ID)

	c.trySend(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_SUCCESS,
		Channel:   "system",
		Action:    "authenticated",
		UserID:    user.ID.String(),
		Data:      map[string]any{"userId": user.ID.String()},
		Timestamp: time.Now(),
	})
}

// sendAuthFailure reports the failure and closes the connection shortly after.
func (c *Client) sendAuthFailure(reason string) {
	log := c.Manager.log.Function("sendAuthFailure")

	c.trySend(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Action:    "authentication_failed",
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now(),
	})

	log.Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	time.AfterFunc(100*time.Millisecond, func() {
		if c.Connection != nil {
			_ = c.Connection.Close()
		}
	})
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_REQUEST,
		Channel:   "system",
		Action:    "authenticate",
		Timestamp: time.Now(),
	}

	if err := c.Connection.WriteJSON(authRequest); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}

	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").Warn(
		"Blocking message from unauthenticated client",
		"clientID", c.ID,
		"messageType", message.Type,
	)

	c.trySend(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Action:    "authentication_required",
		Data:      map[string]any{"reason": "Authentication required"},
		Timestamp: time.Now(),
	})
}
