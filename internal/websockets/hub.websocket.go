package websockets

import (
	"sync"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
	STATUS_CLOSED
)

// Hub owns the client set. Client status and send channels are guarded by mutex.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client
	m.log.Function("registerClient").Debug("Client registered", "clientID", client.ID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if client.Status == STATUS_CLOSED {
		return
	}
	client.Status = STATUS_CLOSED
	close(client.send)
	delete(m.hub.clients, client.ID)

	m.log.Function("unregisterClient").Info(
		"Client unregistered",
		"clientID", client.ID,
		"userID", client.UserID,
	)
}

func (m *Manager) clientStatus(client *Client) int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return client.Status
}

func (m *Manager) promoteClientToAuthenticated(client *Client, userID uuid.UUID) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if client.Status != STATUS_UNAUTHENTICATED {
		return
	}
	client.Status = STATUS_AUTHENTICATED
	client.UserID = userID

	m.log.Function("promoteClientToAuthenticated").Info(
		"Client authenticated",
		"clientID", client.ID,
		"userID", userID,
	)
}

func (c *Client) trySend(message Message) bool {
	c.Manager.hub.mutex.RLock()
	defer c.Manager.hub.mutex.RUnlock()
	return c.deliver(message)
}

// deliver never blocks. The caller holds the hub mutex.
func (c *Client) deliver(message Message) bool {
	if c.Status == STATUS_CLOSED {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// SendMessageToUser fans message out to every authenticated connection of userID.
// Slow clients miss the message; the stored notification remains readable.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for clientID, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED || client.UserID != userID {
			continue
		}
		if client.deliver(message) {
			sent++
			continue
		}
		log.Warn("Client send channel full, dropping message", "clientID", clientID, "userID", userID)
	}

	log.Debug("Message sent to user connections", "userID", userID, "messageID", message.ID, "sentTo", sent)
	return sent
}
