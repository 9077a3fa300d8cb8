package websockets

import (
	"context"
	"testing"
	"time"

	"cleanhub/config"
	"cleanhub/internal/events"
	"cleanhub/internal/models"
	"cleanhub/internal/testutil"
	"cleanhub/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	userID uuid.UUID
	err    error
}

func (s stubTokens) ValidateToken(context.Context, string) (uuid.UUID, error) {
	return s.userID, s.err
}

func addClient(m *Manager, status int, userID uuid.UUID) *Client {
	client := &Client{
		ID:      uuid.NewString(),
		UserID:  userID,
		Manager: m,
		Status:  status,
		send:    make(chan Message, 1),
	}
	m.hub.clients[client.ID] = client
	return client
}

func TestHandleNotificationEvent_DeliversToOwnerOnly(t *testing.T) {
	m := newManager(nil, config.Config{}, nil, nil)
	owner := uuid.New()

	first := addClient(m, STATUS_AUTHENTICATED, owner)
	second := addClient(m, STATUS_AUTHENTICATED, owner)
	other := addClient(m, STATUS_AUTHENTICATED, uuid.New())
	pending := addClient(m, STATUS_UNAUTHENTICATED, owner)

	err := m.handleNotificationEvent(events.Event{
		ID:        "evt-1",
		Type:      events.NOTIFICATION,
		UserID:    &owner,
		Data:      map[string]any{"title": "Service Assigned"},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	for _, client := range []*Client{first, second} {
		require.Len(t, client.send, 1)
		message := <-client.send
		assert.Equal(t, MESSAGE_TYPE_NOTIFICATION, message.Type)
		assert.Equal(t, "Service Assigned", message.Data["title"])
	}
	assert.Empty(t, other.send)
	assert.Empty(t, pending.send)
}

func TestSendMessageToUser_SkipsFullAndClosedClients(t *testing.T) {
	m := newManager(nil, config.Config{}, nil, nil)
	owner := uuid.New()

	full := addClient(m, STATUS_AUTHENTICATED, owner)
	full.send <- Message{ID: "queued"}
	closed := addClient(m, STATUS_AUTHENTICATED, owner)
	m.unregisterClient(closed)

	sent := m.SendMessageToUser(owner, Message{ID: "next"})

	assert.Equal(t, 0, sent)
	assert.Len(t, full.send, 1)
	assert.Equal(t, STATUS_CLOSED, closed.Status)
	assert.NotContains(t, m.hub.clients, closed.ID)
}

func TestHandleAuthResponse(t *testing.T) {
	active := &models.User{Role: models.RoleCleaner, IsActive: true}
	active.ID = uuid.New()
	inactive := &models.User{Role: models.RoleUser}
	inactive.ID = uuid.New()
	users := testutil.NewMemoryUsers(active, inactive)

	tests := []struct {
		name     string
		tokens   stubTokens
		token    any
		expected string
		status   int
	}{
		{
			name:     "valid token",
			tokens:   stubTokens{userID: active.ID},
			token:    "signed",
			expected: MESSAGE_TYPE_AUTH_SUCCESS,
			status:   STATUS_AUTHENTICATED,
		},
		{
			name:     "missing token",
			token:    nil,
			expected: MESSAGE_TYPE_AUTH_FAILURE,
			status:   STATUS_UNAUTHENTICATED,
		},
		{
			name:     "rejected token",
			tokens:   stubTokens{err: types.ErrAuthorization},
			token:    "forged",
			expected: MESSAGE_TYPE_AUTH_FAILURE,
			status:   STATUS_UNAUTHENTICATED,
		},
		{
			name:     "inactive user",
			tokens:   stubTokens{userID: inactive.ID},
			token:    "signed",
			expected: MESSAGE_TYPE_AUTH_FAILURE,
			status:   STATUS_UNAUTHENTICATED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(nil, config.Config{}, tt.tokens, users)
			client := addClient(m, STATUS_UNAUTHENTICATED, uuid.Nil)

			client.routeMessage(Message{
				Type: MESSAGE_TYPE_AUTH_RESPONSE,
				Data: map[string]any{"token": tt.token},
			})

			require.Len(t, client.send, 1)
			reply := <-client.send
			assert.Equal(t, tt.expected, reply.Type)
			assert.Equal(t, tt.status, m.clientStatus(client))
		})
	}
}

func TestRouteMessage_BlocksUnauthenticated(t *testing.T) {
	m := newManager(nil, config.Config{}, nil, nil)
	client := addClient(m, STATUS_UNAUTHENTICATED, uuid.Nil)

	client.routeMessage(Message{Type: MESSAGE_TYPE_PING})

	reply := <-client.send
	assert.Equal(t, MESSAGE_TYPE_AUTH_FAILURE, reply.Type)
	assert.Equal(t, "authentication_required", reply.Action)
}
