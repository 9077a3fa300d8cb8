package userController

import (
	"context"
	"testing"

	. "cleanhub/internal/models"
	"cleanhub/internal/testutil"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(users ...*User) (*UserController, *testutil.MemoryNotifications, *testutil.MemoryLedger) {
	memoryUsers := testutil.NewMemoryUsers(users...)
	ledger := testutil.NewMemoryLedger(memoryUsers)
	notifications := &testutil.MemoryNotifications{}
	return &UserController{
		userRepo:         memoryUsers,
		notificationRepo: notifications,
		ledger:           ledger,
		log:              logger.New("userController_test"),
	}, notifications, ledger
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-3))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, MaxListLimit, clampLimit(5000))
}

func TestGetProfile_ReadsLiveBalance(t *testing.T) {
	user := &User{Role: RoleUser, Balance: decimal.NewFromInt(100)}
	user.ID = uuid.New()
	controller, _, ledger := newTestController(user)
	ctx := context.Background()

	_, err := ledger.Debit(ctx, user.ID, decimal.NewFromInt(54), "booking:test", nil)
	require.NoError(t, err)

	profile, err := controller.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "46.00", profile.Balance.StringFixed(2))

	history, err := controller.GetLedger(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "booking:test", history[0].EventKey)
}

func TestMarkNotificationsRead(t *testing.T) {
	user := &User{Role: RoleUser}
	user.ID = uuid.New()
	controller, notifications, _ := newTestController(user)
	ctx := context.Background()

	first := &Notification{UserID: user.ID, Title: "Service Assigned"}
	second := &Notification{UserID: user.ID, Title: "Service Started"}
	require.NoError(t, notifications.Create(ctx, first))
	require.NoError(t, notifications.Create(ctx, second))

	_, err := controller.MarkNotificationsRead(ctx, user, &MarkReadRequest{IDs: []string{"bogus"}})
	assert.ErrorIs(t, err, types.ErrInvalidReference)

	response, err := controller.MarkNotificationsRead(ctx, user, &MarkReadRequest{IDs: []string{first.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), response.Marked)

	unread, err := controller.GetNotifications(ctx, user, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Service Started", unread[0].Title)

	response, err = controller.MarkNotificationsRead(ctx, user, &MarkReadRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), response.Marked)

	all, err := controller.GetNotifications(ctx, user, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
