package adminController

import (
	"context"
	"testing"

	"cleanhub/internal/models"
	"cleanhub/internal/services"
	"cleanhub/internal/testutil"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type depositFixture struct {
	controller *AdminController
	users      *testutil.MemoryUsers
	notifier   *testutil.RecordingNotifier
	admin      *models.User
	member     *models.User
}

func newDepositFixture() *depositFixture {
	admin := &models.User{Role: models.RoleAdmin}
	admin.ID = uuid.New()
	member := &models.User{Role: models.RoleUser}
	member.ID = uuid.New()

	users := testutil.NewMemoryUsers(admin, member)
	notifier := &testutil.RecordingNotifier{}
	return &depositFixture{
		controller: &AdminController{
			userRepo:  users,
			ledger:    testutil.NewMemoryLedger(users),
			notifier:  notifier,
			scheduler: services.NewSchedulerService(),
			log:       logger.New("adminController_test"),
		},
		users:    users,
		notifier: notifier,
		admin:    admin,
		member:   member,
	}
}

func TestDeposit_IsIdempotentOnReference(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()
	request := &DepositRequest{
		Amount:      decimal.RequireFromString("100"),
		Reference:   uuid.NewString(),
		Description: "Bank transfer 4411",
	}

	entry, err := f.controller.Deposit(ctx, f.admin, f.member.ID.String(), request)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerCredit, entry.Kind)
	assert.Equal(t, "deposit:"+request.Reference, entry.EventKey)
	assert.Equal(t, "Bank transfer 4411", entry.Description)

	replayed, err := f.controller.Deposit(ctx, f.admin, f.member.ID.String(), request)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, replayed.ID)
	assert.Equal(t, "100.00", f.users.Balance(f.member.ID).StringFixed(2))
	assert.Equal(t, 1, f.notifier.Count("Funds Added"), "a replayed reference notifies once")
}

func TestDeposit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		caller   func(f *depositFixture) *models.User
		userID   func(f *depositFixture) string
		request  DepositRequest
		expected error
	}{
		{
			name:     "non admin",
			caller:   func(f *depositFixture) *models.User { return f.member },
			request:  DepositRequest{Amount: decimal.NewFromInt(10)},
			expected: types.ErrAuthorization,
		},
		{
			name:     "malformed user id",
			userID:   func(f *depositFixture) string { return "abc" },
			request:  DepositRequest{Amount: decimal.NewFromInt(10)},
			expected: types.ErrInvalidReference,
		},
		{
			name:     "unknown user",
			userID:   func(f *depositFixture) string { return uuid.NewString() },
			request:  DepositRequest{Amount: decimal.NewFromInt(10)},
			expected: types.ErrNotFound,
		},
		{
			name:     "zero amount",
			request:  DepositRequest{Amount: decimal.Zero},
			expected: types.ErrValidation,
		},
		{
			name:     "fractional cents",
			request:  DepositRequest{Amount: decimal.RequireFromString("1.005")},
			expected: types.ErrValidation,
		},
		{
			name:     "bad reference",
			request:  DepositRequest{Amount: decimal.NewFromInt(10), Reference: "ref-1"},
			expected: types.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDepositFixture()
			caller := f.admin
			if tt.caller != nil {
				caller = tt.caller(f)
			}
			userID := f.member.ID.String()
			if tt.userID != nil {
				userID = tt.userID(f)
			}

			_, err := f.controller.Deposit(context.Background(), caller, userID, &tt.request)

			assert.ErrorIs(t, err, tt.expected)
			assert.True(t, f.users.Balance(f.member.ID).IsZero())
		})
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	f := newDepositFixture()

	err := f.controller.RunJob(context.Background(), "nope")

	assert.ErrorIs(t, err, types.ErrNotFound)
	status := f.controller.GetSchedulerStatus(context.Background())
	assert.False(t, status.Running)
	assert.Empty(t, status.Jobs)
}
