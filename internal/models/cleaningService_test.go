package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCleaningService_UnpaidPayments(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := &CleaningService{
		Payments: []Payment{
			{Amount: decimal.NewFromInt(54), Status: PaymentStatusPending},
			{Amount: decimal.NewFromInt(10), Status: PaymentStatusFailed},
			{Amount: decimal.NewFromInt(7), Status: PaymentStatusRefunded},
			{Amount: decimal.NewFromInt(20), Status: PaymentStatusCompleted, PaidToCleaner: true},
		},
	}

	total, settled := service.UnpaidPayments(at)

	assert.True(t, decimal.NewFromInt(54).Equal(total))
	require.Len(t, settled, 4)
	assert.Equal(t, PaymentStatusCompleted, settled[0].Status)
	assert.True(t, settled[0].PaidToCleaner)
	assert.Equal(t, at, settled[0].PaymentDate)
	assert.Equal(t, PaymentStatusFailed, settled[1].Status)

	// the snapshot itself is untouched
	assert.Equal(t, PaymentStatusPending, service.Payments[0].Status)
	assert.False(t, service.Payments[0].PaidToCleaner)
}

func TestCleaningService_Participants(t *testing.T) {
	requester := uuid.New()
	cleaner := uuid.New()
	teammate := uuid.New()

	service := &CleaningService{
		RequestingUserID: requester,
		CleanerID:        &cleaner,
		Team:             []TeamMember{{CleanerID: teammate}},
	}

	assert.True(t, service.IsRequester(requester))
	assert.True(t, service.IsAssignedCleaner(cleaner))
	assert.True(t, service.IsAssignedCleaner(teammate))
	assert.False(t, service.IsAssignedCleaner(requester))
	assert.False(t, service.IsParticipant(uuid.New()))
}

func TestCleaningService_CloneIsDeep(t *testing.T) {
	cleaner := uuid.New()
	service := &CleaningService{
		CleanerID: &cleaner,
		Checklist: datatypes.JSONSlice[ChecklistItem](NewChecklistFromTemplate([]string{"Floors"})),
		Payments:  []Payment{{Amount: decimal.NewFromInt(54), Status: PaymentStatusPending}},
	}

	clone := service.Clone()
	clone.Checklist[0].CompletedCleaner = true
	clone.Payments[0].Status = PaymentStatusRefunded
	*clone.CleanerID = uuid.New()

	assert.False(t, service.Checklist[0].CompletedCleaner)
	assert.Equal(t, PaymentStatusPending, service.Payments[0].Status)
	assert.Equal(t, cleaner, *service.CleanerID)
}

func TestRequestedDate_StartsAt(t *testing.T) {
	start, err := RequestedDate{Date: "2024-06-14", TimeOfArrival: "09:30"}.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC), start)

	_, err = RequestedDate{Date: "14/06/2024", TimeOfArrival: "09:30"}.StartsAt()
	assert.Error(t, err)
}

func TestCleaningService_SettleCancellation(t *testing.T) {
	tests := []struct {
		name     string
		refund   string
		expected []Payment
	}{
		{
			name:   "full refund",
			refund: "54",
			expected: []Payment{
				{Amount: decimal.RequireFromString("54"), Status: PaymentStatusRefunded, TransactionID: "auto-1"},
			},
		},
		{
			name:   "partial refund splits the entry",
			refund: "43.20",
			expected: []Payment{
				{Amount: decimal.RequireFromString("43.20"), Status: PaymentStatusRefunded, TransactionID: "auto-1"},
				{Amount: decimal.RequireFromString("10.80"), Status: PaymentStatusRetained, TransactionID: "auto-1-retained"},
			},
		},
		{
			name:   "nothing refunded",
			refund: "0",
			expected: []Payment{
				{Amount: decimal.RequireFromString("54"), Status: PaymentStatusRetained, TransactionID: "auto-1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &CleaningService{
				ServiceFee: decimal.RequireFromString("54"),
				Payments: []Payment{
					{Amount: decimal.RequireFromString("54"), Status: PaymentStatusPending, TransactionID: "auto-1"},
				},
			}
			refund := decimal.RequireFromString(tt.refund)

			service.SettleCancellation(refund)

			assert.True(t, refund.Equal(service.RefundAmount))
			assert.True(t, service.RefundAmount.Add(service.RetainedAmount).Equal(service.ServiceFee))
			require.Len(t, service.Payments, len(tt.expected))
			for i, want := range tt.expected {
				got := service.Payments[i]
				assert.Equal(t, want.Status, got.Status)
				assert.Equal(t, want.TransactionID, got.TransactionID)
				assert.True(t, want.Amount.Equal(got.Amount), "payment %d amount %s", i, got.Amount)
			}

			owed, _ := service.UnpaidPayments(time.Now())
			assert.True(t, owed.IsZero(), "a cancelled service owes the cleaner nothing")
		})
	}
}

func TestCleaningService_AwaitingRebookingAnswer(t *testing.T) {
	tests := []struct {
		name     string
		service  CleaningService
		expected bool
	}{
		{
			name:     "fresh rebooking",
			service:  CleaningService{HasBeenRebooked: true, ServiceStatus: ServiceStatusPending},
			expected: true,
		},
		{
			name: "cleaner already accepted",
			service: CleaningService{
				HasBeenRebooked:          true,
				ServiceStatus:            ServiceStatusPending,
				CleanerAcceptedRebooking: RebookingAccepted,
			},
		},
		{
			name:    "moved on from pending",
			service: CleaningService{HasBeenRebooked: true, ServiceStatus: ServiceStatusAssigned},
		},
		{
			name:    "never rebooked",
			service: CleaningService{ServiceStatus: ServiceStatusPending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.service.AwaitingRebookingAnswer())
		})
	}
}
