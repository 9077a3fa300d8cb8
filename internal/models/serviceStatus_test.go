package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from     ServiceStatus
		to       ServiceStatus
		expected bool
	}{
		{ServiceStatusPending, ServiceStatusAssigned, true},
		{ServiceStatusPending, ServiceStatusInProgress, false},
		{ServiceStatusPending, ServiceStatusCancelled, true},
		{ServiceStatusPending, ServiceStatusExpired, true},
		{ServiceStatusAssigned, ServiceStatusInProgress, true},
		{ServiceStatusAssigned, ServiceStatusPending, false},
		{ServiceStatusAssigned, ServiceStatusCompleted, true},
		{ServiceStatusInProgress, ServiceStatusCompleted, true},
		{ServiceStatusInProgress, ServiceStatusAssigned, false},
		{ServiceStatusInProgress, ServiceStatusExpired, true},
		{ServiceStatusCompleted, ServiceStatusCancelled, false},
		{ServiceStatusCompleted, ServiceStatusCompleted, false},
		{ServiceStatusCancelled, ServiceStatusPending, false},
		{ServiceStatusExpired, ServiceStatusAssigned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestServiceStatus_IsTerminal(t *testing.T) {
	assert.False(t, ServiceStatusPending.IsTerminal())
	assert.False(t, ServiceStatusAssigned.IsTerminal())
	assert.False(t, ServiceStatusInProgress.IsTerminal())
	assert.True(t, ServiceStatusCompleted.IsTerminal())
	assert.True(t, ServiceStatusCancelled.IsTerminal())
	assert.True(t, ServiceStatusExpired.IsTerminal())
	assert.False(t, ServiceStatus("paused").IsValid())
}
