package models

type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "pending"
	ServiceStatusAssigned   ServiceStatus = "assigned"
	ServiceStatusInProgress ServiceStatus = "in_progress"
	ServiceStatusCompleted  ServiceStatus = "completed"
	ServiceStatusCancelled  ServiceStatus = "cancelled"
	ServiceStatusExpired    ServiceStatus = "expired"
)

// serviceTransitions lists every allowed move out of a non-terminal status.
// Terminal statuses have no entry.
var serviceTransitions = map[ServiceStatus][]ServiceStatus{
	ServiceStatusPending: {
		ServiceStatusAssigned,
		ServiceStatusCompleted,
		ServiceStatusCancelled,
		ServiceStatusExpired,
	},
	ServiceStatusAssigned: {
		ServiceStatusInProgress,
		ServiceStatusCompleted,
		ServiceStatusCancelled,
		ServiceStatusExpired,
	},
	ServiceStatusInProgress: {
		ServiceStatusCompleted,
		ServiceStatusCancelled,
		ServiceStatusExpired,
	},
}

func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusPending,
		ServiceStatusAssigned,
		ServiceStatusInProgress,
		ServiceStatusCompleted,
		ServiceStatusCancelled,
		ServiceStatusExpired:
		return true
	}
	return false
}

func (s ServiceStatus) IsTerminal() bool {
	return s == ServiceStatusCompleted || s == ServiceStatusCancelled || s == ServiceStatusExpired
}

func (s ServiceStatus) String() string {
	return string(s)
}

// CanTransition reports whether a service may move from one status to another.
// Staying in the same status is not a transition.
func CanTransition(from, to ServiceStatus) bool {
	for _, next := range serviceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
