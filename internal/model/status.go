package model

type InterventionStatus string

const (
	StatusPending    InterventionStatus = "PENDING"
	StatusApproved   InterventionStatus = "APPROVED"
	StatusInProgress InterventionStatus = "IN_PROGRESS"
	StatusPostponed  InterventionStatus = "POSTPONED"
	StatusCompleted  InterventionStatus = "COMPLETED"
	StatusCancelled  InterventionStatus = "CANCELLED"
	StatusDenied     InterventionStatus = "DENIED"
)

// allowedTransitions is the workflow graph. Missing target list means terminal state.
var allowedTransitions = map[InterventionStatus][]InterventionStatus{
	StatusPending:    {StatusInProgress, StatusApproved, StatusDenied, StatusCancelled},
	StatusApproved:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusPostponed, StatusCancelled},
	StatusPostponed:  {StatusInProgress, StatusCancelled},
}

// IsValidStatus reports whether s is one of the enumerated statuses.
func IsValidStatus(s InterventionStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusInProgress, StatusPostponed,
		StatusCompleted, StatusCancelled, StatusDenied:
		return true
	}
	return false
}

// CanTransition reports whether moving from -> to is allowed by the workflow graph.
// Same-status moves are not allowed.
func CanTransition(from, to InterventionStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s InterventionStatus) bool {
	return len(allowedTransitions[s]) == 0
}

type InterventionType string

const (
	TypeReportedIssue InterventionType = "REPORTED_ISSUE"
	TypePreventive    InterventionType = "PREVENTIVE"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// IsValidPriority reports whether p is one of the enumerated priorities.
func IsValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleUser       Role = "USER"
)

type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionAssigned      HistoryAction = "ASSIGNED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionPlanned       HistoryAction = "PLANNED"
)
