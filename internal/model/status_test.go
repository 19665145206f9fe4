package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to InterventionStatus }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusApproved},
		{StatusPending, StatusDenied},
		{StatusPending, StatusCancelled},
		{StatusApproved, StatusInProgress},
		{StatusApproved, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusPostponed},
		{StatusInProgress, StatusCancelled},
		{StatusPostponed, StatusInProgress},
		{StatusPostponed, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to InterventionStatus }{
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusInProgress},
		{StatusCancelled, StatusPending},
		{StatusDenied, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusPostponed},
		{StatusPostponed, StatusCompleted},
		{StatusPending, StatusPending},
		{StatusInProgress, StatusInProgress},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusDenied))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusInProgress))
	assert.False(t, IsTerminal(StatusPostponed))
	assert.False(t, IsTerminal(StatusApproved))
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusDenied))
	assert.False(t, IsValidStatus("OPEN"))
	assert.False(t, IsValidStatus(""))
}

func TestIsValidPriority(t *testing.T) {
	assert.True(t, IsValidPriority(PriorityLow))
	assert.True(t, IsValidPriority(PriorityHigh))
	assert.False(t, IsValidPriority("URGENT"))
	assert.False(t, IsValidPriority(""))
}
