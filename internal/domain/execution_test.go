package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to ExecutionStatus
	}{
		{ExecutionStatusPending, ExecutionStatusChecking},
		{ExecutionStatusChecking, ExecutionStatusWaiting},
		{ExecutionStatusChecking, ExecutionStatusRunning},
		{ExecutionStatusWaiting, ExecutionStatusChecking},
		{ExecutionStatusRunning, ExecutionStatusCompleted},
		{ExecutionStatusPending, ExecutionStatusFailed},
		{ExecutionStatusChecking, ExecutionStatusFailed},
		{ExecutionStatusWaiting, ExecutionStatusFailed},
		{ExecutionStatusRunning, ExecutionStatusFailed},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct {
		from, to ExecutionStatus
	}{
		{ExecutionStatusPending, ExecutionStatusRunning},
		{ExecutionStatusPending, ExecutionStatusWaiting},
		{ExecutionStatusWaiting, ExecutionStatusRunning},
		{ExecutionStatusRunning, ExecutionStatusChecking},
		{ExecutionStatusCompleted, ExecutionStatusRunning},
		{ExecutionStatusCompleted, ExecutionStatusFailed},
		{ExecutionStatusFailed, ExecutionStatusChecking},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, ExecutionStatusCompleted.Terminal())
	assert.True(t, ExecutionStatusFailed.Terminal())
	assert.False(t, ExecutionStatusPending.Terminal())
	assert.False(t, ExecutionStatusChecking.Terminal())
	assert.False(t, ExecutionStatusWaiting.Terminal())
	assert.False(t, ExecutionStatusRunning.Terminal())
}

func TestWorkflowRoots(t *testing.T) {
	wf := &Workflow{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{{Source: "a", Target: "c"}},
	}
	assert.Equal(t, []string{"a", "b"}, wf.Roots())
}
