package domain

import (
	"time"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusChecking  ExecutionStatus = "checking"
	ExecutionStatusWaiting   ExecutionStatus = "waiting"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed
}

// CanTransitionTo encodes the execution state machine:
// pending -> checking -> (waiting <-> checking)* -> running -> completed | failed.
// Any non-terminal state may fail directly.
func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == ExecutionStatusFailed {
		return true
	}

	switch s {
	case ExecutionStatusPending:
		return next == ExecutionStatusChecking
	case ExecutionStatusChecking:
		return next == ExecutionStatusWaiting || next == ExecutionStatusRunning
	case ExecutionStatusWaiting:
		return next == ExecutionStatusChecking
	case ExecutionStatusRunning:
		return next == ExecutionStatusCompleted
	}
	return false
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelError LogLevel = "ERROR"
)

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

type NodeResultStatus string

const (
	NodeResultRunning NodeResultStatus = "running"
	NodeResultSuccess NodeResultStatus = "success"
	NodeResultFailure NodeResultStatus = "failure"
)

// NodeResult is the per-node outcome snapshot. It is written once with
// status running when the node is dispatched and overwritten in place when
// the node reaches a terminal status. Only the fields relevant to the node
// type are populated.
type NodeResult struct {
	Status     NodeResultStatus       `json:"status"`
	Error      string                 `json:"error,omitempty"`
	DagID      string                 `json:"dagId,omitempty"`
	DagRunID   string                 `json:"dagRunId,omitempty"`
	Count      *int                   `json:"count,omitempty"`
	ExportPath string                 `json:"exportPath,omitempty"`
	Files      []string               `json:"files,omitempty"`
	Content    string                 `json:"content,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Parallel   map[string]interface{} `json:"parallelResults,omitempty"`
}

type Execution struct {
	ID          string                `json:"id"`
	WorkflowID  string                `json:"workflowId"`
	Status      ExecutionStatus       `json:"status"`
	Logs        []LogEntry            `json:"logs"`
	Results     map[string]NodeResult `json:"results"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}
