package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

// Recorder owns one execution's ordered log and per-node results, persisting
// through storage after every change. All methods are safe for concurrent use
// because parallel fan-out units log through it.
type Recorder struct {
	storage     ports.Storage
	logger      *slog.Logger
	executionID string

	mu      sync.Mutex
	status  domain.ExecutionStatus
	logs    []domain.LogEntry
	results map[string]domain.NodeResult
}

func NewRecorder(storage ports.Storage, executionID string, logger *slog.Logger) *Recorder {
	return &Recorder{
		storage:     storage,
		logger:      logger.With("component", "recorder", "execution_id", executionID),
		executionID: executionID,
		status:      domain.ExecutionStatusPending,
		results:     make(map[string]domain.NodeResult),
	}
}

func (r *Recorder) Log(ctx context.Context, level domain.LogLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs = append(r.logs, domain.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	r.persistLocked(ctx)
}

// Progress adapts Log to the handler-facing callback shape.
func (r *Recorder) Progress(ctx context.Context) ports.Progress {
	return func(level domain.LogLevel, message string) {
		r.Log(ctx, level, message)
	}
}

// SetStatus transitions the execution status. Transitions outside the state
// machine are rejected rather than persisted.
func (r *Recorder) SetStatus(ctx context.Context, next domain.ExecutionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.status, next)
	}
	r.status = next
	r.persistLocked(ctx)
	return nil
}

func (r *Recorder) SetResult(ctx context.Context, nodeID string, result domain.NodeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[nodeID] = result
	r.persistLocked(ctx)
}

func (r *Recorder) Status() domain.ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Recorder) persistLocked(ctx context.Context) {
	logs := make([]domain.LogEntry, len(r.logs))
	copy(logs, r.logs)

	results := make(map[string]domain.NodeResult, len(r.results))
	for k, v := range r.results {
		results[k] = v
	}

	if _, err := r.storage.UpdateExecution(ctx, r.executionID, r.status, logs, results); err != nil {
		r.logger.Error("failed to persist execution update",
			"status", string(r.status),
			"error", err.Error(),
		)
	}
}
