package ports

import (
	"context"

	"github.com/eleven-am/cascade/internal/domain"
)

// Run states reported by the external job system.
const (
	RunStateSuccess = "success"
	RunStateFailed  = "failed"
	RunStateUnknown = "unknown"

	// RunStateNoRuns marks an empty run history; it never blocks pre-flight.
	RunStateNoRuns = "no_runs"
)

// RunningLikeStates are the job states that block pre-flight synchronization.
var RunningLikeStates = map[string]bool{
	"running":           true,
	"queued":            true,
	"scheduled":         true,
	"up_for_retry":      true,
	"up_for_reschedule": true,
	"restarting":        true,
	"deferred":          true,
}

// JobClient talks to one external job system endpoint (one credential).
type JobClient interface {
	TriggerRun(ctx context.Context, jobID string, conf map[string]interface{}) (string, error)
	GetRunState(ctx context.Context, jobID, runID string) (string, error)
	GetLatestRunState(ctx context.Context, jobID string) (string, error)
	GetTaskLog(ctx context.Context, jobID, runID, taskID string) (string, error)

	// BaseURL identifies the endpoint for deduplication purposes.
	BaseURL() string
}

type JobClientFactory interface {
	ForCredential(cred *domain.Credential) (JobClient, error)
}
