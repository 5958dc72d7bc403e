package engine

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/handlers"
	"github.com/eleven-am/cascade/internal/ports"
)

// Runner is the run controller. StartExecution creates the execution record,
// kicks the run off in the background, and returns immediately; callers poll
// the execution record for progress.
type Runner struct {
	collab    *ports.Collaborators
	walker    *Walker
	preflight *Preflight
	cfg       domain.EngineConfig
	logger    *slog.Logger
}

func NewRunner(collab *ports.Collaborators, registry *handlers.Registry, cfg domain.EngineConfig, logger *slog.Logger) *Runner {
	return &Runner{
		collab:    collab,
		walker:    NewWalker(registry, collab, cfg, logger),
		preflight: NewPreflight(cfg, logger),
		cfg:       cfg,
		logger:    logger.With("component", "runner"),
	}
}

// StartExecution creates a pending execution for the workflow and launches the
// run in the background. The returned execution carries the id to poll.
func (r *Runner) StartExecution(ctx context.Context, workflowID string) (*domain.Execution, error) {
	wf, err := r.collab.Storage.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	exec, err := r.collab.Storage.CreateExecution(ctx, wf.ID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting execution",
		"execution_id", exec.ID,
		"workflow_id", wf.ID,
		"workflow_name", wf.Name,
	)

	go r.run(context.Background(), wf, exec.ID)
	return exec, nil
}

func (r *Runner) run(ctx context.Context, wf *domain.Workflow, executionID string) {
	rec := NewRecorder(r.collab.Storage, executionID, r.logger)

	rec.Log(ctx, domain.LogLevelInfo, "Checking if any involved DAGs are currently running...")
	if err := rec.SetStatus(ctx, domain.ExecutionStatusChecking); err != nil {
		r.fail(ctx, rec, executionID, err)
		return
	}

	if err := r.walker.Validate(wf); err != nil {
		rec.Log(ctx, domain.LogLevelError, "Workflow graph is invalid: "+err.Error())
		r.fail(ctx, rec, executionID, err)
		return
	}

	targets := collectTargets(ctx, wf, r.collab.Storage, r.collab.Jobs)
	if err := r.preflight.Wait(ctx, targets, rec); err != nil {
		rec.Log(ctx, domain.LogLevelError, "Workflow aborted: DAGs did not complete in time.")
		r.fail(ctx, rec, executionID, err)
		return
	}

	rec.Log(ctx, domain.LogLevelInfo, "Starting workflow execution...")
	if err := rec.SetStatus(ctx, domain.ExecutionStatusRunning); err != nil {
		r.fail(ctx, rec, executionID, err)
		return
	}

	if err := r.walker.Run(ctx, wf, executionID, rec); err != nil {
		rec.Log(ctx, domain.LogLevelError, "Workflow failed.")
		r.fail(ctx, rec, executionID, err)
		return
	}

	rec.Log(ctx, domain.LogLevelInfo, "Workflow completed.")
	if err := rec.SetStatus(ctx, domain.ExecutionStatusCompleted); err != nil {
		r.logger.Error("failed to mark execution completed",
			"execution_id", executionID,
			"error", err.Error(),
		)
	}
}

// fail moves the execution to its terminal failed state. Terminal states
// reject further transitions, so a second fail call is a no-op.
func (r *Runner) fail(ctx context.Context, rec *Recorder, executionID string, cause error) {
	r.logger.Error("execution failed",
		"execution_id", executionID,
		"error", cause.Error(),
	)
	if err := rec.SetStatus(ctx, domain.ExecutionStatusFailed); err != nil {
		r.logger.Error("failed to mark execution failed",
			"execution_id", executionID,
			"error", err.Error(),
		)
	}
}
