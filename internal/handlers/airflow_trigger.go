package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// AirflowTrigger starts a run of an external DAG and, unless
// waitForCompletion is disabled, blocks until the run reaches a terminal
// state or the wait budget runs out.
type AirflowTrigger struct {
	logger *slog.Logger
}

func (h *AirflowTrigger) Type() domain.NodeType {
	return domain.NodeTypeAirflowTrigger
}

func (h *AirflowTrigger) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	dagID := resolver.Resolve(stringField(cfg, "dagId"), req.Context)
	if dagID == "" {
		return nil, domain.NewConfigurationError("airflow_trigger requires a dagId", map[string]interface{}{"node_id": req.Node.ID})
	}

	conf := mapField(cfg, "conf")
	wait := boolField(cfg, "waitForCompletion", true)

	// Without a credential there is no endpoint to call; the run id is
	// synthesized so downstream nodes still have something to reference.
	dagRunID := fmt.Sprintf("run_%d", time.Now().UnixMilli())

	if credID := stringField(cfg, "credentialId"); credID != "" {
		cred, err := req.Collab.Storage.GetCredential(ctx, credID)
		if err != nil {
			return nil, domain.NewConfigurationError("airflow credential not found", map[string]interface{}{"credential_id": credID})
		}
		if cred.Type != domain.CredentialTypeAirflow {
			return nil, domain.NewConfigurationError("credential is not an airflow credential", map[string]interface{}{"credential_id": credID})
		}

		client, err := req.Collab.Jobs.ForCredential(cred)
		if err != nil {
			return nil, err
		}

		dagRunID, err = client.TriggerRun(ctx, dagID, conf)
		if err != nil {
			return nil, domain.NewExternalError(fmt.Sprintf("failed to trigger DAG %s", dagID), err)
		}

		if wait {
			req.Progress(domain.LogLevelInfo, fmt.Sprintf("Waiting for DAG %s (run: %s) to complete...", dagID, dagRunID))
			if err := h.waitForRun(ctx, req, client, dagID, dagRunID); err != nil {
				return nil, err
			}
		}
	}

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			"dagRunId": dagRunID,
			"dagId":    dagID,
			req.Node.ID: map[string]interface{}{
				"dagId":    dagID,
				"dagRunId": dagRunID,
				"status":   "success",
			},
		},
		Result: domain.NodeResult{
			Status:   domain.NodeResultSuccess,
			DagID:    dagID,
			DagRunID: dagRunID,
		},
	}, nil
}

// waitForRun polls the run state until it is terminal. A single failed poll
// is not fatal; only a failed run or an exhausted budget is.
func (h *AirflowTrigger) waitForRun(ctx context.Context, req *ports.HandlerRequest, client ports.JobClient, dagID, runID string) error {
	deadline := time.Now().Add(req.Engine.TriggerTimeout)
	lastProgress := time.Now()

	for {
		state, err := client.GetRunState(ctx, dagID, runID)
		if err != nil {
			h.logger.Warn("error polling dag run state",
				"dag_id", dagID,
				"run_id", runID,
				"error", err.Error(),
			)
		} else {
			switch strings.ToLower(state) {
			case ports.RunStateSuccess:
				req.Progress(domain.LogLevelInfo, fmt.Sprintf("DAG %s finished with state: %s", dagID, state))
				return nil
			case ports.RunStateFailed:
				req.Progress(domain.LogLevelInfo, fmt.Sprintf("DAG %s finished with state: %s", dagID, state))
				return domain.NewExternalError(fmt.Sprintf("DAG %s failed", dagID), nil)
			}

			if time.Since(lastProgress) >= req.Engine.ProgressLogInterval {
				req.Progress(domain.LogLevelInfo, fmt.Sprintf("DAG %s is still %s...", dagID, state))
				lastProgress = time.Now()
			}
		}

		if time.Now().After(deadline) {
			return domain.NewTimeoutError(fmt.Sprintf("timeout waiting for DAG %s to complete after %s", dagID, req.Engine.TriggerTimeout))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(req.Engine.TriggerPollInterval):
		}
	}
}
