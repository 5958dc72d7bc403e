package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

// preflightTarget is one external DAG the workflow references, deduplicated
// by (dag id, endpoint).
type preflightTarget struct {
	dagID  string
	client ports.JobClient
}

// Preflight blocks a run until none of the DAGs its workflow references are
// in a running-like state, so the run does not interfere with in-flight runs
// of the same DAG.
type Preflight struct {
	cfg    domain.EngineConfig
	logger *slog.Logger
}

func NewPreflight(cfg domain.EngineConfig, logger *slog.Logger) *Preflight {
	return &Preflight{
		cfg:    cfg,
		logger: logger.With("component", "preflight"),
	}
}

// collectTargets scans the workflow for airflow nodes carrying a dag id and
// an airflow credential. Nodes without a usable credential are skipped; the
// handler will surface that as its own failure if the node is reached.
func collectTargets(ctx context.Context, wf *domain.Workflow, storage ports.Storage, jobs ports.JobClientFactory) []preflightTarget {
	var targets []preflightTarget
	seen := make(map[string]bool)

	for _, node := range wf.Nodes {
		if node.Type != domain.NodeTypeAirflowTrigger && node.Type != domain.NodeTypeAirflowLogCheck {
			continue
		}

		dagID, _ := node.Config["dagId"].(string)
		credID, _ := node.Config["credentialId"].(string)
		if dagID == "" || credID == "" {
			continue
		}

		cred, err := storage.GetCredential(ctx, credID)
		if err != nil || cred.Type != domain.CredentialTypeAirflow {
			continue
		}

		client, err := jobs.ForCredential(cred)
		if err != nil {
			continue
		}

		key := dagID + "|" + client.BaseURL()
		if seen[key] {
			continue
		}
		seen[key] = true
		targets = append(targets, preflightTarget{dagID: dagID, client: client})
	}
	return targets
}

// Wait polls every target's latest run state until none are running-like or
// the budget is exhausted. A poll error for one DAG is logged and treated as
// non-blocking; only the budget ends the wait.
func (p *Preflight) Wait(ctx context.Context, targets []preflightTarget, rec *Recorder) error {
	deadline := time.Now().Add(p.cfg.PreflightTimeout)

	for time.Now().Before(deadline) {
		if rec.Status() == domain.ExecutionStatusWaiting {
			if err := rec.SetStatus(ctx, domain.ExecutionStatusChecking); err != nil {
				return err
			}
		}

		allComplete := true
		for _, target := range targets {
			state, err := target.client.GetLatestRunState(ctx, target.dagID)
			if err != nil {
				p.logger.Warn("error checking dag state",
					"dag_id", target.dagID,
					"error", err.Error(),
				)
				continue
			}

			if ports.RunningLikeStates[strings.ToLower(state)] {
				allComplete = false
				rec.Log(ctx, domain.LogLevelInfo, fmt.Sprintf("DAG %s is currently %s. Waiting for it to reach a terminal state...", target.dagID, state))
				if err := rec.SetStatus(ctx, domain.ExecutionStatusWaiting); err != nil {
					return err
				}
				break
			}
		}

		if allComplete {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.PreflightPollInterval):
		}
	}

	rec.Log(ctx, domain.LogLevelError, fmt.Sprintf("Timeout waiting for DAGs to reach a terminal state after %s", p.cfg.PreflightTimeout))
	return domain.NewTimeoutError("referenced DAGs did not reach a terminal state in time")
}
