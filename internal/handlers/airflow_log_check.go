package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// AirflowLogCheck fetches the task log of the most recently triggered DAG
// run and asserts that every configured string appears in it. A single
// unmatched assertion fails the whole node.
type AirflowLogCheck struct {
	logger *slog.Logger
}

func (h *AirflowLogCheck) Type() domain.NodeType {
	return domain.NodeTypeAirflowLogCheck
}

func (h *AirflowLogCheck) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	dagID := stringField(cfg, "dagId")
	if dagID == "" {
		dagID, _ = req.Context["dagId"].(string)
	}
	dagID = resolver.Resolve(dagID, req.Context)
	taskName := resolver.Resolve(stringField(cfg, "taskName"), req.Context)

	assertions := stringListField(cfg, "logAssertions")
	if len(assertions) == 0 {
		if single := stringField(cfg, "logAssertion"); single != "" {
			assertions = []string{single}
		}
	}

	runID, _ := req.Context["dagRunId"].(string)
	if runID == "" || dagID == "" || taskName == "" {
		return nil, domain.NewConfigurationError("missing DAG ID, task name, or run ID for log check", map[string]interface{}{"node_id": req.Node.ID})
	}

	cred, err := h.lookupCredential(ctx, req)
	if err != nil {
		return nil, err
	}

	client, err := req.Collab.Jobs.ForCredential(cred)
	if err != nil {
		return nil, err
	}

	logText, err := client.GetTaskLog(ctx, dagID, runID, taskName)
	if err != nil {
		return nil, domain.NewExternalError(fmt.Sprintf("failed to fetch task log for %s", taskName), err)
	}

	var failed []string
	for _, assertion := range assertions {
		resolved := resolver.Resolve(assertion, req.Context)
		if !strings.Contains(logText, resolved) {
			failed = append(failed, resolved)
		}
	}

	if len(failed) > 0 {
		return nil, domain.NewAssertionError(fmt.Sprintf("Assertions failed: %s", strings.Join(failed, ", ")), failed)
	}

	req.Progress(domain.LogLevelInfo, fmt.Sprintf("All %d log assertions passed for task %s", len(assertions), taskName))

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			req.Node.ID: map[string]interface{}{"status": "success"},
		},
		Result: domain.NodeResult{Status: domain.NodeResultSuccess},
	}, nil
}

// lookupCredential uses the node's own credentialId when set and otherwise
// borrows the one from the workflow's first airflow_trigger node.
func (h *AirflowLogCheck) lookupCredential(ctx context.Context, req *ports.HandlerRequest) (*domain.Credential, error) {
	credID := stringField(req.Node.Config, "credentialId")
	if credID == "" {
		for _, n := range req.Workflow.Nodes {
			if n.Type == domain.NodeTypeAirflowTrigger {
				if id := stringField(n.Config, "credentialId"); id != "" {
					credID = id
					break
				}
			}
		}
	}
	if credID == "" {
		return nil, domain.NewConfigurationError("airflow credential not found for log check", map[string]interface{}{"node_id": req.Node.ID})
	}

	cred, err := req.Collab.Storage.GetCredential(ctx, credID)
	if err != nil {
		return nil, domain.NewConfigurationError("airflow credential not found for log check", map[string]interface{}{"credential_id": credID})
	}
	if cred.Type != domain.CredentialTypeAirflow {
		return nil, domain.NewConfigurationError("credential is not an airflow credential", map[string]interface{}{"credential_id": credID})
	}
	return cred, nil
}
