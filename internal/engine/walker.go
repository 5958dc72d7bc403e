package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/handlers"
	"github.com/eleven-am/cascade/internal/ports"
)

// Walker traverses the workflow graph level by level from the root set,
// dispatching each node to its handler at most once per run. The first
// handler failure stops the walk.
type Walker struct {
	registry *handlers.Registry
	collab   *ports.Collaborators
	cfg      domain.EngineConfig
	logger   *slog.Logger
}

func NewWalker(registry *handlers.Registry, collab *ports.Collaborators, cfg domain.EngineConfig, logger *slog.Logger) *Walker {
	return &Walker{
		registry: registry,
		collab:   collab,
		cfg:      cfg,
		logger:   logger.With("component", "walker"),
	}
}

// Validate rejects graphs the walker cannot execute: edges referencing
// unknown node ids and cycles.
func (w *Walker) Validate(wf *domain.Workflow) error {
	ids := make(map[string]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		ids[n.ID] = true
	}

	indegree := make(map[string]int, len(wf.Nodes))
	for _, e := range wf.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return domain.NewConfigurationError("edge references unknown node", map[string]interface{}{
				"source": e.Source,
				"target": e.Target,
			})
		}
		indegree[e.Target]++
	}

	// Kahn's algorithm; anything left over sits on a cycle.
	queue := make([]string, 0, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++

		for _, e := range wf.Edges {
			if e.Source != id {
				continue
			}
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	if visited != len(wf.Nodes) {
		return domain.NewConfigurationError("workflow graph contains a cycle", nil)
	}
	return nil
}

// Run walks the graph. It returns the first handler error, leaving the
// failing node's result recorded; a nil return means every reached node
// succeeded.
func (w *Walker) Run(ctx context.Context, wf *domain.Workflow, executionID string, rec *Recorder) error {
	execContext := make(map[string]interface{})
	visited := make(map[string]bool, len(wf.Nodes))
	wave := wf.Roots()

	for len(wave) > 0 {
		var next []string

		for _, node := range orderByNodeSequence(wf, wave) {
			if visited[node.ID] {
				continue
			}
			visited[node.ID] = true

			if w.cfg.NodePacing > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(w.cfg.NodePacing):
				}
			}

			rec.Log(ctx, domain.LogLevelInfo, fmt.Sprintf("Executing node %s (%s)...", node.Label, node.Type))

			handler, ok := w.registry.Get(node.Type)
			if !ok {
				// Unknown types pass traversal through without executing
				// and record no result.
				rec.Log(ctx, domain.LogLevelInfo, fmt.Sprintf("Skipping node %s: unsupported type %s", node.Label, node.Type))
				next = append(next, successors(wf, node.ID, "")...)
				continue
			}

			rec.SetResult(ctx, node.ID, domain.NodeResult{Status: domain.NodeResultRunning})

			w.logger.Debug("dispatching node",
				"execution_id", executionID,
				"node_id", node.ID,
				"node_type", string(node.Type),
			)

			outcome, err := handler.Execute(ctx, &ports.HandlerRequest{
				Node:        *node,
				Workflow:    wf,
				ExecutionID: executionID,
				Context:     execContext,
				Engine:      w.cfg,
				Collab:      w.collab,
				Progress:    rec.Progress(ctx),
			})
			if err != nil {
				rec.Log(ctx, domain.LogLevelError, fmt.Sprintf("Error: %v", err))
				rec.SetResult(ctx, node.ID, domain.NodeResult{
					Status: domain.NodeResultFailure,
					Error:  err.Error(),
				})
				return err
			}

			if err := domain.MergeContext(execContext, outcome.ContextUpdate); err != nil {
				w.logger.Error("failed to merge context update",
					"execution_id", executionID,
					"node_id", node.ID,
					"error", err.Error(),
				)
			}

			rec.SetResult(ctx, node.ID, outcome.Result)
			next = append(next, successors(wf, node.ID, outcome.Handle)...)
		}

		wave = next
	}
	return nil
}

// successors follows edges out of nodeID. An empty handle is the
// unconditional handle: every outgoing edge fires. A named handle only
// fires edges guarded by it.
func successors(wf *domain.Workflow, nodeID, handle string) []string {
	var out []string
	for _, e := range wf.Edges {
		if e.Source != nodeID {
			continue
		}
		if handle != "" && e.SourceHandle != handle {
			continue
		}
		out = append(out, e.Target)
	}
	return out
}

// orderByNodeSequence maps a wave of node ids onto the workflow's node
// sequence, which fixes the observable execution order within a wave.
func orderByNodeSequence(wf *domain.Workflow, wave []string) []*domain.Node {
	members := make(map[string]bool, len(wave))
	for _, id := range wave {
		members[id] = true
	}

	out := make([]*domain.Node, 0, len(wave))
	for i := range wf.Nodes {
		if members[wf.Nodes[i].ID] {
			out = append(out, &wf.Nodes[i])
		}
	}
	return out
}
