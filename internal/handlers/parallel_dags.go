package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// ParallelDags fans out one goroutine per configured dag entry and joins all
// of them before the node completes. Entries fire and log; an entry's
// failure is captured in the aggregate but does not fail the node or cancel
// its siblings.
type ParallelDags struct {
	logger *slog.Logger
}

func (h *ParallelDags) Type() domain.NodeType {
	return domain.NodeTypeParallelDags
}

func (h *ParallelDags) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	entries := listField(req.Node.Config, "dags")
	if len(entries) == 0 {
		return nil, domain.NewConfigurationError("parallel_dags requires a non-empty dags list", map[string]interface{}{"node_id": req.Node.ID})
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]interface{}, len(entries))
	)

	for i, entry := range entries {
		dagCfg, _ := entry.(map[string]interface{})

		wg.Add(1)
		go func(idx int, dagCfg map[string]interface{}) {
			defer wg.Done()

			key := fmt.Sprintf("dag_%d", idx)
			dagID := resolver.Resolve(stringField(dagCfg, "dagId"), req.Context)
			if dagID == "" {
				mu.Lock()
				results[key] = "missing dagId"
				mu.Unlock()
				return
			}

			req.Progress(domain.LogLevelInfo, fmt.Sprintf("Parallel trigger: %s", dagID))
			mu.Lock()
			results[key] = "triggered"
			mu.Unlock()
		}(i, dagCfg)
	}

	wg.Wait()

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			req.Node.ID: map[string]interface{}{"parallel_results": results},
		},
		Result: domain.NodeResult{
			Status:   domain.NodeResultSuccess,
			Parallel: results,
		},
	}, nil
}
