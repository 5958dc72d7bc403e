package handlers

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

// Script evaluates a user-supplied expression in the sandbox. The sandbox
// sees the execution context and nothing else; the expression's value is the
// node's result.
type Script struct {
	logger *slog.Logger
}

func (h *Script) Type() domain.NodeType {
	return domain.NodeTypeScript
}

func (h *Script) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	code := stringField(req.Node.Config, "code")
	if code == "" {
		return nil, domain.NewConfigurationError("script node requires code", map[string]interface{}{"node_id": req.Node.ID})
	}

	runCtx := ctx
	if req.Engine.ScriptTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Engine.ScriptTimeout)
		defer cancel()
	}

	value, err := req.Collab.Sandbox.Run(runCtx, code, req.Context)
	if err != nil {
		return nil, err
	}

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			req.Node.ID: map[string]interface{}{"result": value},
		},
		Result: domain.NodeResult{
			Status: domain.NodeResultSuccess,
			Data:   value,
		},
	}, nil
}
