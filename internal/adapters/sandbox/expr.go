// Package sandbox evaluates script nodes as expressions. Scripts see the
// execution context as their environment and cannot reach the filesystem,
// the network, or the host process.
package sandbox

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/expr-lang/expr"
)

type Sandbox struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Sandbox {
	return &Sandbox{logger: logger.With("component", "sandbox")}
}

func (s *Sandbox) Run(ctx context.Context, code string, env map[string]interface{}) (interface{}, error) {
	if env == nil {
		env = map[string]interface{}{}
	}

	program, err := expr.Compile(code, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, domain.NewConfigurationError("script failed to compile", map[string]interface{}{"error": err.Error()})
	}

	type result struct {
		value interface{}
		err   error
	}
	done := make(chan result, 1)

	go func() {
		value, err := expr.Run(program, env)
		done <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, domain.NewTimeoutError("script evaluation timed out")
	case r := <-done:
		if r.err != nil {
			return nil, domain.NewExternalError("script evaluation failed", r.err)
		}
		return r.value, nil
	}
}
