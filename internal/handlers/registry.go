// Package handlers holds one execution handler per node type. Dispatch is a
// static table over the closed node type enumeration; there is no reflection
// and no way to register types at runtime.
package handlers

import (
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

type Registry struct {
	handlers map[domain.NodeType]ports.Handler
}

func NewRegistry(logger *slog.Logger) *Registry {
	logger = logger.With("component", "handlers")

	table := []ports.Handler{
		&AirflowTrigger{logger: logger},
		&AirflowLogCheck{logger: logger},
		&ParallelDags{logger: logger},
		&SQLQuery{logger: logger},
		&APIRequest{logger: logger},
		&Script{logger: logger},
		&S3Operation{logger: logger},
		&SFTPOperation{logger: logger},
		&Condition{},
	}

	handlers := make(map[domain.NodeType]ports.Handler, len(table))
	for _, h := range table {
		handlers[h.Type()] = h
	}
	return &Registry{handlers: handlers}
}

func (r *Registry) Get(t domain.NodeType) (ports.Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}
