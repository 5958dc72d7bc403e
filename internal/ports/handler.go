package ports

import (
	"context"

	"github.com/eleven-am/cascade/internal/domain"
)

// Progress lets long-running handlers surface progress lines into the
// execution log without owning the recorder.
type Progress func(level domain.LogLevel, message string)

// HandlerRequest is everything a node handler may consult. Context is the
// run-scoped variable mapping; handlers must treat it as read-only and return
// changes through HandlerOutcome.ContextUpdate.
type HandlerRequest struct {
	Node        domain.Node
	Workflow    *domain.Workflow
	ExecutionID string
	Context     map[string]interface{}
	Engine      domain.EngineConfig
	Collab      *Collaborators
	Progress    Progress
}

// HandlerOutcome carries the node's result snapshot, the context keys it
// publishes, and the output handle it selected. An empty Handle means the
// unconditional handle: every outgoing edge fires.
type HandlerOutcome struct {
	ContextUpdate map[string]interface{}
	Result        domain.NodeResult
	Handle        string
}

type Handler interface {
	Type() domain.NodeType
	Execute(ctx context.Context, req *HandlerRequest) (*HandlerOutcome, error)
}
