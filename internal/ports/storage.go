package ports

import (
	"context"

	"github.com/eleven-am/cascade/internal/domain"
)

// Storage owns the persistent workflow, credential, and execution records.
// Implementations must serialize concurrent writes to the same execution id.
type Storage interface {
	ListWorkflows(ctx context.Context) ([]*domain.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	CreateWorkflow(ctx context.Context, wf *domain.Workflow) (*domain.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, update WorkflowUpdate) (*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error

	ListCredentials(ctx context.Context) ([]*domain.Credential, error)
	GetCredential(ctx context.Context, id string) (*domain.Credential, error)
	CreateCredential(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	DeleteCredential(ctx context.Context, id string) error

	ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error)
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
	CreateExecution(ctx context.Context, workflowID string) (*domain.Execution, error)
	UpdateExecution(ctx context.Context, id string, status domain.ExecutionStatus, logs []domain.LogEntry, results map[string]domain.NodeResult) (*domain.Execution, error)
	DeleteExecutions(ctx context.Context, workflowID string) error

	Close() error
}

// WorkflowUpdate carries a partial workflow update; nil fields are left
// untouched.
type WorkflowUpdate struct {
	Name        *string
	Description *string
	Nodes       []domain.Node
	Edges       []domain.Edge
	LastPrompt  *string
}
