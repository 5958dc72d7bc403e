// Package cascade provides a graph-based workflow execution engine for Go
// applications.
//
// Cascade workflows are directed acyclic graphs of typed action nodes:
// Airflow DAG triggers and log checks, SQL queries, HTTP calls, sandboxed
// scripts, S3 and SFTP operations, and conditional branches. A run walks the
// graph level by level, threading an accumulating context between nodes, and
// records an ordered log plus per-node results that survive restarts.
//
// Basic usage:
//
//	runtime, err := cascade.New(cascade.NewConfigBuilder().
//	    WithDataDir("./data").
//	    WithLogger(logger).
//	    Build())
//
//	wf, _ := runtime.CreateWorkflow(ctx, &cascade.Workflow{
//	    Name:  "nightly load",
//	    Nodes: []cascade.Node{{ID: "t", Type: cascade.NodeTypeAirflowTrigger, Config: map[string]interface{}{"dagId": "daily_load"}}},
//	})
//	exec, _ := runtime.StartExecution(ctx, wf.ID)
package cascade

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/adapters/airflow"
	"github.com/eleven-am/cascade/internal/adapters/export"
	"github.com/eleven-am/cascade/internal/adapters/httpclient"
	"github.com/eleven-am/cascade/internal/adapters/objectstore"
	"github.com/eleven-am/cascade/internal/adapters/sandbox"
	"github.com/eleven-am/cascade/internal/adapters/sqlclient"
	"github.com/eleven-am/cascade/internal/adapters/storage"
	"github.com/eleven-am/cascade/internal/adapters/transfer"
	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/engine"
	"github.com/eleven-am/cascade/internal/handlers"
	"github.com/eleven-am/cascade/internal/ports"
)

// Workflow is a named graph of action nodes and the edges between them.
type Workflow = domain.Workflow

// Node is one action in a workflow graph; its Config shape depends on Type.
type Node = domain.Node

// Edge connects two nodes. A SourceHandle restricts the edge to one of the
// source node's output handles.
type Edge = domain.Edge

// NodeType enumerates the supported action node types.
type NodeType = domain.NodeType

const (
	NodeTypeAirflowTrigger  = domain.NodeTypeAirflowTrigger
	NodeTypeAirflowLogCheck = domain.NodeTypeAirflowLogCheck
	NodeTypeParallelDags    = domain.NodeTypeParallelDags
	NodeTypeSQLQuery        = domain.NodeTypeSQLQuery
	NodeTypeAPIRequest      = domain.NodeTypeAPIRequest
	NodeTypeScript          = domain.NodeTypeScript
	NodeTypeS3Operation     = domain.NodeTypeS3Operation
	NodeTypeSFTPOperation   = domain.NodeTypeSFTPOperation
	NodeTypeCondition       = domain.NodeTypeCondition
)

// Execution is one run of a workflow: its status, ordered log, and per-node
// results.
type Execution = domain.Execution

// ExecutionStatus is the run lifecycle state.
type ExecutionStatus = domain.ExecutionStatus

const (
	ExecutionStatusPending   = domain.ExecutionStatusPending
	ExecutionStatusChecking  = domain.ExecutionStatusChecking
	ExecutionStatusWaiting   = domain.ExecutionStatusWaiting
	ExecutionStatusRunning   = domain.ExecutionStatusRunning
	ExecutionStatusCompleted = domain.ExecutionStatusCompleted
	ExecutionStatusFailed    = domain.ExecutionStatusFailed
)

// LogEntry is one timestamped line of an execution log.
type LogEntry = domain.LogEntry

// NodeResult is the recorded outcome of one node in one execution.
type NodeResult = domain.NodeResult

// Credential holds named connection secrets for external systems.
type Credential = domain.Credential

// CredentialType enumerates the supported credential kinds.
type CredentialType = domain.CredentialType

const (
	CredentialTypeAirflow  = domain.CredentialTypeAirflow
	CredentialTypePostgres = domain.CredentialTypePostgres
	CredentialTypeMSSQL    = domain.CredentialTypeMSSQL
	CredentialTypeS3       = domain.CredentialTypeS3
	CredentialTypeSFTP     = domain.CredentialTypeSFTP
)

// WorkflowUpdate is a partial workflow update; nil fields stay untouched.
type WorkflowUpdate = ports.WorkflowUpdate

// Runtime wires storage, external system adapters, and the run controller
// into one engine instance.
type Runtime struct {
	config *Config
	store  *storage.BadgerStore
	runner *engine.Runner
	logger *slog.Logger
}

// New builds a Runtime from the config, opening the badger database under
// the configured data directory.
func New(config *Config) (*Runtime, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if _, err := config.WithDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger

	store, err := storage.Open(config.DataDir, logger)
	if err != nil {
		return nil, err
	}

	collab := &ports.Collaborators{
		Storage:     store,
		Jobs:        airflow.NewFactory(config.HTTP.RequestTimeout, logger),
		SQL:         sqlclient.New(config.SQL, logger),
		HTTP:        httpclient.New(config.HTTP.RequestTimeout, logger),
		ObjectStore: objectstore.NewFactory(logger),
		Transfer:    transfer.NewFactory(config.HTTP.RequestTimeout, logger),
		Sandbox:     sandbox.New(logger),
		Exporter:    export.New(config.Export.Dir, logger),
	}

	runner := engine.NewRunner(collab, handlers.NewRegistry(logger), config.Engine, logger)

	return &Runtime{
		config: config,
		store:  store,
		runner: runner,
		logger: logger,
	}, nil
}

// StartExecution launches a run of the workflow and returns without waiting
// for it. Poll Execution with the returned id to follow progress.
func (r *Runtime) StartExecution(ctx context.Context, workflowID string) (*Execution, error) {
	return r.runner.StartExecution(ctx, workflowID)
}

func (r *Runtime) Execution(ctx context.Context, id string) (*Execution, error) {
	return r.store.GetExecution(ctx, id)
}

func (r *Runtime) Executions(ctx context.Context, workflowID string) ([]*Execution, error) {
	return r.store.ListExecutions(ctx, workflowID)
}

func (r *Runtime) Workflows(ctx context.Context) ([]*Workflow, error) {
	return r.store.ListWorkflows(ctx)
}

func (r *Runtime) Workflow(ctx context.Context, id string) (*Workflow, error) {
	return r.store.GetWorkflow(ctx, id)
}

func (r *Runtime) CreateWorkflow(ctx context.Context, wf *Workflow) (*Workflow, error) {
	return r.store.CreateWorkflow(ctx, wf)
}

func (r *Runtime) UpdateWorkflow(ctx context.Context, id string, update WorkflowUpdate) (*Workflow, error) {
	return r.store.UpdateWorkflow(ctx, id, update)
}

// DeleteWorkflow removes the workflow and every execution recorded for it.
func (r *Runtime) DeleteWorkflow(ctx context.Context, id string) error {
	return r.store.DeleteWorkflow(ctx, id)
}

func (r *Runtime) Credentials(ctx context.Context) ([]*Credential, error) {
	return r.store.ListCredentials(ctx)
}

func (r *Runtime) CreateCredential(ctx context.Context, cred *Credential) (*Credential, error) {
	return r.store.CreateCredential(ctx, cred)
}

func (r *Runtime) DeleteCredential(ctx context.Context, id string) error {
	return r.store.DeleteCredential(ctx, id)
}

func (r *Runtime) Close() error {
	return r.store.Close()
}
