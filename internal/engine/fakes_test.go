package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStorage is an in-memory Storage that records every execution update so
// tests can assert on status and log ordering.
type fakeStorage struct {
	mu            sync.Mutex
	workflows     map[string]*domain.Workflow
	credentials   map[string]*domain.Credential
	executions    map[string]*domain.Execution
	statusHistory []domain.ExecutionStatus
	nextID        int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		workflows:   make(map[string]*domain.Workflow),
		credentials: make(map[string]*domain.Credential),
		executions:  make(map[string]*domain.Execution),
	}
}

func (s *fakeStorage) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, wf)
	}
	return out, nil
}

func (s *fakeStorage) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return wf, nil
}

func (s *fakeStorage) CreateWorkflow(ctx context.Context, wf *domain.Workflow) (*domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = wf
	return wf, nil
}

func (s *fakeStorage) UpdateWorkflow(ctx context.Context, id string, update ports.WorkflowUpdate) (*domain.Workflow, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeStorage) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
	return nil
}

func (s *fakeStorage) ListCredentials(ctx context.Context) ([]*domain.Credential, error) {
	return nil, nil
}

func (s *fakeStorage) GetCredential(ctx context.Context, id string) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.credentials[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cred, nil
}

func (s *fakeStorage) CreateCredential(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[cred.ID] = cred
	return cred, nil
}

func (s *fakeStorage) DeleteCredential(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, id)
	return nil
}

func (s *fakeStorage) ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Execution
	for _, exec := range s.executions {
		if exec.WorkflowID == workflowID {
			out = append(out, exec)
		}
	}
	return out, nil
}

func (s *fakeStorage) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snapshot := *exec
	return &snapshot, nil
}

func (s *fakeStorage) CreateExecution(ctx context.Context, workflowID string) (*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	exec := &domain.Execution{
		ID:         fmt.Sprintf("exec-%d", s.nextID),
		WorkflowID: workflowID,
		Status:     domain.ExecutionStatusPending,
		Results:    make(map[string]domain.NodeResult),
		StartedAt:  time.Now(),
	}
	s.executions[exec.ID] = exec
	return exec, nil
}

func (s *fakeStorage) UpdateExecution(ctx context.Context, id string, status domain.ExecutionStatus, logs []domain.LogEntry, results map[string]domain.NodeResult) (*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	exec.Status = status
	exec.Logs = logs
	exec.Results = results
	if status.Terminal() && exec.CompletedAt == nil {
		now := time.Now()
		exec.CompletedAt = &now
	}
	s.statusHistory = append(s.statusHistory, status)
	return exec, nil
}

func (s *fakeStorage) DeleteExecutions(ctx context.Context, workflowID string) error {
	return nil
}

func (s *fakeStorage) Close() error { return nil }

// distinctStatuses collapses consecutive duplicates out of the recorded
// status history.
func (s *fakeStorage) distinctStatuses() []domain.ExecutionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ExecutionStatus
	for _, st := range s.statusHistory {
		if len(out) == 0 || out[len(out)-1] != st {
			out = append(out, st)
		}
	}
	return out
}

// fakeSandbox records the order scripts run in and returns a scripted value
// or error per code string.
type fakeSandbox struct {
	mu     sync.Mutex
	calls  []string
	values map[string]interface{}
	errors map[string]error
}

func newFakeSandbox() *fakeSandbox {
	return &fakeSandbox{
		values: make(map[string]interface{}),
		errors: make(map[string]error),
	}
}

func (s *fakeSandbox) Run(ctx context.Context, code string, env map[string]interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, code)
	if err, ok := s.errors[code]; ok {
		return nil, err
	}
	return s.values[code], nil
}

func (s *fakeSandbox) callOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// fakeJobClient replays a scripted sequence of latest-run states, repeating
// the final state once the sequence is exhausted.
type fakeJobClient struct {
	mu     sync.Mutex
	states []string
	idx    int
	base   string
}

func (c *fakeJobClient) TriggerRun(ctx context.Context, jobID string, conf map[string]interface{}) (string, error) {
	return "run-1", nil
}

func (c *fakeJobClient) GetRunState(ctx context.Context, jobID, runID string) (string, error) {
	return c.GetLatestRunState(ctx, jobID)
}

func (c *fakeJobClient) GetLatestRunState(ctx context.Context, jobID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.states) == 0 {
		return ports.RunStateNoRuns, nil
	}
	state := c.states[c.idx]
	if c.idx < len(c.states)-1 {
		c.idx++
	}
	return state, nil
}

func (c *fakeJobClient) GetTaskLog(ctx context.Context, jobID, runID, taskID string) (string, error) {
	return "", nil
}

func (c *fakeJobClient) BaseURL() string { return c.base }

type fakeJobs struct {
	client ports.JobClient
}

func (f *fakeJobs) ForCredential(cred *domain.Credential) (ports.JobClient, error) {
	return f.client, nil
}

func scriptNode(id, code string) domain.Node {
	return domain.Node{
		ID:     id,
		Type:   domain.NodeTypeScript,
		Label:  id,
		Config: map[string]interface{}{"code": code},
	}
}

func testEngineConfig() domain.EngineConfig {
	cfg := domain.DefaultEngineConfig()
	cfg.NodePacing = 0
	cfg.PreflightPollInterval = time.Millisecond
	cfg.PreflightTimeout = time.Second
	return cfg
}
