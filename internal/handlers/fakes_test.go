package handlers

import (
	"context"
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

// credStore satisfies ports.Storage for handler tests; only credential
// lookups are implemented, nothing else is reachable from a handler.
type credStore struct {
	ports.Storage
	creds map[string]*domain.Credential
}

func newCredStore(creds ...*domain.Credential) *credStore {
	s := &credStore{creds: make(map[string]*domain.Credential)}
	for _, c := range creds {
		s.creds[c.ID] = c
	}
	return s
}

func (s *credStore) GetCredential(ctx context.Context, id string) (*domain.Credential, error) {
	cred, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cred, nil
}

// stubJobClient replays scripted run states and a fixed task log.
type stubJobClient struct {
	mu sync.Mutex

	runID      string
	triggerErr error

	states    []string
	stateErrs []error
	stateIdx  int

	taskLog    string
	taskLogErr error

	triggeredJob  string
	triggeredConf map[string]interface{}
}

func (c *stubJobClient) TriggerRun(ctx context.Context, jobID string, conf map[string]interface{}) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggeredJob = jobID
	c.triggeredConf = conf
	return c.runID, c.triggerErr
}

func (c *stubJobClient) GetRunState(ctx context.Context, jobID, runID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.stateIdx
	if idx >= len(c.states) {
		idx = len(c.states) - 1
	} else {
		c.stateIdx++
	}
	var err error
	if idx < len(c.stateErrs) {
		err = c.stateErrs[idx]
	}
	return c.states[idx], err
}

func (c *stubJobClient) GetLatestRunState(ctx context.Context, jobID string) (string, error) {
	return c.GetRunState(ctx, jobID, "")
}

func (c *stubJobClient) GetTaskLog(ctx context.Context, jobID, runID, taskID string) (string, error) {
	return c.taskLog, c.taskLogErr
}

func (c *stubJobClient) BaseURL() string { return "http://airflow" }

type stubJobs struct {
	client ports.JobClient
}

func (f *stubJobs) ForCredential(cred *domain.Credential) (ports.JobClient, error) {
	return f.client, nil
}

type stubSQL struct {
	conn     ports.ConnectionInfo
	rows     []map[string]interface{}
	queryErr error

	lastQuery string
	lastConn  ports.ConnectionInfo
}

func (s *stubSQL) ConnectionFor(cred *domain.Credential) (ports.ConnectionInfo, error) {
	return s.conn, nil
}

func (s *stubSQL) Default() (ports.ConnectionInfo, error) {
	return s.conn, nil
}

func (s *stubSQL) Query(ctx context.Context, conn ports.ConnectionInfo, query string) ([]map[string]interface{}, error) {
	s.lastConn = conn
	s.lastQuery = query
	return s.rows, s.queryErr
}

type stubHTTP struct {
	status int
	body   []byte
	err    error

	lastMethod  string
	lastURL     string
	lastHeaders map[string]string
	lastBody    string
}

func (h *stubHTTP) Request(ctx context.Context, method, url string, headers map[string]string, body string) (int, []byte, error) {
	h.lastMethod = method
	h.lastURL = url
	h.lastHeaders = headers
	h.lastBody = body
	return h.status, h.body, h.err
}

type stubObjectStore struct {
	files     []string
	listErr   error
	uploadErr error
	deleteErr error

	uploadedBucket string
	uploadedKey    string
	uploadedBody   []byte
	deletedKey     string
}

func (s *stubObjectStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	return s.files, s.listErr
}

func (s *stubObjectStore) Upload(ctx context.Context, bucket, key string, content []byte) error {
	s.uploadedBucket = bucket
	s.uploadedKey = key
	s.uploadedBody = content
	return s.uploadErr
}

func (s *stubObjectStore) Delete(ctx context.Context, bucket, key string) error {
	s.deletedKey = key
	return s.deleteErr
}

type stubObjectStoreFactory struct {
	store ports.ObjectStore
}

func (f *stubObjectStoreFactory) ForCredential(cred *domain.Credential) (ports.ObjectStore, error) {
	return f.store, nil
}

type stubTransferSession struct {
	files       []string
	content     []byte
	listErr     error
	downloadErr error

	uploadedPath string
	uploadedBody []byte
	deletedPath  string
	closed       bool
}

func (s *stubTransferSession) List(path string) ([]string, error) { return s.files, s.listErr }

func (s *stubTransferSession) Upload(path string, content []byte) error {
	s.uploadedPath = path
	s.uploadedBody = content
	return nil
}

func (s *stubTransferSession) Download(path string) ([]byte, error) {
	return s.content, s.downloadErr
}

func (s *stubTransferSession) Delete(path string) error {
	s.deletedPath = path
	return nil
}

func (s *stubTransferSession) Close() error {
	s.closed = true
	return nil
}

type stubTransferFactory struct {
	session *stubTransferSession
	err     error

	lastHost string
	lastPort int
}

func (f *stubTransferFactory) Connect(host string, port int, cred *domain.Credential) (ports.TransferSession, error) {
	f.lastHost = host
	f.lastPort = port
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type stubExporter struct {
	path string
	err  error

	exportedRows []map[string]interface{}
}

func (e *stubExporter) Export(rows []map[string]interface{}, executionID, nodeID string) (string, error) {
	e.exportedRows = rows
	return e.path, e.err
}

// progressRecorder captures handler progress lines.
type progressRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (p *progressRecorder) fn() ports.Progress {
	return func(level domain.LogLevel, message string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.messages = append(p.messages, message)
	}
}

func (p *progressRecorder) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	copy(out, p.messages)
	return out
}

func fastEngineConfig() domain.EngineConfig {
	cfg := domain.DefaultEngineConfig()
	cfg.TriggerPollInterval = time.Millisecond
	cfg.TriggerTimeout = time.Second
	cfg.ProgressLogInterval = time.Hour
	return cfg
}

func newRequest(node domain.Node, collab *ports.Collaborators, execContext map[string]interface{}, progress *progressRecorder) *ports.HandlerRequest {
	if execContext == nil {
		execContext = make(map[string]interface{})
	}
	return &ports.HandlerRequest{
		Node:        node,
		Workflow:    &domain.Workflow{ID: "wf-1", Nodes: []domain.Node{node}},
		ExecutionID: "exec-1",
		Context:     execContext,
		Engine:      fastEngineConfig(),
		Collab:      collab,
		Progress:    progress.fn(),
	}
}
