// Package storage persists workflows, credentials, and executions in a
// badger key-value store. Keys are prefixed per record kind; executions
// carry a secondary index keyed by workflow id so per-workflow listing is a
// prefix scan.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/xjson"
	"github.com/google/uuid"
)

const (
	workflowPrefix   = "workflow:"
	credentialPrefix = "credential:"
	executionPrefix  = "execution:"
	executionIndex   = "execution:byworkflow:"
)

type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func New(db *badger.DB, logger *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger.With("component", "storage"),
	}
}

// Open creates the badger database under dir with badger's own logging
// silenced; slog is the only log surface.
func Open(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewExternalError("failed to open storage", err)
	}
	return New(db, logger), nil
}

func (s *BadgerStore) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	var out []*domain.Workflow
	err := s.scan(workflowPrefix, func(value []byte) error {
		var wf domain.Workflow
		if err := xjson.Unmarshal(value, &wf); err != nil {
			return err
		}
		out = append(out, &wf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *BadgerStore) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	var wf domain.Workflow
	if err := s.get(workflowPrefix+id, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (s *BadgerStore) CreateWorkflow(ctx context.Context, wf *domain.Workflow) (*domain.Workflow, error) {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	now := time.Now()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	if err := s.put(workflowPrefix+wf.ID, wf); err != nil {
		return nil, err
	}

	s.logger.Info("workflow created", "workflow_id", wf.ID, "name", wf.Name)
	return wf, nil
}

func (s *BadgerStore) UpdateWorkflow(ctx context.Context, id string, update ports.WorkflowUpdate) (*domain.Workflow, error) {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		wf.Name = *update.Name
	}
	if update.Description != nil {
		wf.Description = *update.Description
	}
	if update.Nodes != nil {
		wf.Nodes = update.Nodes
	}
	if update.Edges != nil {
		wf.Edges = update.Edges
	}
	if update.LastPrompt != nil {
		wf.LastPrompt = *update.LastPrompt
	}
	wf.UpdatedAt = time.Now()

	if err := s.put(workflowPrefix+wf.ID, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *BadgerStore) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := s.GetWorkflow(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteExecutions(ctx, id); err != nil {
		return err
	}
	return s.delete(workflowPrefix + id)
}

func (s *BadgerStore) ListCredentials(ctx context.Context) ([]*domain.Credential, error) {
	var out []*domain.Credential
	err := s.scan(credentialPrefix, func(value []byte) error {
		var cred domain.Credential
		if err := xjson.Unmarshal(value, &cred); err != nil {
			return err
		}
		out = append(out, &cred)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *BadgerStore) GetCredential(ctx context.Context, id string) (*domain.Credential, error) {
	var cred domain.Credential
	if err := s.get(credentialPrefix+id, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *BadgerStore) CreateCredential(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	cred.CreatedAt = time.Now()

	if err := s.put(credentialPrefix+cred.ID, cred); err != nil {
		return nil, err
	}

	// Credential data never reaches the log, only the name and type.
	s.logger.Info("credential created", "credential_id", cred.ID, "name", cred.Name, "type", string(cred.Type))
	return cred, nil
}

func (s *BadgerStore) DeleteCredential(ctx context.Context, id string) error {
	if _, err := s.GetCredential(ctx, id); err != nil {
		return err
	}
	return s.delete(credentialPrefix + id)
}

func (s *BadgerStore) ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error) {
	var ids []string
	err := s.scan(executionIndex+workflowID+":", func(value []byte) error {
		ids = append(ids, string(value))
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Execution, 0, len(ids))
	for _, id := range ids {
		exec, err := s.GetExecution(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, exec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (s *BadgerStore) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	var exec domain.Execution
	if err := s.get(executionPrefix+id, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}

func (s *BadgerStore) CreateExecution(ctx context.Context, workflowID string) (*domain.Execution, error) {
	exec := &domain.Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     domain.ExecutionStatusPending,
		Logs:       []domain.LogEntry{},
		Results:    make(map[string]domain.NodeResult),
		StartedAt:  time.Now(),
	}

	if err := s.guard(); err != nil {
		return nil, err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := xjson.Marshal(exec)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(executionPrefix+exec.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(executionIndex+workflowID+":"+exec.ID), []byte(exec.ID))
	})
	if err != nil {
		return nil, domain.NewExternalError("failed to create execution", err)
	}

	s.logger.Info("execution created", "execution_id", exec.ID, "workflow_id", workflowID)
	return exec, nil
}

func (s *BadgerStore) UpdateExecution(ctx context.Context, id string, status domain.ExecutionStatus, logs []domain.LogEntry, results map[string]domain.NodeResult) (*domain.Execution, error) {
	exec, err := s.GetExecution(ctx, id)
	if err != nil {
		return nil, err
	}

	exec.Status = status
	if logs != nil {
		exec.Logs = logs
	}
	if results != nil {
		exec.Results = results
	}
	if status.Terminal() && exec.CompletedAt == nil {
		now := time.Now()
		exec.CompletedAt = &now
	}

	if err := s.put(executionPrefix+exec.ID, exec); err != nil {
		return nil, err
	}
	return exec, nil
}

func (s *BadgerStore) DeleteExecutions(ctx context.Context, workflowID string) error {
	var ids []string
	err := s.scan(executionIndex+workflowID+":", func(value []byte) error {
		ids = append(ids, string(value))
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete([]byte(executionPrefix + id)); err != nil {
				return err
			}
			if err := txn.Delete([]byte(executionIndex + workflowID + ":" + id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrClosed
	}
	return nil
}

func (s *BadgerStore) get(key string, target interface{}) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return xjson.Unmarshal(value, target)
		})
	})
}

func (s *BadgerStore) put(key string, value interface{}) error {
	if err := s.guard(); err != nil {
		return err
	}
	data, err := xjson.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) delete(key string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) scan(prefix string, visit func(value []byte) error) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				return visit(value)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
