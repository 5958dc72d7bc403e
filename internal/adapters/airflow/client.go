// Package airflow implements the job client against the Airflow 2 stable
// REST API using basic auth credentials.
package airflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"resty.dev/v3"
)

type Client struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
}

type Factory struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewFactory(timeout time.Duration, logger *slog.Logger) *Factory {
	return &Factory{
		timeout: timeout,
		logger:  logger.With("component", "airflow"),
	}
}

func (f *Factory) ForCredential(cred *domain.Credential) (ports.JobClient, error) {
	baseURL := strings.TrimRight(cred.Field("baseUrl", ""), "/")
	if baseURL == "" {
		return nil, domain.NewConfigurationError("airflow credential is missing baseUrl", map[string]interface{}{"credential_id": cred.ID})
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(cred.Field("username", ""), cred.Field("password", "")).
		SetTimeout(f.timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    http,
		baseURL: baseURL,
		logger:  f.logger,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

type dagRun struct {
	DagRunID string `json:"dag_run_id"`
	State    string `json:"state"`
}

type dagRunList struct {
	DagRuns []dagRun `json:"dag_runs"`
}

func (c *Client) TriggerRun(ctx context.Context, jobID string, conf map[string]interface{}) (string, error) {
	if conf == nil {
		conf = map[string]interface{}{}
	}

	var run dagRun
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("dagId", jobID).
		SetBody(map[string]interface{}{"conf": conf}).
		SetResult(&run).
		Post("/api/v1/dags/{dagId}/dagRuns")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("trigger of DAG %s returned status %d: %s", jobID, res.StatusCode(), res.String())
	}

	c.logger.Debug("dag run triggered", "dag_id", jobID, "dag_run_id", run.DagRunID)
	return run.DagRunID, nil
}

func (c *Client) GetRunState(ctx context.Context, jobID, runID string) (string, error) {
	var run dagRun
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("dagId", jobID).
		SetPathParam("runId", runID).
		SetResult(&run).
		Get("/api/v1/dags/{dagId}/dagRuns/{runId}")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("run state of DAG %s returned status %d", jobID, res.StatusCode())
	}
	return run.State, nil
}

// GetLatestRunState reports the state of the most recent run, or
// RunStateNoRuns when the DAG has never run.
func (c *Client) GetLatestRunState(ctx context.Context, jobID string) (string, error) {
	var list dagRunList
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("dagId", jobID).
		SetQueryParam("order_by", "-execution_date").
		SetQueryParam("limit", "1").
		SetResult(&list).
		Get("/api/v1/dags/{dagId}/dagRuns")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("run list of DAG %s returned status %d", jobID, res.StatusCode())
	}

	if len(list.DagRuns) == 0 {
		return ports.RunStateNoRuns, nil
	}
	return list.DagRuns[0].State, nil
}

// GetTaskLog fetches the log of the task's first try as plain text.
func (c *Client) GetTaskLog(ctx context.Context, jobID, runID, taskID string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("dagId", jobID).
		SetPathParam("runId", runID).
		SetPathParam("taskId", taskID).
		SetQueryParam("full_content", "true").
		SetHeader("Accept", "text/plain").
		Get("/api/v1/dags/{dagId}/dagRuns/{runId}/taskInstances/{taskId}/logs/1")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("task log of %s returned status %d", taskID, res.StatusCode())
	}
	return res.String(), nil
}
