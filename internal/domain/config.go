package domain

import (
	"log/slog"
	"time"

	"dario.cat/mergo"
)

type Config struct {
	// DataDir is the directory for the embedded badger store.
	DataDir string

	Logger *slog.Logger

	Engine EngineConfig
	SQL    SQLConfig
	HTTP   HTTPConfig
	Export ExportConfig
}

type EngineConfig struct {
	// PreflightPollInterval and PreflightTimeout bound the pre-flight wait
	// for externally running DAGs before a workflow starts.
	PreflightPollInterval time.Duration
	PreflightTimeout      time.Duration

	// TriggerPollInterval and TriggerTimeout bound the in-node wait of an
	// airflow_trigger node with waitForCompletion set.
	TriggerPollInterval time.Duration
	TriggerTimeout      time.Duration

	// ProgressLogInterval spaces the "still running" progress entries
	// written during a long trigger wait.
	ProgressLogInterval time.Duration

	// NodePacing is the pause before each node dispatch.
	NodePacing time.Duration

	// ScriptTimeout bounds a single script node evaluation.
	ScriptTimeout time.Duration
}

type SQLConfig struct {
	// DefaultDriver and DefaultDSN describe the engine's own database
	// connection, used by sql_query nodes without a credential.
	DefaultDriver string
	DefaultDSN    string
}

type HTTPConfig struct {
	RequestTimeout time.Duration
}

type ExportConfig struct {
	// Dir receives the xlsx artifacts produced from sql_query result rows.
	Dir string
}

// WithDefaults fills every zero field from DefaultConfig.
func (c *Config) WithDefaults() (*Config, error) {
	defaults := DefaultConfig()
	if err := mergo.Merge(c, defaults); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return NewConfigurationError("data directory is required", nil)
	}
	if c.Engine.PreflightPollInterval <= 0 || c.Engine.TriggerPollInterval <= 0 {
		return NewConfigurationError("poll intervals must be positive", nil)
	}
	if c.Engine.PreflightTimeout < c.Engine.PreflightPollInterval {
		return NewConfigurationError("preflight timeout shorter than its poll interval", nil)
	}
	if c.Engine.TriggerTimeout < c.Engine.TriggerPollInterval {
		return NewConfigurationError("trigger timeout shorter than its poll interval", nil)
	}
	return nil
}
