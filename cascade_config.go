package cascade

import (
	"log/slog"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
)

type Config = domain.Config

type EngineConfig = domain.EngineConfig

type SQLConfig = domain.SQLConfig

type HTTPConfig = domain.HTTPConfig

type ExportConfig = domain.ExportConfig

func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

func DefaultEngineConfig() EngineConfig {
	return domain.DefaultEngineConfig()
}

type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

func (cb *ConfigBuilder) WithDataDir(dataDir string) *ConfigBuilder {
	cb.config.DataDir = dataDir
	return cb
}

func (cb *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	cb.config.Logger = logger
	return cb
}

func (cb *ConfigBuilder) WithPreflight(pollInterval, timeout time.Duration) *ConfigBuilder {
	cb.config.Engine.PreflightPollInterval = pollInterval
	cb.config.Engine.PreflightTimeout = timeout
	return cb
}

func (cb *ConfigBuilder) WithTriggerWait(pollInterval, timeout time.Duration) *ConfigBuilder {
	cb.config.Engine.TriggerPollInterval = pollInterval
	cb.config.Engine.TriggerTimeout = timeout
	return cb
}

func (cb *ConfigBuilder) WithNodePacing(pacing time.Duration) *ConfigBuilder {
	cb.config.Engine.NodePacing = pacing
	return cb
}

func (cb *ConfigBuilder) WithScriptTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.Engine.ScriptTimeout = timeout
	return cb
}

func (cb *ConfigBuilder) WithDefaultSQL(driver, dsn string) *ConfigBuilder {
	cb.config.SQL.DefaultDriver = driver
	cb.config.SQL.DefaultDSN = dsn
	return cb
}

func (cb *ConfigBuilder) WithHTTPTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.HTTP.RequestTimeout = timeout
	return cb
}

func (cb *ConfigBuilder) WithExportDir(dir string) *ConfigBuilder {
	cb.config.Export.Dir = dir
	return cb
}

func (cb *ConfigBuilder) Build() *Config {
	return cb.config
}
