package domain

import (
	"os"
	"time"
)

func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Engine:  DefaultEngineConfig(),
		SQL:     SQLConfig{},
		HTTP: HTTPConfig{
			RequestTimeout: 30 * time.Second,
		},
		Export: ExportConfig{
			Dir: os.TempDir(),
		},
	}
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PreflightPollInterval: 10 * time.Second,
		PreflightTimeout:      time.Hour,
		TriggerPollInterval:   10 * time.Second,
		TriggerTimeout:        time.Hour,
		ProgressLogInterval:   time.Minute,
		NodePacing:            time.Second,
		ScriptTimeout:         30 * time.Second,
	}
}
