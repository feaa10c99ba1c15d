// Package config provides structures and utilities for managing the
// labelpress service configuration.
package config

import (
	"runtime"
	"time"
)

// EmbeddedConfig holds the content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// ServerConfig holds the HTTP boundary settings.
type ServerConfig struct {
	Host string `yaml:"host"` // Host is the address to bind.
	Port int    `yaml:"port"` // Port is the port to listen on.
}

// JobsConfig holds the orchestration settings of the job pipeline.
type JobsConfig struct {
	// Workers is the worker pool size. 0 selects NumCPU-1 (minimum 1).
	Workers int `yaml:"workers"`
	// ExecutorConcurrency bounds simultaneously in-flight external
	// processes. 0 selects the effective worker count; a value above the
	// worker count gives no additional parallelism.
	ExecutorConcurrency int `yaml:"executor_concurrency"`
	// QueueCapacity is the submission queue capacity. Submissions beyond it
	// are rejected rather than blocked.
	QueueCapacity int `yaml:"queue_capacity"`
	// RenderTimeoutSeconds is the per-execution wall-clock timeout.
	RenderTimeoutSeconds int `yaml:"render_timeout_seconds"`
	// RetentionHours is how long terminal jobs are kept before eviction.
	RetentionHours int `yaml:"retention_hours"`
	// SweepIntervalSeconds is the retention sweeper tick interval.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	// KeepIntermediates retains intermediate CSV files under the spool
	// directory for diagnostics instead of deleting them after use.
	KeepIntermediates bool `yaml:"keep_intermediates"`
	// CleanupArtifacts deletes output artifacts when their jobs are evicted.
	CleanupArtifacts bool `yaml:"cleanup_artifacts"`
}

// RendererConfig holds the external renderer invocation settings.
type RendererConfig struct {
	// Command is the external renderer executable.
	Command string `yaml:"command"`
	// CaptureLimitBytes is the byte budget for combined stdout/stderr
	// capture per execution.
	CaptureLimitBytes int `yaml:"capture_limit_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint. Empty disables span
	// export; spans are still created through the no-op global provider.
	Endpoint string `yaml:"endpoint"`
}

// LabelpressConfig holds all configuration under the "labelpress" top-level
// key.
type LabelpressConfig struct {
	// Server contains the HTTP boundary configuration.
	Server ServerConfig `yaml:"server"`
	// Jobs contains the job pipeline configuration.
	Jobs JobsConfig `yaml:"jobs"`
	// Renderer contains the external renderer configuration.
	Renderer RendererConfig `yaml:"renderer"`
	// System contains system-wide configuration.
	System SystemConfig `yaml:"system"`
	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
	// AdapterConfigs holds configurations for storage adapters, keyed by
	// adapter category and connection name.
	AdapterConfigs map[string]interface{} `yaml:"adapter"`
}

// Config is the root structure for the entire service configuration.
type Config struct {
	// Labelpress contains the top-level configuration of the service.
	Labelpress LabelpressConfig `yaml:"labelpress"`
}

// NewConfig returns a new Config populated with default values.
func NewConfig() *Config {
	return &Config{
		Labelpress: LabelpressConfig{
			Server: ServerConfig{
				Host: "0.0.0.0",
				Port: 8080,
			},
			Jobs: JobsConfig{
				Workers:              0, // auto: NumCPU-1
				ExecutorConcurrency:  0, // auto: worker count
				QueueCapacity:        4096,
				RenderTimeoutSeconds: 600,
				RetentionHours:       24,
				SweepIntervalSeconds: 300,
				KeepIntermediates: false,
				// Enabled by the shipped application.yaml; bool YAML values
				// merge by OR, so the default here stays false.
				CleanupArtifacts: false,
			},
			Renderer: RendererConfig{
				Command:           "glabels-3-batch",
				CaptureLimitBytes: 4096,
			},
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
		},
	}
}

// EffectiveWorkers resolves the configured worker count. 0 selects
// NumCPU-1, and the result is never below 1.
func (c *JobsConfig) EffectiveWorkers() int {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU() - 1
	}
	if n < 1 {
		n = 1
	}
	return n
}

// EffectiveExecutorConcurrency resolves the executor gate size. 0 selects
// the effective worker count.
func (c *JobsConfig) EffectiveExecutorConcurrency() int {
	if c.ExecutorConcurrency > 0 {
		return c.ExecutorConcurrency
	}
	return c.EffectiveWorkers()
}

// RenderTimeout returns the per-execution timeout as a duration.
func (c *JobsConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}

// RetentionAge returns the terminal-job retention age as a duration.
func (c *JobsConfig) RetentionAge() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// SweepInterval returns the retention sweeper tick interval as a duration.
func (c *JobsConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
