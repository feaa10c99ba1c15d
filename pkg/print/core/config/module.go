package config

import "go.uber.org/fx"

// NewJobsConfigProvider extracts and provides *JobsConfig from *Config so
// engine components can depend only on the pipeline settings.
func NewJobsConfigProvider(cfg *Config) *JobsConfig {
	return &cfg.Labelpress.Jobs
}

// NewRendererConfigProvider extracts and provides *RendererConfig from
// *Config.
func NewRendererConfigProvider(cfg *Config) *RendererConfig {
	return &cfg.Labelpress.Renderer
}

// Module provides configuration-related components to Fx.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewJobsConfigProvider),
	fx.Provide(NewRendererConfigProvider),
)
