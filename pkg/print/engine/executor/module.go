package executor

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
)

// newCommandExecutorFromConfig constructs the executor sized by the
// configured concurrency limit and capture budget.
func newCommandExecutorFromConfig(jobs *config.JobsConfig, renderer *config.RendererConfig) *CommandExecutor {
	return NewCommandExecutor(jobs.EffectiveExecutorConcurrency(), renderer.CaptureLimitBytes)
}

// Module is the Fx module that provides the CommandExecutor as the
// port.Executor interface.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		newCommandExecutorFromConfig,
		fx.As(new(port.Executor)),
	)),
)
