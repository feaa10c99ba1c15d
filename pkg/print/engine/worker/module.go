package worker

import (
	"context"

	"go.uber.org/fx"

	port "github.com/tigerroll/labelpress/pkg/print/core/port"
)

// Module wires the worker pool into the application container. The pool is
// exposed to the rest of the application only through the port.Enqueuer
// interface; its start and stop are bound to the application lifecycle.
var Module = fx.Options(
	fx.Provide(NewPool),
	fx.Provide(func(p *Pool) port.Enqueuer { return p }),
	fx.Invoke(func(lc fx.Lifecycle, p *Pool) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				p.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return p.Stop(ctx)
			},
		})
	}),
)
