package sweeper

import (
	"context"

	"go.uber.org/fx"
)

// Module wires the retention sweeper into the application container and
// binds its loop to the application lifecycle.
var Module = fx.Options(
	fx.Provide(NewSweeper),
	fx.Invoke(func(lc fx.Lifecycle, s *Sweeper) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				s.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return s.Stop(ctx)
			},
		})
	}),
)
