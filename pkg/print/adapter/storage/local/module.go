// Package local provides the Fx module for the local storage adapter.
package local

import (
	"context"

	"go.uber.org/fx"

	storageAdapter "github.com/tigerroll/labelpress/pkg/print/adapter/storage"
)

// Module is the Fx module for the local storage adapter. It provides the
// LocalProvider as the storage.Provider interface, resolves the pipeline's
// working areas and ties provider shutdown to the application lifecycle.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.As(new(storageAdapter.Provider)),
	)),
	fx.Provide(storageAdapter.NewWorkspaces),
	fx.Invoke(func(lc fx.Lifecycle, p storageAdapter.Provider) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return p.CloseAll()
			},
		})
	}),
)
