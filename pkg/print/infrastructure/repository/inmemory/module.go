// Package inmemory integrates the in-memory job repository into the
// application's dependency graph using Fx.
package inmemory

import (
	"go.uber.org/fx"

	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
)

// Module is an Fx module that provides InMemoryJobRepository as the
// repository.JobRepository interface.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewInMemoryJobRepository,
		fx.As(new(repository.JobRepository)),
	)),
)
