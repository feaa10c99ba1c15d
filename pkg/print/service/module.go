package service

import (
	"go.uber.org/fx"
)

// Module provides the print service to the application container.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewDefaultPrintService,
			fx.As(new(PrintService)),
		),
	),
)
