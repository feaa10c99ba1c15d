package renderer

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/labelpress/pkg/print/core/port"
)

// Module is the Fx module that provides the LabelRenderer as the
// port.Renderer interface.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLabelRenderer,
		fx.As(new(port.Renderer)),
	)),
)
