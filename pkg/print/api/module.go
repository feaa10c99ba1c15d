package api

import (
	"net/http"

	"go.uber.org/fx"
)

// Module wires the HTTP boundary into the application container. Invoking
// the server constructor forces its construction even though nothing else
// depends on *http.Server.
var Module = fx.Options(
	fx.Provide(NewJobHandler),
	fx.Provide(NewRouter),
	fx.Provide(NewHTTPServer),
	fx.Invoke(func(*http.Server) {}),
)
