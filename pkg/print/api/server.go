package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// NewHTTPServer creates the HTTP server and binds it to the application
// lifecycle. The listener is opened in OnStart so a bind failure aborts
// startup instead of surfacing later from a goroutine.
func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *chi.Mux) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Labelpress.Server.Host, cfg.Labelpress.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to bind %s: %w", addr, err)
			}
			logger.Infof("HTTP server: listening on %s.", addr)
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Errorf("HTTP server: serve error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("HTTP server: shutting down.")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
