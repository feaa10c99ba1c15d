package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	inframetrics "github.com/tigerroll/labelpress/pkg/print/infrastructure/metrics"
)

// NewRouter builds the HTTP route table. The metrics endpoint serves the
// recorder's private registry rather than the global default one.
func NewRouter(h *JobHandler, recorder *inframetrics.PrometheusRecorder) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Post("/", h.SubmitJob)
		r.Get("/", h.ListJobs)
		r.Get("/{job_id}", h.GetJob)
	})
	r.Get("/healthz", h.Healthz)
	r.Method("GET", "/metrics", promhttp.HandlerFor(
		recorder.GetRegistry(),
		promhttp.HandlerOpts{},
	))
	return r
}
