// Package api implements the HTTP boundary of the print pipeline: job
// submission, job inspection, health and metrics endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	service "github.com/tigerroll/labelpress/pkg/print/service"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// maxRequestBody caps the submission payload size.
const maxRequestBody = 8 << 20 // 8 MiB

// JobHandler handles the job endpoints of the HTTP boundary.
type JobHandler struct {
	svc service.PrintService
}

// NewJobHandler creates a new instance of JobHandler.
func NewJobHandler(svc service.PrintService) *JobHandler {
	return &JobHandler{svc: svc}
}

// SubmitJob handles POST /api/v1/jobs. An accepted submission answers 202
// with the job identifier; the artifact is produced asynchronously.
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.Submit(r.Context(), req.ToModel())
	if err != nil {
		if errors.Is(err, port.ErrQueueSaturated) {
			writeError(w, http.StatusServiceUnavailable, "submission queue is saturated, retry later")
			return
		}
		logger.Errorf("API: submission failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}

	writeJSON(w, http.StatusAccepted, &SubmitJobResponse{
		JobID:   job.ID,
		Message: "Job submitted successfully",
	})
}

// GetJob handles GET /api/v1/jobs/{job_id}.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found: "+jobID)
			return
		}
		logger.Errorf("API: status lookup for job %s failed: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, "failed to look up job")
		return
	}

	writeJSON(w, http.StatusOK, NewJobStatusResponse(job))
}

// ListJobs handles GET /api/v1/jobs?status=&limit=.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := model.JobStatus(r.URL.Query().Get("status"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	jobs, err := h.svc.ListJobs(r.Context(), status, limit)
	if err != nil {
		logger.Errorf("API: job listing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	resp := make([]*JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, NewJobStatusResponse(job))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Healthz handles GET /healthz.
func (h *JobHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("API: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &ErrorResponse{Error: message})
}
