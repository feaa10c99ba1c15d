// Package api_test provides unit tests for the HTTP boundary.
package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/tigerroll/labelpress/pkg/print/api"
	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
	repository "github.com/tigerroll/labelpress/pkg/print/core/domain/repository"
	port "github.com/tigerroll/labelpress/pkg/print/core/port"
	inframetrics "github.com/tigerroll/labelpress/pkg/print/infrastructure/metrics"
)

// stubService implements service.PrintService with canned responses.
type stubService struct {
	submitted *model.PrintRequest
	submitErr error
	job       *model.Job
	getErr    error
	list      []*model.Job
}

func (s *stubService) Submit(ctx context.Context, req *model.PrintRequest) (*model.Job, error) {
	s.submitted = req
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return model.NewJob(req), nil
}

func (s *stubService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.job, nil
}

func (s *stubService) ListJobs(ctx context.Context, status model.JobStatus, limit int) ([]*model.Job, error) {
	return s.list, nil
}

func newServer(t *testing.T, svc *stubService) *httptest.Server {
	t.Helper()
	router := api.NewRouter(api.NewJobHandler(svc), inframetrics.NewPrometheusRecorder())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitJob_Accepted(t *testing.T) {
	svc := &stubService{}
	srv := newServer(t, svc)

	resp := postJSON(t, srv, "/api/v1/jobs", `{
		"template_name": "demo.glabels",
		"data": [{"ITEM": "A001", "CODE": "X123"}],
		"copies": 2
	}`)

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body api.SubmitJobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.JobID)
	assert.Equal(t, "Job submitted successfully", body.Message)

	require.NotNil(t, svc.submitted)
	assert.Equal(t, "demo.glabels", svc.submitted.TemplateName)
	assert.Equal(t, 2, svc.submitted.Copies)
	require.Len(t, svc.submitted.Rows, 1)
}

func TestSubmitJob_RowKeyOrderPreserved(t *testing.T) {
	svc := &stubService{}
	srv := newServer(t, svc)

	resp := postJSON(t, srv, "/api/v1/jobs", `{
		"template_name": "demo.glabels",
		"data": [
			{"zebra": "1", "alpha": "2"},
			{"alpha": "3", "mike": 4, "flag": true, "none": null}
		]
	}`)

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotNil(t, svc.submitted)
	require.Len(t, svc.submitted.Rows, 2)

	// Key order of the JSON objects survives into the ordered rows; a Go map
	// would have destroyed it.
	assert.Equal(t, model.Row{
		{Name: "zebra", Value: "1"},
		{Name: "alpha", Value: "2"},
	}, svc.submitted.Rows[0])
	assert.Equal(t, model.Row{
		{Name: "alpha", Value: "3"},
		{Name: "mike", Value: "4"},
		{Name: "flag", Value: "true"},
		{Name: "none", Value: ""},
	}, svc.submitted.Rows[1])
}

func TestSubmitJob_DefaultsCopiesToOne(t *testing.T) {
	svc := &stubService{}
	srv := newServer(t, svc)

	resp := postJSON(t, srv, "/api/v1/jobs", `{
		"template_name": "demo.glabels",
		"data": [{"ITEM": "A001"}]
	}`)

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, svc.submitted.Copies)
}

func TestSubmitJob_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong extension", `{"template_name": "demo.txt", "data": [{"A": "1"}]}`},
		{"empty data", `{"template_name": "demo.glabels", "data": []}`},
		{"negative copies", `{"template_name": "demo.glabels", "data": [{"A": "1"}], "copies": -1}`},
		{"nested value", `{"template_name": "demo.glabels", "data": [{"A": {"nested": true}}]}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			srv := newServer(t, svc)

			resp := postJSON(t, srv, "/api/v1/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitJob_SaturatedQueue(t *testing.T) {
	svc := &stubService{submitErr: port.ErrQueueSaturated}
	srv := newServer(t, svc)

	resp := postJSON(t, srv, "/api/v1/jobs", `{
		"template_name": "demo.glabels",
		"data": [{"ITEM": "A001"}]
	}`)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetJob_Found(t *testing.T) {
	job := model.NewJob(&model.PrintRequest{
		TemplateName: "demo.glabels",
		Rows:         []model.Row{{{Name: "ITEM", Value: "A001"}}},
		Copies:       1,
	})
	require.NoError(t, job.TransitionTo(model.JobStatusRunning))
	require.NoError(t, job.MarkAsFailed("renderer exited with code 2: bad template"))

	svc := &stubService{job: job}
	srv := newServer(t, svc)

	resp := get(t, srv, "/api/v1/jobs/"+job.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.JobStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, job.ID, body.JobID)
	assert.Equal(t, "FAILED", body.Status)
	assert.Equal(t, "demo.glabels", body.Template)
	assert.Equal(t, job.OutputName, body.Filename)
	assert.Equal(t, "renderer exited with code 2: bad template", body.Error)
	assert.NotNil(t, body.CompletedAt)
}

func TestGetJob_NotFound(t *testing.T) {
	svc := &stubService{getErr: repository.ErrJobNotFound}
	srv := newServer(t, svc)

	resp := get(t, srv, "/api/v1/jobs/unknown-id")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJobs(t *testing.T) {
	job := model.NewJob(&model.PrintRequest{
		TemplateName: "demo.glabels",
		Rows:         []model.Row{{{Name: "ITEM", Value: "A001"}}},
		Copies:       1,
	})
	svc := &stubService{list: []*model.Job{job}}
	srv := newServer(t, svc)

	resp := get(t, srv, "/api/v1/jobs?status=QUEUED&limit=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []api.JobStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, job.ID, body[0].JobID)
}

func TestListJobs_BadLimit(t *testing.T) {
	srv := newServer(t, &stubService{})

	resp := get(t, srv, "/api/v1/jobs?limit=nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, &stubService{})

	resp := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, &stubService{})

	resp := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
