package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// templateExt is the only template extension the pipeline accepts.
const templateExt = ".glabels"

// SubmitJobRequest is the request payload of a print job submission.
type SubmitJobRequest struct {
	// TemplateName is the renderer template filename, ending in .glabels.
	TemplateName string `json:"template_name"`
	// Data is the ordered list of label records.
	Data orderedRows `json:"data"`
	// Copies is the number of copies per record. Omitted means 1.
	Copies int `json:"copies"`
}

// Validate checks the submission payload and normalizes the template
// extension case, mirroring the accepted input surface of the service.
func (r *SubmitJobRequest) Validate() error {
	if !strings.HasSuffix(strings.ToLower(r.TemplateName), templateExt) {
		return fmt.Errorf("template_name must have %s extension", templateExt)
	}
	if !strings.HasSuffix(r.TemplateName, templateExt) {
		r.TemplateName = r.TemplateName[:len(r.TemplateName)-len(templateExt)] + templateExt
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("data must contain at least one record")
	}
	if r.Copies < 0 {
		return fmt.Errorf("copies must be 1 or greater")
	}
	if r.Copies == 0 {
		r.Copies = 1
	}
	return nil
}

// ToModel converts the validated payload into the domain request.
func (r *SubmitJobRequest) ToModel() *model.PrintRequest {
	return &model.PrintRequest{
		TemplateName: r.TemplateName,
		Rows:         []model.Row(r.Data),
		Copies:       r.Copies,
	}
}

// orderedRows decodes a JSON array of objects into ordered rows by walking
// the token stream instead of unmarshalling into Go maps. The column layout
// of the intermediate table follows first-occurrence field order, so the key
// order of the request objects has to survive decoding.
type orderedRows []model.Row

// UnmarshalJSON implements json.Unmarshaler.
func (o *orderedRows) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("data must be an array of objects")
	}

	var rows []model.Row
	for dec.More() {
		row, err := decodeRow(dec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = rows
	return nil
}

// decodeRow consumes one object from the token stream, preserving key order.
func decodeRow(dec *json.Decoder) (model.Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("each data entry must be an object")
	}

	var row model.Row
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in data object: %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, err := scalarString(key, valTok)
		if err != nil {
			return nil, err
		}
		row = append(row, model.Field{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return row, nil
}

// scalarString renders a scalar JSON value as the string the intermediate
// table will carry. Nested objects and arrays have no tabular representation
// and are rejected.
func scalarString(key string, tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("field %q: nested values are not supported", key)
	}
}

// SubmitJobResponse is the response payload of an accepted submission.
type SubmitJobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// JobStatusResponse is the response payload of job status queries and
// listings.
type JobStatusResponse struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Template    string     `json:"template"`
	Filename    string     `json:"filename"`
	OutputPath  string     `json:"output_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewJobStatusResponse builds the status payload from a job snapshot.
func NewJobStatusResponse(job *model.Job) *JobStatusResponse {
	return &JobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status.String(),
		Template:    job.Request.TemplateName,
		Filename:    job.OutputName,
		OutputPath:  job.OutputPath,
		Error:       job.ErrorSummary,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: job.CompletedAt,
	}
}

// ErrorResponse is the error payload of the HTTP boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}
