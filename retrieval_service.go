package kamiwaza

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kamiwaza-ai/kamiwaza-go/sse"
)

// RetrievalRequest describes a dataset materialization job.
type RetrievalRequest struct {
	DatasetURN         string         `json:"dataset_urn"`
	Transport          string         `json:"transport,omitempty"` // "inline" or "sse"
	FormatHint         string         `json:"format_hint,omitempty"`
	CredentialOverride string         `json:"credential_override,omitempty"`
	Options            map[string]any `json:"options,omitempty"`
}

// RetrievalJob is a created materialization job.
type RetrievalJob struct {
	JobID     string          `json:"job_id"`
	Transport string          `json:"transport"`
	Status    string          `json:"status"`
	Dataset   RetrievalTarget `json:"dataset"`
	Inline    *InlinePayload  `json:"inline,omitempty"`
}

// RetrievalTarget identifies the dataset a job materializes.
type RetrievalTarget struct {
	URN      string `json:"urn"`
	Platform string `json:"platform"`
	Path     string `json:"path,omitempty"`
	Format   string `json:"format,omitempty"`
}

// InlinePayload carries job results delivered in the job response itself.
type InlinePayload struct {
	MediaType string         `json:"media_type"`
	Data      []any          `json:"data"`
	RowCount  int            `json:"row_count"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RetrievalJobStatus is a job's current progress.
type RetrievalJobStatus struct {
	JobID     string             `json:"job_id"`
	Status    string             `json:"status"`
	Transport string             `json:"transport"`
	Dataset   RetrievalTarget    `json:"dataset"`
	Progress  *RetrievalProgress `json:"progress,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitzero"`
	UpdatedAt time.Time          `json:"updated_at,omitzero"`
}

// RetrievalProgress counts a running job's output so far.
type RetrievalProgress struct {
	BytesProcessed int64 `json:"bytes_processed"`
	RowsProcessed  int64 `json:"rows_processed"`
	ChunksEmitted  int64 `json:"chunks_emitted"`
}

// RetrievalService wraps the dataset materialization endpoints.
type RetrievalService struct {
	client *Client
}

const retrievalBasePath = "retrieval/retrieval"

// CreateJob starts a materialization job.
func (s *RetrievalService) CreateJob(ctx context.Context, request RetrievalRequest) (*RetrievalJob, error) {
	var job RetrievalJob
	err := s.client.Post(ctx, retrievalBasePath+"/jobs", &job, WithJSONBody(request))
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob returns a job's current status.
func (s *RetrievalService) GetJob(ctx context.Context, jobID string) (*RetrievalJobStatus, error) {
	var status RetrievalJobStatus
	err := s.client.Get(ctx, fmt.Sprintf("%s/jobs/%s", retrievalBasePath, jobID), &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// StreamJob opens the job's event stream. The returned decoder owns the
// connection: it is released when the stream is exhausted and on Close, so
// callers abandoning the stream early must call Close.
func (s *RetrievalService) StreamJob(ctx context.Context, jobID string) (*sse.Decoder, error) {
	body, err := s.client.DoStream(ctx, http.MethodGet, fmt.Sprintf("%s/jobs/%s/stream", retrievalBasePath, jobID))
	if err != nil {
		return nil, err
	}
	return sse.NewDecoder(body), nil
}
