package kamiwaza

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Model is a registered model in the platform's model registry.
type Model struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Repo        string      `json:"repo_modelId,omitempty"`
	Hub         string      `json:"hub,omitempty"`
	Description string      `json:"description,omitempty"`
	Files       []ModelFile `json:"m_files,omitempty"`
	CreatedAt   time.Time   `json:"created_at,omitzero"`
}

// ModelFile is one downloadable artifact belonging to a model.
type ModelFile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size,omitempty"`
	Download bool      `json:"download,omitempty"`
}

// ModelSearchRequest describes a hub search.
type ModelSearchRequest struct {
	Query string   `json:"query"`
	Hubs  []string `json:"hubs_to_search,omitempty"`
	Exact bool     `json:"exact,omitempty"`
}

// ModelDownloadRequest asks the platform to pull model files from a hub.
type ModelDownloadRequest struct {
	Model   string   `json:"model"`
	Version string   `json:"version,omitempty"`
	Files   []string `json:"files_to_download,omitempty"`
}

// ModelService wraps the model registry endpoints.
type ModelService struct {
	client *Client
}

// List returns registered models. When loadFiles is true, each model's file
// inventory is included.
func (s *ModelService) List(ctx context.Context, loadFiles bool) ([]Model, error) {
	var models []Model
	err := s.client.Get(ctx, "models/", &models, WithParam("load_files", strconv.FormatBool(loadFiles)))
	if err != nil {
		return nil, err
	}
	return models, nil
}

// Get returns a single model.
func (s *ModelService) Get(ctx context.Context, id uuid.UUID) (*Model, error) {
	var model Model
	if err := s.client.Get(ctx, fmt.Sprintf("models/%s", id), &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// Delete removes a model from the registry.
func (s *ModelService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Delete(ctx, fmt.Sprintf("models/%s", id), nil)
}

// Search queries the configured model hubs.
func (s *ModelService) Search(ctx context.Context, request ModelSearchRequest) ([]Model, error) {
	var models []Model
	if err := s.client.Post(ctx, "models/search/", &models, WithJSONBody(request)); err != nil {
		return nil, err
	}
	return models, nil
}

// Download asks the platform to fetch model files from a hub.
func (s *ModelService) Download(ctx context.Context, request ModelDownloadRequest) (map[string]any, error) {
	var result map[string]any
	if err := s.client.Post(ctx, "models/download/", &result, WithJSONBody(request)); err != nil {
		return nil, err
	}
	return result, nil
}
