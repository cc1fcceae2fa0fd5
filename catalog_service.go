package kamiwaza

import (
	"context"
	"time"
)

// SchemaField is one field in a dataset schema.
type SchemaField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Schema is a dataset schema definition.
type Schema struct {
	Name     string        `json:"name"`
	Platform string        `json:"platform"`
	Version  int           `json:"version,omitempty"`
	Fields   []SchemaField `json:"fields"`
}

// Dataset is a catalog dataset, including system-generated fields.
type Dataset struct {
	URN         string         `json:"urn"`
	Name        string         `json:"name"`
	Platform    string         `json:"platform"`
	Environment string         `json:"environment"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
}

// DatasetCreate is the payload for registering a dataset.
type DatasetCreate struct {
	Name         string         `json:"name"`
	Platform     string         `json:"platform"`
	Environment  string         `json:"environment,omitempty"`
	Description  string         `json:"description,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
	Schema       *Schema        `json:"dataset_schema,omitempty"`
	ContainerURN string         `json:"container_urn,omitempty"`
}

// DatasetUpdate is the payload for a partial dataset update.
type DatasetUpdate struct {
	Description  *string        `json:"description,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
	ContainerURN *string        `json:"container_urn,omitempty"`
}

// CatalogService wraps the data catalog endpoints.
type CatalogService struct {
	client *Client

	Datasets *DatasetService
}

func newCatalogService(client *Client) *CatalogService {
	return &CatalogService{
		client:   client,
		Datasets: &DatasetService{client: client},
	}
}

// DatasetService provides dataset CRUD plus schema access by URN.
//
// Successful creates and updates are recorded in the client's recent-change
// window, which makes an immediately following UpdateSchema eligible for the
// eventual-consistency retry.
type DatasetService struct {
	client *Client
}

// Create registers a dataset and returns its URN.
func (s *DatasetService) Create(ctx context.Context, create DatasetCreate) (string, error) {
	var urn string
	if err := s.client.Post(ctx, "catalog/datasets/", &urn, WithJSONBody(create)); err != nil {
		return "", err
	}
	s.client.noteRecentChange(urn)
	return urn, nil
}

// List returns datasets, optionally filtered by a search query.
func (s *DatasetService) List(ctx context.Context, query string) ([]Dataset, error) {
	opts := []RequestOption{}
	if query != "" {
		opts = append(opts, WithParam("query", query))
	}
	var datasets []Dataset
	if err := s.client.Get(ctx, "catalog/datasets/", &datasets, opts...); err != nil {
		return nil, err
	}
	return datasets, nil
}

// Get returns a dataset by URN.
func (s *DatasetService) Get(ctx context.Context, datasetURN string) (*Dataset, error) {
	var dataset Dataset
	if err := s.client.Get(ctx, "catalog/datasets/by-urn", &dataset, WithParam("urn", datasetURN)); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// Update applies a partial update to a dataset.
func (s *DatasetService) Update(ctx context.Context, datasetURN string, update DatasetUpdate) (*Dataset, error) {
	var dataset Dataset
	err := s.client.Patch(ctx, "catalog/datasets/by-urn", &dataset,
		WithParam("urn", datasetURN), WithJSONBody(update))
	if err != nil {
		return nil, err
	}
	s.client.noteRecentChange(datasetURN)
	return &dataset, nil
}

// Delete removes a dataset from the catalog.
func (s *DatasetService) Delete(ctx context.Context, datasetURN string) error {
	return s.client.Delete(ctx, "catalog/datasets/by-urn", nil, WithParam("urn", datasetURN))
}

// GetSchema returns a dataset's schema.
func (s *DatasetService) GetSchema(ctx context.Context, datasetURN string) (*Schema, error) {
	var schema Schema
	if err := s.client.Get(ctx, "catalog/datasets/by-urn/schema", &schema, WithParam("urn", datasetURN)); err != nil {
		return nil, err
	}
	return &schema, nil
}

// UpdateSchema replaces a dataset's schema. For datasets mutated by this
// client within the recency window, a transient catalog 404 is retried on a
// short bounded schedule.
func (s *DatasetService) UpdateSchema(ctx context.Context, datasetURN string, schema Schema) error {
	return s.client.Put(ctx, "catalog/datasets/by-urn/schema", nil,
		WithParam("urn", datasetURN), WithJSONBody(schema))
}
