package kamiwaza

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VectorDB is a provisioned vector database instance.
type VectorDB struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Engine   string    `json:"engine"`
	Host     string    `json:"host,omitempty"`
	Port     int       `json:"port,omitempty"`
	IsActive bool      `json:"is_active,omitempty"`
}

// VectorDBCreate is the payload for provisioning a vector database.
type VectorDBCreate struct {
	Name   string `json:"name"`
	Engine string `json:"engine"`
	Host   string `json:"host,omitempty"`
	Port   int    `json:"port,omitempty"`
}

// VectorDBService wraps the vector storage endpoints. When the deployment
// has no vector backend provisioned, these calls fail with
// *BackendUnavailableError rather than a generic API error.
type VectorDBService struct {
	client *Client
}

// Create provisions a vector database instance.
func (s *VectorDBService) Create(ctx context.Context, create VectorDBCreate) (*VectorDB, error) {
	var db VectorDB
	if err := s.client.Post(ctx, "vectordb/vectordb/", &db, WithJSONBody(create)); err != nil {
		return nil, err
	}
	return &db, nil
}

// List returns provisioned vector database instances.
func (s *VectorDBService) List(ctx context.Context) ([]VectorDB, error) {
	var dbs []VectorDB
	if err := s.client.Get(ctx, "vectordb/vectordb/", &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// Get returns a single vector database instance.
func (s *VectorDBService) Get(ctx context.Context, id uuid.UUID) (*VectorDB, error) {
	var db VectorDB
	if err := s.client.Get(ctx, fmt.Sprintf("vectordb/vectordb/%s", id), &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// Delete removes a vector database instance.
func (s *VectorDBService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Delete(ctx, fmt.Sprintf("vectordb/vectordb/%s", id), nil)
}
