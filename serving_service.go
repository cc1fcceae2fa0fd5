package kamiwaza

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Deployment is a running (or requested) model deployment.
type Deployment struct {
	ID        uuid.UUID `json:"id"`
	ModelID   uuid.UUID `json:"m_id"`
	ModelName string    `json:"m_name,omitempty"`
	Status    string    `json:"status"`
	Engine    string    `json:"serve_path,omitempty"`
	LBPort    int       `json:"lb_port,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// DeployRequest asks the platform to serve a model.
type DeployRequest struct {
	ModelID     uuid.UUID `json:"m_id"`
	MinCopies   int       `json:"min_copies,omitempty"`
	VRAMRequest int64     `json:"vram_request,omitempty"`
}

// ServingService wraps the model serving endpoints.
type ServingService struct {
	client *Client
}

// ListDeployments returns deployments, optionally restricted to a model.
func (s *ServingService) ListDeployments(ctx context.Context, modelID *uuid.UUID) ([]Deployment, error) {
	opts := []RequestOption{}
	if modelID != nil {
		opts = append(opts, WithParam("model_id", modelID.String()))
	}
	var deployments []Deployment
	if err := s.client.Get(ctx, "serving/deployments", &deployments, opts...); err != nil {
		return nil, err
	}
	return deployments, nil
}

// GetDeployment returns a single deployment.
func (s *ServingService) GetDeployment(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	var deployment Deployment
	if err := s.client.Get(ctx, fmt.Sprintf("serving/deployment/%s", id), &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// DeployModel requests a new deployment and returns its identifier.
func (s *ServingService) DeployModel(ctx context.Context, request DeployRequest) (uuid.UUID, error) {
	var id uuid.UUID
	if err := s.client.Post(ctx, "serving/deploy_model", &id, WithJSONBody(request)); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// StopDeployment tears a deployment down. With force, the platform skips
// graceful instance shutdown.
func (s *ServingService) StopDeployment(ctx context.Context, id uuid.UUID, force bool) error {
	return s.client.Delete(ctx, fmt.Sprintf("serving/deployment/%s", id), nil,
		WithParam("force", strconv.FormatBool(force)))
}

// Health reports the serving subsystem's health.
func (s *ServingService) Health(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := s.client.Get(ctx, "serving/health", &result); err != nil {
		return nil, err
	}
	return result, nil
}
