package application

import (
	"context"

	"github.com/kaiserbh/webiptv/internal/port/driven"
)

// HealthService orchestrates health checks for the application and its
// dependencies.
type HealthService struct {
	store driven.PreferenceRepository
}

// NewHealthService creates a new health check service.
func NewHealthService(store driven.PreferenceRepository) *HealthService {
	return &HealthService{store: store}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string
	Error  string
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string
	Store  ComponentHealth
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok"}

	if err := s.store.Ping(ctx); err != nil {
		status.Store = ComponentHealth{Status: "error", Error: err.Error()}
		status.Status = "degraded"
	} else {
		status.Store = ComponentHealth{Status: "ok"}
	}

	return status
}
