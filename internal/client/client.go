// Package client provides a transport-agnostic interface for the planning
// service and HTTP/JSON and gRPC implementations of it.
package client

import (
	"context"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// PlanningClient is the interface that all gestor CLI commands use to
// communicate with the server. It is implemented by HTTPClient (default)
// and GRPCClient.
type PlanningClient interface {
	// Analytics
	GetSprintBurndown(ctx context.Context, req *api.BurndownRequest) (*analytics.Burndown, error)
	GetProjectVelocity(ctx context.Context, req *api.VelocityRequest) (*analytics.VelocityReport, error)
	GetProjectBurndowns(ctx context.Context, req *api.BurndownsRequest) ([]*analytics.Burndown, error)

	// Dependencies
	CreateDependency(ctx context.Context, req *api.CreateDependencyRequest) (*model.TaskDependency, error)
	DeleteDependency(ctx context.Context, req *api.DeleteDependencyRequest) error
	GetTaskDependencies(ctx context.Context, projectID, taskID string) (*model.TaskDependencies, error)
	GetProjectDependencyGraph(ctx context.Context, projectID string) (*model.DependencyGraph, error)

	// Sprints
	CloneSprint(ctx context.Context, req *api.CloneSprintRequest) (*model.Sprint, error)

	// Events
	ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}
