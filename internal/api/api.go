// Package api holds the request and response shapes shared by the HTTP and
// gRPC transports and their clients.
package api

import (
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gestor.v1.PlanningService"

// gRPC method names.
const (
	MethodGetSprintBurndown         = "GetSprintBurndown"
	MethodGetProjectVelocity        = "GetProjectVelocity"
	MethodGetProjectBurndowns       = "GetProjectBurndowns"
	MethodCreateDependency          = "CreateDependency"
	MethodDeleteDependency          = "DeleteDependency"
	MethodGetTaskDependencies       = "GetTaskDependencies"
	MethodGetProjectDependencyGraph = "GetProjectDependencyGraph"
	MethodCloneSprint               = "CloneSprint"
	MethodListEvents                = "ListEvents"
)

// FullMethod returns the gRPC path of a PlanningService method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type BurndownRequest struct {
	ProjectID string         `json:"project_id"`
	SprintID  string         `json:"sprint_id"`
	AsOf      *calendar.Date `json:"as_of,omitempty"`
}

type VelocityRequest struct {
	ProjectID     string `json:"project_id"`
	IncludeActive bool   `json:"include_active,omitempty"`
}

type BurndownsRequest struct {
	ProjectID  string `json:"project_id"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

// BurndownsResponse wraps the burndowns of several sprints.
type BurndownsResponse struct {
	Burndowns []*analytics.Burndown `json:"burndowns"`
}

// CreateDependencyRequest is also the HTTP body of
// POST /v1/projects/{project}/dependencies, where ProjectID comes from the
// path instead.
type CreateDependencyRequest struct {
	ProjectID     string `json:"project_id,omitempty"`
	PredecessorID string `json:"predecessor_id"`
	SuccessorID   string `json:"successor_id"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// Input converts the request into the service input.
func (r CreateDependencyRequest) Input() planning.DependencyInput {
	return planning.DependencyInput{
		PredecessorID: r.PredecessorID,
		SuccessorID:   r.SuccessorID,
		CreatedBy:     r.CreatedBy,
	}
}

type DeleteDependencyRequest struct {
	ProjectID    string `json:"project_id"`
	DependencyID string `json:"dependency_id"`
	Actor        string `json:"actor,omitempty"`
}

type TaskDependenciesRequest struct {
	ProjectID string `json:"project_id"`
	TaskID    string `json:"task_id"`
}

type GraphRequest struct {
	ProjectID string `json:"project_id"`
}

// CloneSprintRequest asks for a copy of a sprint. IncludeTasks defaults to
// true when omitted.
type CloneSprintRequest struct {
	ProjectID       string `json:"project_id,omitempty"`
	SprintID        string `json:"sprint_id,omitempty"`
	Name            string `json:"name,omitempty"`
	TargetProjectID string `json:"target_project_id,omitempty"`
	IncludeTasks    *bool  `json:"include_tasks,omitempty"`
	ShiftDays       int    `json:"shift_days,omitempty"`
	Actor           string `json:"actor,omitempty"`
}

// Options converts the request into service clone options.
func (r CloneSprintRequest) Options() planning.CloneOptions {
	include := true
	if r.IncludeTasks != nil {
		include = *r.IncludeTasks
	}
	return planning.CloneOptions{
		Name:            r.Name,
		TargetProjectID: r.TargetProjectID,
		IncludeTasks:    include,
		ShiftDays:       r.ShiftDays,
		Actor:           r.Actor,
	}
}

type ListEventsRequest struct {
	ProjectID string `json:"project_id"`
	Limit     int    `json:"limit,omitempty"`
}

type EventsResponse struct {
	Events []*model.Event `json:"events"`
}

// Empty is the response of calls that return nothing.
type Empty struct{}

// ErrorResponse is the JSON body of every failed HTTP request. Code is the
// planning error kind, such as "cycle_violation".
type ErrorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code,omitempty"`
	Cycle []string `json:"cycle,omitempty"`
}
