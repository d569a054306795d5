package model

import (
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
)

// Sprint is a fixed calendar window grouping a subset of a project's tasks.
type Sprint struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Name      string        `json:"name"`
	Goal      string        `json:"goal,omitempty"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Populated by queries that load the sprint together with its tasks.
	Tasks []*Task `json:"tasks,omitempty"`
}

// Project is the owner of sprints, tasks, tags and dependency edges.
// CompanyID is the tenant boundary.
type Project struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a project-scoped label attached to tasks.
type Tag struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
}
