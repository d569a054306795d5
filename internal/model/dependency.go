package model

import "time"

// TaskDependency is a directed edge Predecessor -> Successor between two
// tasks of the same project: the successor should not start before the
// predecessor is done.
type TaskDependency struct {
	ID            string    `json:"id"`
	PredecessorID string    `json:"predecessor_id"`
	SuccessorID   string    `json:"successor_id"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by,omitempty"`
}

// TaskDependencies groups the neighbours of one task together with the raw
// edges, so callers can remove a specific edge later.
type TaskDependencies struct {
	Predecessors            []*Task           `json:"predecessors"`
	Successors              []*Task           `json:"successors"`
	PredecessorDependencies []*TaskDependency `json:"predecessor_dependencies"`
	SuccessorDependencies   []*TaskDependency `json:"successor_dependencies"`
}

// DependencyGraph is the read-only view of a project's dependency edges.
type DependencyGraph struct {
	ProjectID string            `json:"project_id"`
	Nodes     []*Task           `json:"nodes"`
	Edges     []*TaskDependency `json:"edges"`
	Order     []string          `json:"order"`
	Blocked   []string          `json:"blocked"`
}
