package planning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/depgraph"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/idgen"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// DependencyInput describes an edge to create.
type DependencyInput struct {
	PredecessorID string `json:"predecessor_id"`
	SuccessorID   string `json:"successor_id"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// CreateDependency adds the edge predecessor -> successor inside projectID.
// The checks run in this order: self edge, missing task, tasks of different
// projects, task outside projectID, existing edge, cycle. Writes to the
// edges of one project are serialized so the cycle check always sees the
// latest graph.
func (s *Service) CreateDependency(ctx context.Context, projectID string, in DependencyInput) (*model.TaskDependency, error) {
	if in.PredecessorID == "" || in.SuccessorID == "" {
		return nil, newError(InvalidArgument, "predecessor_id and successor_id are required")
	}
	if in.PredecessorID == in.SuccessorID {
		return nil, newError(InvalidArgument, "task %s cannot depend on itself", in.PredecessorID)
	}

	pred, err := s.store.GetTask(ctx, in.PredecessorID)
	if err != nil {
		return nil, lookupError(err, "task", in.PredecessorID)
	}
	succ, err := s.store.GetTask(ctx, in.SuccessorID)
	if err != nil {
		return nil, lookupError(err, "task", in.SuccessorID)
	}
	if pred.ProjectID != succ.ProjectID {
		return nil, newError(CrossProjectViolation, "tasks %s and %s belong to different projects", pred.ID, succ.ID)
	}
	if pred.ProjectID != projectID {
		return nil, newError(NotFound, "task %s not found", pred.ID)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	dep := &model.TaskDependency{
		PredecessorID: pred.ID,
		SuccessorID:   succ.ID,
		CreatedBy:     in.CreatedBy,
	}
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockProject(ctx, projectID); err != nil {
			return fmt.Errorf("lock project %s: %w", projectID, err)
		}

		if existing, err := tx.FindDependency(ctx, pred.ID, succ.ID); err == nil {
			return newError(DuplicateEdge, "dependency %s -> %s already exists as %s", pred.ID, succ.ID, existing.ID)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find dependency: %w", err)
		}

		edges, err := tx.ListProjectDependencies(ctx, projectID)
		if err != nil {
			return fmt.Errorf("list dependencies of project %s: %w", projectID, err)
		}
		if cycle := depgraph.FromDependencies(edges).WouldCreateCycle(pred.ID, succ.ID); cycle != nil {
			return &Error{Kind: CycleViolation, Message: "dependency would create a cycle", Cycle: cycle}
		}

		id, err := s.ids.New(idgen.Dependency)
		if err != nil {
			return err
		}
		dep.ID = id
		dep.CreatedAt = s.now().UTC()
		if err := tx.AddDependency(ctx, dep); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return &Error{Kind: DuplicateEdge, Message: fmt.Sprintf("dependency %s -> %s already exists", pred.ID, succ.ID), Err: err}
			}
			return fmt.Errorf("add dependency: %w", err)
		}
		return s.recordEvent(ctx, tx, events.TopicDependencyCreated, projectID, dep.ID, dep.CreatedBy,
			events.DependencyCreated{ProjectID: projectID, Dependency: dep})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dependency created", "project_id", projectID, "dependency_id", dep.ID,
		"predecessor_id", dep.PredecessorID, "successor_id", dep.SuccessorID)
	s.publish(ctx, events.TopicDependencyCreated, dep.ID, events.DependencyCreated{ProjectID: projectID, Dependency: dep})
	return dep, nil
}

// DeleteDependency removes an edge of projectID. Deleting an edge that does
// not exist, including one already deleted, is NotFound.
func (s *Service) DeleteDependency(ctx context.Context, projectID, dependencyID, actor string) error {
	unlock := s.locks.Lock(projectID)
	defer unlock()

	var removed *model.TaskDependency
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockProject(ctx, projectID); err != nil {
			return fmt.Errorf("lock project %s: %w", projectID, err)
		}
		dep, err := tx.GetDependency(ctx, dependencyID)
		if err != nil {
			return lookupError(err, "dependency", dependencyID)
		}
		pred, err := tx.GetTask(ctx, dep.PredecessorID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("get task %s: %w", dep.PredecessorID, err)
		}
		if pred == nil || pred.ProjectID != projectID {
			return newError(NotFound, "dependency %s not found", dependencyID)
		}
		if err := tx.RemoveDependency(ctx, dep.ID); err != nil {
			return lookupError(err, "dependency", dependencyID)
		}
		removed = dep
		return s.recordEvent(ctx, tx, events.TopicDependencyDeleted, projectID, dep.ID, actor, deletedEvent(projectID, dep))
	})
	if err != nil {
		return err
	}

	s.logger.Info("dependency deleted", "project_id", projectID, "dependency_id", dependencyID)
	s.publish(ctx, events.TopicDependencyDeleted, dependencyID, deletedEvent(projectID, removed))
	return nil
}

func deletedEvent(projectID string, dep *model.TaskDependency) events.DependencyDeleted {
	return events.DependencyDeleted{
		ProjectID:     projectID,
		DependencyID:  dep.ID,
		PredecessorID: dep.PredecessorID,
		SuccessorID:   dep.SuccessorID,
	}
}

// GetTaskDependencies returns the direct predecessors and successors of a
// task together with the edges linking them, so a caller can delete one.
func (s *Service) GetTaskDependencies(ctx context.Context, projectID, taskID string) (*model.TaskDependencies, error) {
	if _, err := s.scopedTask(ctx, s.store, projectID, taskID); err != nil {
		return nil, err
	}
	edges, err := s.store.ListTaskDependencies(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies of task %s: %w", taskID, err)
	}

	result := &model.TaskDependencies{
		Predecessors:            []*model.Task{},
		Successors:              []*model.Task{},
		PredecessorDependencies: []*model.TaskDependency{},
		SuccessorDependencies:   []*model.TaskDependency{},
	}
	for _, e := range edges {
		switch taskID {
		case e.SuccessorID:
			t, err := s.store.GetTask(ctx, e.PredecessorID)
			if err != nil {
				return nil, fmt.Errorf("get task %s: %w", e.PredecessorID, err)
			}
			result.Predecessors = append(result.Predecessors, t)
			result.PredecessorDependencies = append(result.PredecessorDependencies, e)
		case e.PredecessorID:
			t, err := s.store.GetTask(ctx, e.SuccessorID)
			if err != nil {
				return nil, fmt.Errorf("get task %s: %w", e.SuccessorID, err)
			}
			result.Successors = append(result.Successors, t)
			result.SuccessorDependencies = append(result.SuccessorDependencies, e)
		}
	}
	return result, nil
}

// GetProjectDependencyGraph returns every task and edge of a project with a
// dependency order and the tasks waiting on an unfinished predecessor.
func (s *Service) GetProjectDependencyGraph(ctx context.Context, projectID string) (*model.DependencyGraph, error) {
	if _, err := s.projectScope(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks of project %s: %w", projectID, err)
	}
	edges, err := s.store.ListProjectDependencies(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies of project %s: %w", projectID, err)
	}

	g := depgraph.FromDependencies(edges)
	done := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		g.AddNode(t.ID)
		done[t.ID] = t.IsDone()
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		// Edges written before cycle checks existed can still form one.
		s.logger.Warn("dependency graph is not acyclic", "project_id", projectID, "error", err)
		order = []string{}
	}
	blocked := g.Blocked(func(id string) bool { return done[id] })
	if blocked == nil {
		blocked = []string{}
	}

	return &model.DependencyGraph{
		ProjectID: projectID,
		Nodes:     tasks,
		Edges:     edges,
		Order:     order,
		Blocked:   blocked,
	}, nil
}
