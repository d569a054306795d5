package planning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/idgen"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// CloneOptions controls CloneSprint.
type CloneOptions struct {
	// Name of the new sprint. Default "<source name> (Copy)".
	Name string
	// TargetProjectID receives the copy. Default: the source project. It
	// must belong to the same company as the source project.
	TargetProjectID string
	// IncludeTasks copies the sprint's tasks along with it.
	IncludeTasks bool
	// ShiftDays moves both sprint dates; it may be negative.
	ShiftDays int
	// Actor is recorded on the audit event.
	Actor string
}

// copySuffix is appended to the source name when no name is given.
const copySuffix = " (Copy)"

// CloneSprint copies a sprint, and optionally its tasks with their tags,
// into a new sprint. Copied tasks restart in BACKLOG with no actual hours and
// keep their estimate and order. Tags are matched by name in the target
// project and created there when missing. Dependency edges are not copied.
// Either the whole copy is stored or nothing is.
func (s *Service) CloneSprint(ctx context.Context, projectID, sprintID string, opts CloneOptions) (*model.Sprint, error) {
	source, err := s.scopedSprint(ctx, s.store, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	sourceProject, err := s.projectScope(ctx, s.store, projectID)
	if err != nil {
		return nil, err
	}

	targetID := opts.TargetProjectID
	if targetID == "" {
		targetID = projectID
	}
	target := sourceProject
	if targetID != projectID {
		if target, err = s.projectScope(ctx, s.store, targetID); err != nil {
			return nil, err
		}
		if target.CompanyID != sourceProject.CompanyID {
			return nil, newError(CrossProjectViolation, "project %s belongs to a different company than project %s", targetID, projectID)
		}
	}

	name := opts.Name
	if name == "" {
		name = source.Name + copySuffix
	}
	start, err := source.StartDate.AddDaysChecked(opts.ShiftDays)
	end, endErr := source.EndDate.AddDaysChecked(opts.ShiftDays)
	if err = errors.Join(err, endErr); err != nil {
		return nil, &Error{Kind: InvalidArgument, Message: fmt.Sprintf("shift of %d days moves sprint %s out of range", opts.ShiftDays, source.ID), Err: err}
	}
	now := s.now().UTC()
	clone := &model.Sprint{
		ProjectID: target.ID,
		Name:      name,
		Goal:      source.Goal,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidateSprint(clone); err != nil {
		return nil, &Error{Kind: InvalidArgument, Message: err.Error(), Err: err}
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		clone.Tasks = nil
		id, err := s.ids.New(idgen.Sprint)
		if err != nil {
			return err
		}
		clone.ID = id
		if err := tx.CreateSprint(ctx, clone); err != nil {
			return fmt.Errorf("create sprint: %w", err)
		}

		clone.Tasks = []*model.Task{}
		if opts.IncludeTasks {
			tasks, err := tx.ListSprintTasks(ctx, source.ID)
			if err != nil {
				return fmt.Errorf("list tasks of sprint %s: %w", source.ID, err)
			}
			tags := make(map[string]*model.Tag) // target tags by name
			for _, t := range tasks {
				copied, err := s.cloneTask(ctx, tx, t, clone, tags)
				if err != nil {
					return err
				}
				clone.Tasks = append(clone.Tasks, copied)
			}
		}

		return s.recordEvent(ctx, tx, events.TopicSprintCloned, target.ID, clone.ID, opts.Actor, clonedEvent(source, clone))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sprint cloned", "source_sprint_id", source.ID, "sprint_id", clone.ID,
		"project_id", target.ID, "tasks", len(clone.Tasks), "shift_days", opts.ShiftDays)
	s.publish(ctx, events.TopicSprintCloned, clone.ID, clonedEvent(source, clone))
	return clone, nil
}

func (s *Service) cloneTask(ctx context.Context, tx store.Store, src *model.Task, sprint *model.Sprint, tags map[string]*model.Tag) (*model.Task, error) {
	id, err := s.ids.New(idgen.Task)
	if err != nil {
		return nil, err
	}
	sprintID := sprint.ID
	t := &model.Task{
		ID:            id,
		ProjectID:     sprint.ProjectID,
		SprintID:      &sprintID,
		Title:         src.Title,
		Description:   src.Description,
		Status:        model.TaskBacklog,
		Priority:      src.Priority,
		EstimateHours: src.EstimateHours,
		ActualHours:   0,
		Order:         src.Order,
		CreatedAt:     sprint.CreatedAt,
		UpdatedAt:     sprint.CreatedAt,
	}
	if err := model.ValidateTask(t); err != nil {
		return nil, &Error{Kind: InvalidArgument, Message: fmt.Sprintf("task %s: %v", src.ID, err), Err: err}
	}
	if err := tx.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task copy of %s: %w", src.ID, err)
	}

	srcTags, err := tx.GetTaskTags(ctx, src.ID)
	if err != nil {
		return nil, fmt.Errorf("get tags of task %s: %w", src.ID, err)
	}
	for _, st := range srcTags {
		tag, err := s.targetTag(ctx, tx, sprint.ProjectID, st, tags)
		if err != nil {
			return nil, err
		}
		if err := tx.AttachTag(ctx, t.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("attach tag %s to task %s: %w", tag.ID, t.ID, err)
		}
		t.Tags = append(t.Tags, tag)
	}
	return t, nil
}

// targetTag finds the tag named like src in projectID, creating it if needed.
func (s *Service) targetTag(ctx context.Context, tx store.Store, projectID string, src *model.Tag, cache map[string]*model.Tag) (*model.Tag, error) {
	if tag, ok := cache[src.Name]; ok {
		return tag, nil
	}
	tag, err := tx.FindTagByName(ctx, projectID, src.Name)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		id, err := s.ids.New(idgen.Tag)
		if err != nil {
			return nil, err
		}
		tag = &model.Tag{ID: id, ProjectID: projectID, Name: src.Name, Color: src.Color}
		if err := tx.CreateTag(ctx, tag); err != nil {
			return nil, fmt.Errorf("create tag %q: %w", src.Name, err)
		}
	default:
		return nil, fmt.Errorf("find tag %q: %w", src.Name, err)
	}
	cache[src.Name] = tag
	return tag, nil
}

func clonedEvent(source, clone *model.Sprint) events.SprintCloned {
	return events.SprintCloned{
		ProjectID:      clone.ProjectID,
		SourceSprintID: source.ID,
		Sprint:         clone,
		TaskCount:      len(clone.Tasks),
	}
}
