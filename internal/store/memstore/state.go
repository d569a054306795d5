package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// state holds every table. Its methods mirror store.Store but take no locks;
// Store and txStore serialize access around them.
type state struct {
	projects map[string]*model.Project
	sprints  map[string]*model.Sprint
	tasks    map[string]*model.Task
	tags     map[string]*model.Tag
	taskTags map[string][]string // task id -> tag ids
	deps     map[string]*model.TaskDependency
	events   []*model.Event
	eventSeq int64
}

func newState() *state {
	return &state{
		projects: make(map[string]*model.Project),
		sprints:  make(map[string]*model.Sprint),
		tasks:    make(map[string]*model.Task),
		tags:     make(map[string]*model.Tag),
		taskTags: make(map[string][]string),
		deps:     make(map[string]*model.TaskDependency),
	}
}

// clone returns a deep copy used as the rollback point of a transaction.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.projects {
		c.projects[k] = copyProject(v)
	}
	for k, v := range s.sprints {
		c.sprints[k] = copySprint(v)
	}
	for k, v := range s.tasks {
		c.tasks[k] = copyTask(v)
	}
	for k, v := range s.tags {
		t := *v
		c.tags[k] = &t
	}
	for k, v := range s.taskTags {
		c.taskTags[k] = append([]string(nil), v...)
	}
	for k, v := range s.deps {
		d := *v
		c.deps[k] = &d
	}
	for _, e := range s.events {
		ev := *e
		c.events = append(c.events, &ev)
	}
	c.eventSeq = s.eventSeq
	return c
}

func copyProject(p *model.Project) *model.Project {
	c := *p
	return &c
}

func copySprint(sp *model.Sprint) *model.Sprint {
	c := *sp
	c.Tasks = nil
	return &c
}

func copyTask(t *model.Task) *model.Task {
	c := *t
	if t.SprintID != nil {
		id := *t.SprintID
		c.SprintID = &id
	}
	c.Tags = nil
	return &c
}

func (s *state) createProject(p *model.Project) error {
	if _, ok := s.projects[p.ID]; ok {
		return fmt.Errorf("%w: project %s", store.ErrDuplicate, p.ID)
	}
	s.projects[p.ID] = copyProject(p)
	return nil
}

func (s *state) getProject(_ context.Context, id string) (*model.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyProject(p), nil
}

func (s *state) listProjects(_ context.Context) ([]*model.Project, error) {
	out := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, copyProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *state) createSprint(_ context.Context, sp *model.Sprint) error {
	if _, ok := s.sprints[sp.ID]; ok {
		return fmt.Errorf("%w: sprint %s", store.ErrDuplicate, sp.ID)
	}
	if _, ok := s.projects[sp.ProjectID]; !ok {
		return fmt.Errorf("sprint %s: unknown project %s", sp.ID, sp.ProjectID)
	}
	s.sprints[sp.ID] = copySprint(sp)
	return nil
}

func (s *state) getSprint(_ context.Context, id string) (*model.Sprint, error) {
	sp, ok := s.sprints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copySprint(sp), nil
}

func (s *state) listSprints(_ context.Context, projectID string) ([]*model.Sprint, error) {
	result := []*model.Sprint{}
	for _, sp := range s.sprints {
		if sp.ProjectID == projectID {
			result = append(result, copySprint(sp))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		if a.EndDate != b.EndDate {
			return a.EndDate < b.EndDate
		}
		return a.ID < b.ID
	})
	return result, nil
}

func (s *state) createTask(_ context.Context, t *model.Task) error {
	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, t.ID)
	}
	if _, ok := s.projects[t.ProjectID]; !ok {
		return fmt.Errorf("task %s: unknown project %s", t.ID, t.ProjectID)
	}
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *state) getTask(_ context.Context, id string) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyTask(t), nil
}

func (s *state) listTasks(match func(*model.Task) bool) []*model.Task {
	result := []*model.Task{}
	for _, t := range s.tasks {
		if match(t) {
			result = append(result, copyTask(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result
}

func (s *state) listSprintTasks(_ context.Context, sprintID string) ([]*model.Task, error) {
	return s.listTasks(func(t *model.Task) bool {
		return t.SprintID != nil && *t.SprintID == sprintID
	}), nil
}

func (s *state) listProjectTasks(_ context.Context, projectID string) ([]*model.Task, error) {
	return s.listTasks(func(t *model.Task) bool { return t.ProjectID == projectID }), nil
}

func (s *state) getTaskTags(_ context.Context, taskID string) ([]*model.Tag, error) {
	var tags []*model.Tag
	for _, id := range s.taskTags[taskID] {
		if g, ok := s.tags[id]; ok {
			c := *g
			tags = append(tags, &c)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *state) findTagByName(_ context.Context, projectID, name string) (*model.Tag, error) {
	for _, g := range s.tags {
		if g.ProjectID == projectID && g.Name == name {
			c := *g
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *state) createTag(ctx context.Context, g *model.Tag) error {
	if _, err := s.findTagByName(ctx, g.ProjectID, g.Name); err == nil {
		return fmt.Errorf("%w: tag %q in project %s", store.ErrDuplicate, g.Name, g.ProjectID)
	}
	c := *g
	s.tags[g.ID] = &c
	return nil
}

func (s *state) attachTag(_ context.Context, taskID, tagID string) error {
	if _, ok := s.tasks[taskID]; !ok {
		return fmt.Errorf("attach tag: unknown task %s", taskID)
	}
	if _, ok := s.tags[tagID]; !ok {
		return fmt.Errorf("attach tag: unknown tag %s", tagID)
	}
	for _, id := range s.taskTags[taskID] {
		if id == tagID {
			return nil
		}
	}
	s.taskTags[taskID] = append(s.taskTags[taskID], tagID)
	return nil
}

func (s *state) addDependency(ctx context.Context, d *model.TaskDependency) error {
	if d.PredecessorID == d.SuccessorID {
		return fmt.Errorf("dependency %s: predecessor equals successor", d.ID)
	}
	if _, err := s.findDependency(ctx, d.PredecessorID, d.SuccessorID); err == nil {
		return fmt.Errorf("%w: %s -> %s", store.ErrDuplicate, d.PredecessorID, d.SuccessorID)
	}
	c := *d
	s.deps[d.ID] = &c
	return nil
}

func (s *state) getDependency(_ context.Context, id string) (*model.TaskDependency, error) {
	d, ok := s.deps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *d
	return &c, nil
}

func (s *state) findDependency(_ context.Context, predecessorID, successorID string) (*model.TaskDependency, error) {
	for _, d := range s.deps {
		if d.PredecessorID == predecessorID && d.SuccessorID == successorID {
			c := *d
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *state) removeDependency(_ context.Context, id string) error {
	if _, ok := s.deps[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.deps, id)
	return nil
}

func (s *state) listDependencies(match func(*model.TaskDependency) bool) []*model.TaskDependency {
	result := []*model.TaskDependency{}
	for _, d := range s.deps {
		if match(d) {
			c := *d
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (s *state) listTaskDependencies(_ context.Context, taskID string) ([]*model.TaskDependency, error) {
	return s.listDependencies(func(d *model.TaskDependency) bool {
		return d.PredecessorID == taskID || d.SuccessorID == taskID
	}), nil
}

func (s *state) listProjectDependencies(_ context.Context, projectID string) ([]*model.TaskDependency, error) {
	return s.listDependencies(func(d *model.TaskDependency) bool {
		t, ok := s.tasks[d.PredecessorID]
		return ok && t.ProjectID == projectID
	}), nil
}

func (s *state) recordEvent(_ context.Context, e *model.Event) error {
	s.eventSeq++
	e.ID = s.eventSeq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	c := *e
	s.events = append(s.events, &c)
	return nil
}

func (s *state) listEvents(_ context.Context, projectID string, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	var result []*model.Event
	for i := len(s.events) - 1; i >= 0 && len(result) < limit; i-- {
		if e := s.events[i]; e.ProjectID == projectID {
			c := *e
			result = append(result, &c)
		}
	}
	return result, nil
}
