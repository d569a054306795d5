package store

import (
	"context"
	"errors"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint,
// such as a second edge between the same pair of tasks.
var ErrDuplicate = errors.New("duplicate record")

// Store defines the persistence interface for projects, sprints, tasks and
// their dependency edges. Lookups that find nothing return sql.ErrNoRows.
type Store interface {
	// Projects
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)

	// Sprints
	CreateSprint(ctx context.Context, sprint *model.Sprint) error
	GetSprint(ctx context.Context, id string) (*model.Sprint, error)
	ListSprints(ctx context.Context, projectID string) ([]*model.Sprint, error)

	// Tasks
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListSprintTasks(ctx context.Context, sprintID string) ([]*model.Task, error)
	ListProjectTasks(ctx context.Context, projectID string) ([]*model.Task, error)

	// Tags
	GetTaskTags(ctx context.Context, taskID string) ([]*model.Tag, error)
	FindTagByName(ctx context.Context, projectID, name string) (*model.Tag, error)
	CreateTag(ctx context.Context, tag *model.Tag) error
	AttachTag(ctx context.Context, taskID, tagID string) error

	// Dependencies
	AddDependency(ctx context.Context, dep *model.TaskDependency) error
	GetDependency(ctx context.Context, id string) (*model.TaskDependency, error)
	FindDependency(ctx context.Context, predecessorID, successorID string) (*model.TaskDependency, error)
	RemoveDependency(ctx context.Context, id string) error
	ListTaskDependencies(ctx context.Context, taskID string) ([]*model.TaskDependency, error)
	ListProjectDependencies(ctx context.Context, projectID string) ([]*model.TaskDependency, error)

	// LockProject serializes dependency writes of one project until the
	// surrounding transaction ends. Outside a transaction it is a no-op.
	LockProject(ctx context.Context, projectID string) error

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
