package events

import (
	"context"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// Event topic constants
const (
	TopicDependencyCreated = "gestor.dependency.created"
	TopicDependencyDeleted = "gestor.dependency.deleted"
	TopicSprintCloned      = "gestor.sprint.cloned"

	// TopicAll matches every topic published by the planning service.
	TopicAll = "gestor.>"
)

// DependencyCreated is published after an edge is inserted.
type DependencyCreated struct {
	ProjectID  string                `json:"project_id"`
	Dependency *model.TaskDependency `json:"dependency"`
}

// DependencyDeleted is published after an edge is removed.
type DependencyDeleted struct {
	ProjectID     string `json:"project_id"`
	DependencyID  string `json:"dependency_id"`
	PredecessorID string `json:"predecessor_id"`
	SuccessorID   string `json:"successor_id"`
}

// SprintCloned is published after a clone committed. TaskCount is the
// number of tasks copied into the new sprint.
type SprintCloned struct {
	ProjectID      string        `json:"project_id"`
	SourceSprintID string        `json:"source_sprint_id"`
	Sprint         *model.Sprint `json:"sprint"`
	TaskCount      int           `json:"task_count"`
}

func (e DependencyCreated) EventProject() string { return e.ProjectID }
func (e DependencyDeleted) EventProject() string { return e.ProjectID }
func (e SprintCloned) EventProject() string      { return e.ProjectID }

// ProjectOf returns the project an event belongs to, or "" when the event
// does not say.
func ProjectOf(event any) string {
	if p, ok := event.(interface{ EventProject() string }); ok {
		return p.EventProject()
	}
	return ""
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	// SubscribeProject is Subscribe limited to one project's events.
	SubscribeProject(topic, projectID string) (<-chan []byte, func(), error)
	Close() error
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
