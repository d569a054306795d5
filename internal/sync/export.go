package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// FormatVersion is the version written into every export header.
const FormatVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	ProjectID       string    `json:"project_id"`
	SprintCount     int       `json:"sprint_count"`
	TaskCount       int       `json:"task_count"`
	DependencyCount int       `json:"dependency_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes one project's sprints, tasks and dependency edges as
// JSONL to w. Tasks carry their tags. Every section is sorted by ID so two
// exports of the same state are identical apart from the header timestamp.
func ExportJSONL(ctx context.Context, s store.Store, projectID string, w io.Writer) error {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project %s: %w", projectID, err)
	}

	sprints, err := s.ListSprints(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("list sprints: %w", err)
	}
	sort.Slice(sprints, func(i, j int) bool { return sprints[i].ID < sprints[j].ID })

	tasks, err := s.ListProjectTasks(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		tags, err := s.GetTaskTags(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("get tags for %s: %w", t.ID, err)
		}
		t.Tags = tags
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	deps, err := s.ListProjectDependencies(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("list dependencies: %w", err)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:         FormatVersion,
		Type:            "header",
		Timestamp:       time.Now().UTC(),
		ProjectID:       project.ID,
		SprintCount:     len(sprints),
		TaskCount:       len(tasks),
		DependencyCount: len(deps),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	if err := enc.Encode(record{Type: "project", Data: project}); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	for _, sp := range sprints {
		if err := enc.Encode(record{Type: "sprint", Data: sp}); err != nil {
			return fmt.Errorf("encode sprint %s: %w", sp.ID, err)
		}
	}
	for _, t := range tasks {
		if err := enc.Encode(record{Type: "task", Data: t}); err != nil {
			return fmt.Errorf("encode task %s: %w", t.ID, err)
		}
	}
	for _, d := range deps {
		if err := enc.Encode(record{Type: "dependency", Data: d}); err != nil {
			return fmt.Errorf("encode dependency %s: %w", d.ID, err)
		}
	}
	return nil
}

// ObjectName is the destination name of a project's export.
func ObjectName(projectID string) string {
	return projectID + ".jsonl"
}

