package sync

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
)

// seededStore holds prj-1 with one sprint, two tasks (tsk-b tagged), one
// edge tsk-a -> tsk-b, and an empty prj-2.
func seededStore(t *testing.T) *memstore.Store {
	t.Helper()
	ms := memstore.New()
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	start := calendar.New(2024, 3, 4)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(ms.CreateProject(ctx, &model.Project{ID: "prj-1", CompanyID: "co-1", Name: "Website", CreatedAt: now}))
	must(ms.CreateProject(ctx, &model.Project{ID: "prj-2", CompanyID: "co-1", Name: "Mobile", CreatedAt: now}))
	must(ms.CreateSprint(ctx, &model.Sprint{ID: "spr-1", ProjectID: "prj-1", Name: "Sprint 1", StartDate: start, EndDate: start.AddDays(13), CreatedAt: now, UpdatedAt: now}))

	sid := "spr-1"
	// Created out of ID order to check sorting.
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-b", ProjectID: "prj-1", SprintID: &sid, Title: "Second", Status: model.TaskTodo, EstimateHours: 5, CreatedAt: now, UpdatedAt: now}))
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-a", ProjectID: "prj-1", SprintID: &sid, Title: "First", Status: model.TaskDone, EstimateHours: 3, CreatedAt: now, UpdatedAt: now}))
	must(ms.CreateTag(ctx, &model.Tag{ID: "tag-1", ProjectID: "prj-1", Name: "frontend", Color: "#00f"}))
	must(ms.AttachTag(ctx, "tsk-b", "tag-1"))
	must(ms.AddDependency(ctx, &model.TaskDependency{ID: "dep-1", PredecessorID: "tsk-a", SuccessorID: "tsk-b", CreatedAt: now}))
	return ms
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
