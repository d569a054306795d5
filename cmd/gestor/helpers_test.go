package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/client"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/server"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/ui"
	"github.com/spf13/cobra"
)

var sprintStart = calendar.New(2024, 1, 1)

// withTestServer points planningClient at an HTTP server over a seeded
// in-memory store:
//
//	prj-1 and prj-2 in co-1
//	spr-1 in prj-1, 2024-01-01..2024-01-11, with tsk-1 (8h DONE) and tsk-2 (12h TODO)
//	tsk-a, tsk-b, tsk-c in prj-1 without a sprint
func withTestServer(t *testing.T) *memstore.Store {
	t.Helper()
	ui.ForceNoColor()

	ms := memstore.New()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(ms.CreateProject(ctx, &model.Project{ID: "prj-1", CompanyID: "co-1", Name: "Website"}))
	must(ms.CreateProject(ctx, &model.Project{ID: "prj-2", CompanyID: "co-1", Name: "Mobile"}))
	must(ms.CreateSprint(ctx, &model.Sprint{
		ID: "spr-1", ProjectID: "prj-1", Name: "Sprint 1",
		StartDate: sprintStart, EndDate: sprintStart.AddDays(10),
	}))
	sid := "spr-1"
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-1", ProjectID: "prj-1", SprintID: &sid, Title: "Task 1",
		Status: model.TaskDone, EstimateHours: 8, UpdatedAt: sprintStart.AddDays(3).Time()}))
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-2", ProjectID: "prj-1", SprintID: &sid, Title: "Task 2",
		Status: model.TaskTodo, EstimateHours: 12, Order: 1}))
	for _, id := range []string{"tsk-a", "tsk-b", "tsk-c"} {
		must(ms.CreateTask(ctx, &model.Task{ID: id, ProjectID: "prj-1", Title: id, Status: model.TaskTodo}))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ps := server.NewPlanningServer(planning.New(ms, nil, planning.WithLogger(logger)), logger)
	srv := httptest.NewServer(ps.NewHTTPHandler(""))

	prevClient, prevJSON, prevActor := planningClient, jsonOutput, actor
	planningClient = client.NewHTTPClient(srv.URL, "")
	jsonOutput = false
	actor = "tester"
	t.Cleanup(func() {
		srv.Close()
		planningClient, jsonOutput, actor = prevClient, prevJSON, prevActor
	})
	return ms
}

// run invokes cmd.RunE with args and returns what it printed.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

// setFlag sets a flag for the duration of the test.
func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	f := cmd.Flags().Lookup(name)
	if f == nil {
		t.Fatalf("no flag %q on %s", name, cmd.Name())
	}
	prev := f.Value.String()
	if err := f.Value.Set(value); err != nil {
		t.Fatalf("set --%s: %v", name, err)
	}
	t.Cleanup(func() { _ = f.Value.Set(prev) })
}
