package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/idgen"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
)

var sprintStart = calendar.New(2024, 1, 1)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New(kind idgen.Kind) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%04d", kind, g.n), nil
}

// newTestServer returns a server over a seeded memory store:
//
//	prj-1, prj-2 in company co-1; prj-x in company co-2
//	spr-1 in prj-1, 2024-01-01..2024-01-11, with tsk-1 (8h DONE) and tsk-2 (12h TODO)
//	tsk-a, tsk-b, tsk-c in prj-1 without a sprint
//
// The clock is fixed on day 5 of spr-1.
func newTestServer(t *testing.T) (*PlanningServer, *memstore.Store) {
	t.Helper()
	ms := memstore.New()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	for _, p := range []*model.Project{
		{ID: "prj-1", CompanyID: "co-1", Name: "Website"},
		{ID: "prj-2", CompanyID: "co-1", Name: "Mobile"},
		{ID: "prj-x", CompanyID: "co-2", Name: "Elsewhere"},
	} {
		must(ms.CreateProject(ctx, p))
	}
	must(ms.CreateSprint(ctx, &model.Sprint{
		ID: "spr-1", ProjectID: "prj-1", Name: "Sprint 1",
		StartDate: sprintStart, EndDate: sprintStart.AddDays(10),
	}))
	sprintID := "spr-1"
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-1", ProjectID: "prj-1", SprintID: &sprintID, Title: "Task 1",
		Status: model.TaskDone, EstimateHours: 8, UpdatedAt: sprintStart.AddDays(3).Time()}))
	must(ms.CreateTask(ctx, &model.Task{ID: "tsk-2", ProjectID: "prj-1", SprintID: &sprintID, Title: "Task 2",
		Status: model.TaskTodo, EstimateHours: 12, Order: 1}))
	for _, id := range []string{"tsk-a", "tsk-b", "tsk-c"} {
		must(ms.CreateTask(ctx, &model.Task{ID: id, ProjectID: "prj-1", Title: id, Status: model.TaskTodo}))
	}

	now := func() time.Time { return sprintStart.AddDays(5).Time().Add(12 * time.Hour) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := planning.New(ms, nil, planning.WithClock(now), planning.WithIDGenerator(&seqIDs{}), planning.WithLogger(logger))
	return NewPlanningServer(svc, logger), ms
}

// doRequest sends a request through the full HTTP handler.
func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d; body: %s", want, rec.Code, rec.Body.String())
	}
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rec.Body.String())
	}
	return v
}
