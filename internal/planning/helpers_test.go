package planning

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/idgen"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
)

// sprintStart is day 0 of the seeded sprint; the test clock sits on day 5.
var sprintStart = calendar.New(2024, 1, 1)

func fixedNow() time.Time {
	return sprintStart.AddDays(5).Time().Add(12 * time.Hour)
}

// seqIDs generates predictable ids.
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

// recordingPublisher keeps every published topic.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// newTestService returns a service over a seeded memory store:
//
//	prj-1, prj-2 in company co-1; prj-x in company co-2
//	spr-1 in prj-1, 2024-01-01..2024-01-11, with
//	  tsk-1 8h DONE (updated on day 3) and tsk-2 12h TODO
func newTestService(t *testing.T) (*Service, *memstore.Store, *recordingPublisher) {
	t.Helper()
	ms := memstore.New()
	ctx := context.Background()

	for _, p := range []*model.Project{
		{ID: "prj-1", CompanyID: "co-1", Name: "Website"},
		{ID: "prj-2", CompanyID: "co-1", Name: "Mobile"},
		{ID: "prj-x", CompanyID: "co-2", Name: "Elsewhere"},
	} {
		mustDo(t, ms.CreateProject(ctx, p))
	}
	mustDo(t, ms.CreateSprint(ctx, &model.Sprint{
		ID: "spr-1", ProjectID: "prj-1", Name: "Sprint 1", Goal: "Launch",
		StartDate: sprintStart, EndDate: sprintStart.AddDays(10),
	}))
	addTask(t, ms, &model.Task{ID: "tsk-1", ProjectID: "prj-1", Title: "Task 1", Status: model.TaskDone,
		EstimateHours: 8, ActualHours: 9, Order: 0, UpdatedAt: sprintStart.AddDays(3).Time().Add(15 * time.Hour)}, "spr-1")
	addTask(t, ms, &model.Task{ID: "tsk-2", ProjectID: "prj-1", Title: "Task 2", Status: model.TaskTodo,
		EstimateHours: 12, Order: 1, UpdatedAt: sprintStart.Time()}, "spr-1")

	pub := &recordingPublisher{}
	svc := New(ms, pub, WithClock(fixedNow), WithIDGenerator(&seqIDs{}))
	return svc, ms, pub
}

func addTask(t *testing.T, ms *memstore.Store, task *model.Task, sprintID string) {
	t.Helper()
	if sprintID != "" {
		task.SprintID = &sprintID
	}
	mustDo(t, ms.CreateTask(context.Background(), task))
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// requireKind asserts that err is a planning error of the given kind.
func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
