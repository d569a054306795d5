package planning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
)

func tagTask(t *testing.T, ms *memstore.Store, tag *model.Tag, taskID string) {
	t.Helper()
	ctx := context.Background()
	if existing, err := ms.FindTagByName(ctx, tag.ProjectID, tag.Name); err == nil {
		tag = existing
	} else {
		mustDo(t, ms.CreateTag(ctx, tag))
	}
	mustDo(t, ms.AttachTag(ctx, taskID, tag.ID))
}

func TestCloneSprint(t *testing.T) {
	svc, ms, pub := newTestService(t)
	ctx := context.Background()
	link(t, svc, "tsk-1", "tsk-2")

	clone, err := svc.CloneSprint(ctx, "prj-1", "spr-1", CloneOptions{Name: "Sprint 2", IncludeTasks: true, ShiftDays: 14, Actor: "ana"})
	if err != nil {
		t.Fatalf("CloneSprint: %v", err)
	}
	if clone.ID == "spr-1" || clone.ProjectID != "prj-1" || clone.Name != "Sprint 2" || clone.Goal != "Launch" {
		t.Errorf("clone = %+v", clone)
	}
	if clone.StartDate != sprintStart.AddDays(14) || clone.EndDate != sprintStart.AddDays(24) {
		t.Errorf("dates = %s..%s", clone.StartDate, clone.EndDate)
	}

	tasks, err := ms.ListSprintTasks(ctx, clone.ID)
	if err != nil {
		t.Fatalf("ListSprintTasks: %v", err)
	}
	if len(tasks) != 2 || len(clone.Tasks) != 2 {
		t.Fatalf("expected 2 copied tasks, stored %d, returned %d", len(tasks), len(clone.Tasks))
	}
	for i, want := range []struct {
		title    string
		estimate float64
	}{{"Task 1", 8}, {"Task 2", 12}} {
		got := tasks[i]
		if got.Title != want.title || got.EstimateHours != want.estimate || got.Order != i {
			t.Errorf("task %d = %+v", i, got)
		}
		if got.Status != model.TaskBacklog || got.ActualHours != 0 {
			t.Errorf("task %d not reset: status=%s actual=%v", i, got.Status, got.ActualHours)
		}
		if got.SprintID == nil || *got.SprintID != clone.ID {
			t.Errorf("task %d sprint = %v", i, got.SprintID)
		}
		deps, _ := ms.ListTaskDependencies(ctx, got.ID)
		if len(deps) != 0 {
			t.Errorf("task %d copied edges %v", i, deps)
		}
	}

	// The source sprint is untouched.
	src, _ := ms.ListSprintTasks(ctx, "spr-1")
	if len(src) != 2 || src[0].Status != model.TaskDone || src[0].ActualHours != 9 {
		t.Errorf("source tasks changed: %+v", src)
	}

	if got := pub.published(); !reflect.DeepEqual(got, []string{events.TopicDependencyCreated, events.TopicSprintCloned}) {
		t.Errorf("published = %v", got)
	}
	cloned := pub.events[1].(events.SprintCloned)
	if cloned.SourceSprintID != "spr-1" || cloned.TaskCount != 2 || cloned.Sprint.ID != clone.ID {
		t.Errorf("cloned event = %+v", cloned)
	}
	evs, _ := ms.ListEvents(ctx, "prj-1", 1)
	if len(evs) != 1 || evs[0].Topic != events.TopicSprintCloned || evs[0].EntityID != clone.ID || evs[0].Actor != "ana" {
		t.Errorf("latest event = %v", evs)
	}
}

func TestCloneSprint_Defaults(t *testing.T) {
	svc, ms, _ := newTestService(t)
	ctx := context.Background()

	clone, err := svc.CloneSprint(ctx, "prj-1", "spr-1", CloneOptions{})
	if err != nil {
		t.Fatalf("CloneSprint: %v", err)
	}
	if clone.Name != "Sprint 1 (Copy)" {
		t.Errorf("name = %q", clone.Name)
	}
	if clone.StartDate != sprintStart || clone.EndDate != sprintStart.AddDays(10) {
		t.Errorf("dates moved without a shift: %s..%s", clone.StartDate, clone.EndDate)
	}
	tasks, _ := ms.ListSprintTasks(ctx, clone.ID)
	if len(tasks) != 0 || len(clone.Tasks) != 0 {
		t.Errorf("tasks copied without IncludeTasks: %v", tasks)
	}
	sprints, _ := ms.ListSprints(ctx, "prj-1")
	if len(sprints) != 2 {
		t.Errorf("expected 2 sprints, got %d", len(sprints))
	}
}

func TestCloneSprint_NegativeShift(t *testing.T) {
	svc, _, _ := newTestService(t)

	clone, err := svc.CloneSprint(context.Background(), "prj-1", "spr-1", CloneOptions{ShiftDays: -7})
	if err != nil {
		t.Fatalf("CloneSprint: %v", err)
	}
	if clone.StartDate != sprintStart.AddDays(-7) || clone.EndDate != sprintStart.AddDays(3) {
		t.Errorf("dates = %s..%s", clone.StartDate, clone.EndDate)
	}
}

func TestCloneSprint_TagsInTargetProject(t *testing.T) {
	svc, ms, _ := newTestService(t)
	ctx := context.Background()
	tagTask(t, ms, &model.Tag{ID: "tag-be", ProjectID: "prj-1", Name: "backend", Color: "#0000ff"}, "tsk-1")
	tagTask(t, ms, &model.Tag{ID: "tag-fe", ProjectID: "prj-1", Name: "frontend"}, "tsk-1")
	tagTask(t, ms, &model.Tag{ID: "tag-be", ProjectID: "prj-1", Name: "backend"}, "tsk-2")
	mustDo(t, ms.CreateTag(ctx, &model.Tag{ID: "tag-fe2", ProjectID: "prj-2", Name: "frontend"}))

	clone, err := svc.CloneSprint(ctx, "prj-1", "spr-1", CloneOptions{TargetProjectID: "prj-2", IncludeTasks: true})
	if err != nil {
		t.Fatalf("CloneSprint: %v", err)
	}
	if clone.ProjectID != "prj-2" {
		t.Fatalf("clone landed in %s", clone.ProjectID)
	}

	backend, err := ms.FindTagByName(ctx, "prj-2", "backend")
	if err != nil {
		t.Fatalf("backend tag not created in target: %v", err)
	}
	if backend.ID == "tag-be" || backend.Color != "#0000ff" {
		t.Errorf("backend tag = %+v", backend)
	}

	tasks, _ := ms.ListSprintTasks(ctx, clone.ID)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.ProjectID != "prj-2" {
			t.Errorf("task %s in project %s", task.ID, task.ProjectID)
		}
	}
	first, _ := ms.GetTaskTags(ctx, tasks[0].ID)
	if ids := tagIDs(first); !reflect.DeepEqual(ids, []string{backend.ID, "tag-fe2"}) {
		t.Errorf("first task tags = %v", ids)
	}
	second, _ := ms.GetTaskTags(ctx, tasks[1].ID)
	if ids := tagIDs(second); !reflect.DeepEqual(ids, []string{backend.ID}) {
		t.Errorf("second task tags = %v", ids)
	}

	evs, _ := ms.ListEvents(ctx, "prj-2", 0)
	if len(evs) != 1 || evs[0].Topic != events.TopicSprintCloned {
		t.Errorf("target project events = %v", evs)
	}
}

func tagIDs(tags []*model.Tag) []string {
	ids := make([]string, 0, len(tags))
	for _, g := range tags {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestCloneSprint_Rejections(t *testing.T) {
	svc, ms, pub := newTestService(t)
	mustDo(t, ms.CreateSprint(context.Background(), &model.Sprint{
		ID: "spr-2", ProjectID: "prj-2", Name: "Mobile 1", StartDate: sprintStart, EndDate: sprintStart.AddDays(5),
	}))

	for _, tc := range []struct {
		name      string
		projectID string
		sprintID  string
		opts      CloneOptions
		kind      ErrorKind
	}{
		{"MissingSprint", "prj-1", "spr-missing", CloneOptions{}, NotFound},
		{"SprintOfOtherProject", "prj-1", "spr-2", CloneOptions{}, NotFound},
		{"MissingTarget", "prj-1", "spr-1", CloneOptions{TargetProjectID: "prj-missing"}, NotFound},
		{"OtherCompany", "prj-1", "spr-1", CloneOptions{TargetProjectID: "prj-x", IncludeTasks: true}, CrossProjectViolation},
		{"BlankName", "prj-1", "spr-1", CloneOptions{Name: "   "}, InvalidArgument},
		{"ShiftWrapsAround", "prj-1", "spr-1", CloneOptions{ShiftDays: 1 << 32}, InvalidArgument},
		{"ShiftPastYear9999", "prj-1", "spr-1", CloneOptions{ShiftDays: 3_000_000}, InvalidArgument},
		{"ShiftBeforeYear1", "prj-1", "spr-1", CloneOptions{ShiftDays: -1 << 40, IncludeTasks: true}, InvalidArgument},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CloneSprint(context.Background(), tc.projectID, tc.sprintID, tc.opts)
			requireKind(t, err, tc.kind)
		})
	}

	for _, p := range []string{"prj-1", "prj-x"} {
		sprints, _ := ms.ListSprints(context.Background(), p)
		if p == "prj-1" && len(sprints) != 1 || p == "prj-x" && len(sprints) != 0 {
			t.Errorf("rejected clones stored sprints in %s: %v", p, sprints)
		}
	}
	if got := pub.published(); len(got) != 0 {
		t.Errorf("rejected clones published %v", got)
	}
}

// failingStore fails CreateTag once budget successful calls are used up,
// inside and outside transactions.
type failingStore struct {
	store.Store
	mu     *sync.Mutex
	budget *int
}

func newFailingStore(st store.Store, budget int) *failingStore {
	return &failingStore{Store: st, mu: &sync.Mutex{}, budget: &budget}
}

var errTagStorage = errors.New("tag storage unavailable")

func (f *failingStore) CreateTag(ctx context.Context, tag *model.Tag) error {
	f.mu.Lock()
	if *f.budget == 0 {
		f.mu.Unlock()
		return errTagStorage
	}
	*f.budget--
	f.mu.Unlock()
	return f.Store.CreateTag(ctx, tag)
}

func (f *failingStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.RunInTransaction(ctx, func(tx store.Store) error {
		return fn(&failingStore{Store: tx, mu: f.mu, budget: f.budget})
	})
}

func TestCloneSprint_IsAtomic(t *testing.T) {
	_, ms, _ := newTestService(t)
	ctx := context.Background()
	mustDo(t, ms.CreateSprint(ctx, &model.Sprint{
		ID: "spr-big", ProjectID: "prj-1", Name: "Big", StartDate: sprintStart, EndDate: sprintStart.AddDays(10),
	}))
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("big-%d", i)
		addTask(t, ms, &model.Task{ID: id, ProjectID: "prj-1", Title: id, Status: model.TaskTodo, EstimateHours: 1, Order: i}, "spr-big")
		tagTask(t, ms, &model.Tag{ID: fmt.Sprintf("tag-t%d", i), ProjectID: "prj-1", Name: fmt.Sprintf("t%d", i)}, id)
	}

	pub := &recordingPublisher{}
	svc := New(newFailingStore(ms, 2), pub, WithClock(fixedNow), WithIDGenerator(&seqIDs{}))

	_, err := svc.CloneSprint(ctx, "prj-1", "spr-big", CloneOptions{TargetProjectID: "prj-2", IncludeTasks: true})
	if !errors.Is(err, errTagStorage) {
		t.Fatalf("expected tag storage failure, got %v", err)
	}
	requireKind(t, err, KindInternal)

	sprints, _ := ms.ListSprints(ctx, "prj-2")
	tasks, _ := ms.ListProjectTasks(ctx, "prj-2")
	evs, _ := ms.ListEvents(ctx, "prj-2", 0)
	if len(sprints) != 0 || len(tasks) != 0 || len(evs) != 0 {
		t.Errorf("partial clone visible: sprints=%d tasks=%d events=%d", len(sprints), len(tasks), len(evs))
	}
	for i := 0; i < 5; i++ {
		if _, err := ms.FindTagByName(ctx, "prj-2", fmt.Sprintf("t%d", i)); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("tag t%d left behind in target: %v", i, err)
		}
	}
	if got := pub.published(); len(got) != 0 {
		t.Errorf("failed clone published %v", got)
	}
}
