// Package memstore implements store.Store in memory. It backs the server's
// memory:// database URL and the tests of packages built on store.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// Store is an in-memory store.Store. Transactions are serialized and roll
// back by restoring a snapshot taken when they began.
type Store struct {
	mu sync.Mutex // held for every call and for the whole of a transaction
	st *state
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// CreateProject adds a project. Projects are managed outside the planning
// service, so this is not part of store.Store.
func (m *Store) CreateProject(_ context.Context, p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.createProject(p)
}

func (m *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.getProject(ctx, id)
}

func (m *Store) ListProjects(ctx context.Context) ([]*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listProjects(ctx)
}

func (m *Store) CreateSprint(ctx context.Context, sprint *model.Sprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.createSprint(ctx, sprint)
}

func (m *Store) GetSprint(ctx context.Context, id string) (*model.Sprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.getSprint(ctx, id)
}

func (m *Store) ListSprints(ctx context.Context, projectID string) ([]*model.Sprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listSprints(ctx, projectID)
}

func (m *Store) CreateTask(ctx context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.createTask(ctx, task)
}

func (m *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.getTask(ctx, id)
}

func (m *Store) ListSprintTasks(ctx context.Context, sprintID string) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listSprintTasks(ctx, sprintID)
}

func (m *Store) ListProjectTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listProjectTasks(ctx, projectID)
}

func (m *Store) GetTaskTags(ctx context.Context, taskID string) ([]*model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.getTaskTags(ctx, taskID)
}

func (m *Store) FindTagByName(ctx context.Context, projectID, name string) (*model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.findTagByName(ctx, projectID, name)
}

func (m *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.createTag(ctx, tag)
}

func (m *Store) AttachTag(ctx context.Context, taskID, tagID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.attachTag(ctx, taskID, tagID)
}

func (m *Store) AddDependency(ctx context.Context, dep *model.TaskDependency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.addDependency(ctx, dep)
}

func (m *Store) GetDependency(ctx context.Context, id string) (*model.TaskDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.getDependency(ctx, id)
}

func (m *Store) FindDependency(ctx context.Context, predecessorID, successorID string) (*model.TaskDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.findDependency(ctx, predecessorID, successorID)
}

func (m *Store) RemoveDependency(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.removeDependency(ctx, id)
}

func (m *Store) ListTaskDependencies(ctx context.Context, taskID string) ([]*model.TaskDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listTaskDependencies(ctx, taskID)
}

func (m *Store) ListProjectDependencies(ctx context.Context, projectID string) ([]*model.TaskDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listProjectDependencies(ctx, projectID)
}

func (m *Store) RecordEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.recordEvent(ctx, event)
}

func (m *Store) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.listEvents(ctx, projectID, limit)
}

// LockProject is a no-op: the store lock already serializes transactions.
func (m *Store) LockProject(context.Context, string) error { return nil }

// RunInTransaction runs fn against a view of the store that sees its own
// writes. If fn fails every write it made is discarded.
func (m *Store) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(&txStore{st: m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

// Close is a no-op.
func (m *Store) Close() error { return nil }

// txStore is the view handed to a transaction. The parent Store lock is
// already held, so its methods take none.
type txStore struct {
	st *state
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (t *txStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return t.st.getProject(ctx, id)
}

func (t *txStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return t.st.listProjects(ctx)
}

func (t *txStore) CreateSprint(ctx context.Context, sprint *model.Sprint) error {
	return t.st.createSprint(ctx, sprint)
}

func (t *txStore) GetSprint(ctx context.Context, id string) (*model.Sprint, error) {
	return t.st.getSprint(ctx, id)
}

func (t *txStore) ListSprints(ctx context.Context, projectID string) ([]*model.Sprint, error) {
	return t.st.listSprints(ctx, projectID)
}

func (t *txStore) CreateTask(ctx context.Context, task *model.Task) error {
	return t.st.createTask(ctx, task)
}

func (t *txStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return t.st.getTask(ctx, id)
}

func (t *txStore) ListSprintTasks(ctx context.Context, sprintID string) ([]*model.Task, error) {
	return t.st.listSprintTasks(ctx, sprintID)
}

func (t *txStore) ListProjectTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	return t.st.listProjectTasks(ctx, projectID)
}

func (t *txStore) GetTaskTags(ctx context.Context, taskID string) ([]*model.Tag, error) {
	return t.st.getTaskTags(ctx, taskID)
}

func (t *txStore) FindTagByName(ctx context.Context, projectID, name string) (*model.Tag, error) {
	return t.st.findTagByName(ctx, projectID, name)
}

func (t *txStore) CreateTag(ctx context.Context, tag *model.Tag) error {
	return t.st.createTag(ctx, tag)
}

func (t *txStore) AttachTag(ctx context.Context, taskID, tagID string) error {
	return t.st.attachTag(ctx, taskID, tagID)
}

func (t *txStore) AddDependency(ctx context.Context, dep *model.TaskDependency) error {
	return t.st.addDependency(ctx, dep)
}

func (t *txStore) GetDependency(ctx context.Context, id string) (*model.TaskDependency, error) {
	return t.st.getDependency(ctx, id)
}

func (t *txStore) FindDependency(ctx context.Context, predecessorID, successorID string) (*model.TaskDependency, error) {
	return t.st.findDependency(ctx, predecessorID, successorID)
}

func (t *txStore) RemoveDependency(ctx context.Context, id string) error {
	return t.st.removeDependency(ctx, id)
}

func (t *txStore) ListTaskDependencies(ctx context.Context, taskID string) ([]*model.TaskDependency, error) {
	return t.st.listTaskDependencies(ctx, taskID)
}

func (t *txStore) ListProjectDependencies(ctx context.Context, projectID string) ([]*model.TaskDependency, error) {
	return t.st.listProjectDependencies(ctx, projectID)
}

func (t *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return t.st.recordEvent(ctx, event)
}

func (t *txStore) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	return t.st.listEvents(ctx, projectID, limit)
}

func (t *txStore) LockProject(context.Context, string) error { return nil }

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (t *txStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(t)
}

func (t *txStore) Close() error { return nil }
