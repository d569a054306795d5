// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already opened database without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return queryGetProject(ctx, s.db, id)
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return queryListProjects(ctx, s.db)
}

func (s *PostgresStore) CreateSprint(ctx context.Context, sprint *model.Sprint) error {
	return queryCreateSprint(ctx, s.db, sprint)
}

func (s *PostgresStore) GetSprint(ctx context.Context, id string) (*model.Sprint, error) {
	return queryGetSprint(ctx, s.db, id)
}

func (s *PostgresStore) ListSprints(ctx context.Context, projectID string) ([]*model.Sprint, error) {
	return queryListSprints(ctx, s.db, projectID)
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *model.Task) error {
	return queryCreateTask(ctx, s.db, task)
}

func (s *PostgresStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return queryGetTask(ctx, s.db, id)
}

func (s *PostgresStore) ListSprintTasks(ctx context.Context, sprintID string) ([]*model.Task, error) {
	return queryListSprintTasks(ctx, s.db, sprintID)
}

func (s *PostgresStore) ListProjectTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	return queryListProjectTasks(ctx, s.db, projectID)
}

func (s *PostgresStore) GetTaskTags(ctx context.Context, taskID string) ([]*model.Tag, error) {
	return queryGetTaskTags(ctx, s.db, taskID)
}

func (s *PostgresStore) FindTagByName(ctx context.Context, projectID, name string) (*model.Tag, error) {
	return queryFindTagByName(ctx, s.db, projectID, name)
}

func (s *PostgresStore) CreateTag(ctx context.Context, tag *model.Tag) error {
	return queryCreateTag(ctx, s.db, tag)
}

func (s *PostgresStore) AttachTag(ctx context.Context, taskID, tagID string) error {
	return queryAttachTag(ctx, s.db, taskID, tagID)
}

func (s *PostgresStore) AddDependency(ctx context.Context, dep *model.TaskDependency) error {
	return queryAddDependency(ctx, s.db, dep)
}

func (s *PostgresStore) GetDependency(ctx context.Context, id string) (*model.TaskDependency, error) {
	return queryGetDependency(ctx, s.db, id)
}

func (s *PostgresStore) FindDependency(ctx context.Context, predecessorID, successorID string) (*model.TaskDependency, error) {
	return queryFindDependency(ctx, s.db, predecessorID, successorID)
}

func (s *PostgresStore) RemoveDependency(ctx context.Context, id string) error {
	return queryRemoveDependency(ctx, s.db, id)
}

func (s *PostgresStore) ListTaskDependencies(ctx context.Context, taskID string) ([]*model.TaskDependency, error) {
	return queryListTaskDependencies(ctx, s.db, taskID)
}

func (s *PostgresStore) ListProjectDependencies(ctx context.Context, projectID string) ([]*model.TaskDependency, error) {
	return queryListProjectDependencies(ctx, s.db, projectID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	return queryListEvents(ctx, s.db, projectID, limit)
}

// LockProject is a no-op outside a transaction; advisory xact locks are
// released as soon as the implicit single-statement transaction ends.
func (s *PostgresStore) LockProject(ctx context.Context, projectID string) error {
	return nil
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return queryGetProject(ctx, s.tx, id)
}

func (s *txStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return queryListProjects(ctx, s.tx)
}

func (s *txStore) CreateSprint(ctx context.Context, sprint *model.Sprint) error {
	return queryCreateSprint(ctx, s.tx, sprint)
}

func (s *txStore) GetSprint(ctx context.Context, id string) (*model.Sprint, error) {
	return queryGetSprint(ctx, s.tx, id)
}

func (s *txStore) ListSprints(ctx context.Context, projectID string) ([]*model.Sprint, error) {
	return queryListSprints(ctx, s.tx, projectID)
}

func (s *txStore) CreateTask(ctx context.Context, task *model.Task) error {
	return queryCreateTask(ctx, s.tx, task)
}

func (s *txStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return queryGetTask(ctx, s.tx, id)
}

func (s *txStore) ListSprintTasks(ctx context.Context, sprintID string) ([]*model.Task, error) {
	return queryListSprintTasks(ctx, s.tx, sprintID)
}

func (s *txStore) ListProjectTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	return queryListProjectTasks(ctx, s.tx, projectID)
}

func (s *txStore) GetTaskTags(ctx context.Context, taskID string) ([]*model.Tag, error) {
	return queryGetTaskTags(ctx, s.tx, taskID)
}

func (s *txStore) FindTagByName(ctx context.Context, projectID, name string) (*model.Tag, error) {
	return queryFindTagByName(ctx, s.tx, projectID, name)
}

func (s *txStore) CreateTag(ctx context.Context, tag *model.Tag) error {
	return queryCreateTag(ctx, s.tx, tag)
}

func (s *txStore) AttachTag(ctx context.Context, taskID, tagID string) error {
	return queryAttachTag(ctx, s.tx, taskID, tagID)
}

func (s *txStore) AddDependency(ctx context.Context, dep *model.TaskDependency) error {
	return queryAddDependency(ctx, s.tx, dep)
}

func (s *txStore) GetDependency(ctx context.Context, id string) (*model.TaskDependency, error) {
	return queryGetDependency(ctx, s.tx, id)
}

func (s *txStore) FindDependency(ctx context.Context, predecessorID, successorID string) (*model.TaskDependency, error) {
	return queryFindDependency(ctx, s.tx, predecessorID, successorID)
}

func (s *txStore) RemoveDependency(ctx context.Context, id string) error {
	return queryRemoveDependency(ctx, s.tx, id)
}

func (s *txStore) ListTaskDependencies(ctx context.Context, taskID string) ([]*model.TaskDependency, error) {
	return queryListTaskDependencies(ctx, s.tx, taskID)
}

func (s *txStore) ListProjectDependencies(ctx context.Context, projectID string) ([]*model.TaskDependency, error) {
	return queryListProjectDependencies(ctx, s.tx, projectID)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	return queryListEvents(ctx, s.tx, projectID, limit)
}

func (s *txStore) LockProject(ctx context.Context, projectID string) error {
	return queryLockProject(ctx, s.tx, projectID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
