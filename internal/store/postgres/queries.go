package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// sprintColumns is the column list used for SELECT statements on the sprints table.
const sprintColumns = `id, project_id, name, goal, start_date, end_date, created_at, updated_at`

// taskColumns is the column list used for SELECT statements on the tasks table.
const taskColumns = `id, project_id, sprint_id, title, description, status, priority,
	estimate_hours, actual_hours, sort_order, created_at, updated_at`

// dependencyColumns is the column list used for SELECT statements on task_dependencies.
const dependencyColumns = `id, predecessor_id, successor_id, created_at, created_by`

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint.
const uniqueViolation = "23505"

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapConstraintError turns a unique violation into store.ErrDuplicate.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func queryGetProject(ctx context.Context, db executor, id string) (*model.Project, error) {
	var p model.Project
	err := db.QueryRowContext(ctx, `
		SELECT id, company_id, name, created_at
		FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.CompanyID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func queryListProjects(ctx context.Context, db executor) ([]*model.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, company_id, name, created_at
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func queryCreateSprint(ctx context.Context, db executor, s *model.Sprint) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sprints (id, project_id, name, goal, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.ProjectID, s.Name, nullString(s.Goal), s.StartDate, s.EndDate, s.CreatedAt, s.UpdatedAt,
	)
	return mapConstraintError(err)
}

func queryGetSprint(ctx context.Context, db executor, id string) (*model.Sprint, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, id)
	return scanSprint(row)
}

func queryListSprints(ctx context.Context, db executor, projectID string) ([]*model.Sprint, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+sprintColumns+`
		FROM sprints
		WHERE project_id = $1
		ORDER BY start_date, end_date, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSprints(rows)
}

func queryCreateTask(ctx context.Context, db executor, t *model.Task) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, project_id, sprint_id, title, description, status, priority,
			estimate_hours, actual_hours, sort_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID,
		t.ProjectID,
		nullStringPtr(t.SprintID),
		t.Title,
		nullString(t.Description),
		string(t.Status),
		t.Priority,
		t.EstimateHours,
		t.ActualHours,
		t.Order,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapConstraintError(err)
}

func queryGetTask(ctx context.Context, db executor, id string) (*model.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func queryListSprintTasks(ctx context.Context, db executor, sprintID string) ([]*model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE sprint_id = $1
		ORDER BY sort_order, created_at, id`, sprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func queryListProjectTasks(ctx context.Context, db executor, projectID string) ([]*model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = $1
		ORDER BY sort_order, created_at, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func queryGetTaskTags(ctx context.Context, db executor, taskID string) ([]*model.Tag, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT g.id, g.project_id, g.name, g.color
		FROM tags g
		JOIN task_tags tt ON tt.tag_id = g.id
		WHERE tt.task_id = $1
		ORDER BY g.name`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func queryFindTagByName(ctx context.Context, db executor, projectID, name string) (*model.Tag, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, project_id, name, color
		FROM tags WHERE project_id = $1 AND name = $2`, projectID, name)
	return scanTag(row)
}

func queryCreateTag(ctx context.Context, db executor, g *model.Tag) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tags (id, project_id, name, color)
		VALUES ($1, $2, $3, $4)`,
		g.ID, g.ProjectID, g.Name, nullString(g.Color),
	)
	return mapConstraintError(err)
}

func queryAttachTag(ctx context.Context, db executor, taskID, tagID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO task_tags (task_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		taskID, tagID,
	)
	return err
}

func queryAddDependency(ctx context.Context, db executor, d *model.TaskDependency) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO task_dependencies (id, predecessor_id, successor_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.PredecessorID, d.SuccessorID, d.CreatedAt, nullString(d.CreatedBy),
	)
	return mapConstraintError(err)
}

func queryGetDependency(ctx context.Context, db executor, id string) (*model.TaskDependency, error) {
	row := db.QueryRowContext(ctx, `SELECT `+dependencyColumns+` FROM task_dependencies WHERE id = $1`, id)
	return scanDependency(row)
}

func queryFindDependency(ctx context.Context, db executor, predecessorID, successorID string) (*model.TaskDependency, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+dependencyColumns+`
		FROM task_dependencies
		WHERE predecessor_id = $1 AND successor_id = $2`,
		predecessorID, successorID,
	)
	return scanDependency(row)
}

func queryRemoveDependency(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM task_dependencies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListTaskDependencies(ctx context.Context, db executor, taskID string) ([]*model.TaskDependency, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+dependencyColumns+`
		FROM task_dependencies
		WHERE predecessor_id = $1 OR successor_id = $1
		ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func queryListProjectDependencies(ctx context.Context, db executor, projectID string) ([]*model.TaskDependency, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT d.id, d.predecessor_id, d.successor_id, d.created_at, d.created_by
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.predecessor_id
		WHERE t.project_id = $1
		ORDER BY d.created_at, d.id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencies(rows)
}

// queryLockProject takes a transaction-scoped advisory lock keyed by the
// project id. It is released on commit or rollback.
func queryLockProject(ctx context.Context, db executor, projectID string) error {
	_, err := db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, projectID)
	return err
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, project_id, entity_id, actor, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.Topic, e.ProjectID, e.EntityID, nullString(e.Actor), jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryListEvents(ctx context.Context, db executor, projectID string, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, project_id, entity_id, actor, payload, created_at
		FROM events
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}
