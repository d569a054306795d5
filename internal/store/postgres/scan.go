package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSprint scans a single row into a model.Sprint.
// The row must contain columns in the order defined by sprintColumns.
func scanSprint(row scannable) (*model.Sprint, error) {
	var s model.Sprint
	var goal sql.NullString
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &goal, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Goal = goal.String
	return &s, nil
}

func scanSprints(rows *sql.Rows) ([]*model.Sprint, error) {
	sprints := []*model.Sprint{}
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sprints, nil
}

// scanTask scans a single row into a model.Task.
// The row must contain columns in the order defined by taskColumns.
func scanTask(row scannable) (*model.Task, error) {
	var t model.Task
	var (
		sprintID    sql.NullString
		description sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&sprintID,
		&t.Title,
		&description,
		&t.Status,
		&t.Priority,
		&t.EstimateHours,
		&t.ActualHours,
		&t.Order,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sprintID.Valid {
		id := sprintID.String
		t.SprintID = &id
	}
	t.Description = description.String
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*model.Task, error) {
	tasks := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func scanTag(row scannable) (*model.Tag, error) {
	var g model.Tag
	var color sql.NullString
	if err := row.Scan(&g.ID, &g.ProjectID, &g.Name, &color); err != nil {
		return nil, err
	}
	g.Color = color.String
	return &g, nil
}

func scanTags(rows *sql.Rows) ([]*model.Tag, error) {
	var tags []*model.Tag
	for rows.Next() {
		g, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// scanDependency scans a single row into a model.TaskDependency.
func scanDependency(row scannable) (*model.TaskDependency, error) {
	var d model.TaskDependency
	var createdBy sql.NullString
	if err := row.Scan(&d.ID, &d.PredecessorID, &d.SuccessorID, &d.CreatedAt, &createdBy); err != nil {
		return nil, err
	}
	d.CreatedBy = createdBy.String
	return &d, nil
}

func scanDependencies(rows *sql.Rows) ([]*model.TaskDependency, error) {
	deps := []*model.TaskDependency{}
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.ProjectID, &e.EntityID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringPtr converts a *string to sql.NullString.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
