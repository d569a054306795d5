package sync

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// Importer is a store that can also create projects. Projects are managed
// outside the planning service, so only seedable stores offer it.
type Importer interface {
	store.Store
	CreateProject(ctx context.Context, p *model.Project) error
}

// ImportStats counts the records restored by ImportJSONL.
type ImportStats struct {
	Projects     int
	Sprints      int
	Tasks        int
	Tags         int
	Dependencies int
}

// maxLineSize bounds one JSONL record.
const maxLineSize = 4 << 20

// ImportJSONL restores the records of one or more ExportJSONL outputs into
// dst. Tags are created on first use and attached to their tasks. The
// import runs in a single transaction.
func ImportJSONL(ctx context.Context, dst Importer, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	type line struct {
		Type    string          `json:"type"`
		Version string          `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	var records []line
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			return stats, fmt.Errorf("line %d: %w", n, err)
		}
		if l.Type == "header" && l.Version != FormatVersion {
			return stats, fmt.Errorf("line %d: unsupported export version %q", n, l.Version)
		}
		records = append(records, l)
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read export: %w", err)
	}

	// Projects are created outside the transaction: they are not part of
	// store.Store.
	for _, l := range records {
		if l.Type != "project" {
			continue
		}
		var p model.Project
		if err := json.Unmarshal(l.Data, &p); err != nil {
			return stats, fmt.Errorf("decode project: %w", err)
		}
		if err := dst.CreateProject(ctx, &p); err != nil {
			return stats, fmt.Errorf("create project %s: %w", p.ID, err)
		}
		stats.Projects++
	}

	err := dst.RunInTransaction(ctx, func(tx store.Store) error {
		for _, l := range records {
			switch l.Type {
			case "sprint":
				var sp model.Sprint
				if err := json.Unmarshal(l.Data, &sp); err != nil {
					return fmt.Errorf("decode sprint: %w", err)
				}
				sp.Tasks = nil
				if err := tx.CreateSprint(ctx, &sp); err != nil {
					return fmt.Errorf("create sprint %s: %w", sp.ID, err)
				}
				stats.Sprints++
			case "task":
				var t model.Task
				if err := json.Unmarshal(l.Data, &t); err != nil {
					return fmt.Errorf("decode task: %w", err)
				}
				if err := tx.CreateTask(ctx, &t); err != nil {
					return fmt.Errorf("create task %s: %w", t.ID, err)
				}
				stats.Tasks++
				for _, tag := range t.Tags {
					created, err := ensureTag(ctx, tx, tag)
					if err != nil {
						return err
					}
					if created {
						stats.Tags++
					}
					if err := tx.AttachTag(ctx, t.ID, tag.ID); err != nil {
						return fmt.Errorf("attach tag %s to %s: %w", tag.ID, t.ID, err)
					}
				}
			case "dependency":
				var d model.TaskDependency
				if err := json.Unmarshal(l.Data, &d); err != nil {
					return fmt.Errorf("decode dependency: %w", err)
				}
				if err := tx.AddDependency(ctx, &d); err != nil {
					return fmt.Errorf("add dependency %s: %w", d.ID, err)
				}
				stats.Dependencies++
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// ensureTag creates tag unless its project already has one with that name.
// An existing tag replaces tag.ID so the caller attaches the stored one.
func ensureTag(ctx context.Context, tx store.Store, tag *model.Tag) (bool, error) {
	existing, err := tx.FindTagByName(ctx, tag.ProjectID, tag.Name)
	switch {
	case err == nil:
		tag.ID = existing.ID
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("find tag %s: %w", tag.Name, err)
	}
	if err := tx.CreateTag(ctx, tag); err != nil {
		return false, fmt.Errorf("create tag %s: %w", tag.Name, err)
	}
	return true, nil
}
