package planning

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// GetSprintBurndown computes the burndown of a sprint as of asOf, or as of
// today when asOf is nil. Identical concurrent requests share one
// computation; callers must not modify the result. The shared computation
// outlives any single caller, so one caller giving up does not fail the
// others.
func (s *Service) GetSprintBurndown(ctx context.Context, projectID, sprintID string, asOf *calendar.Date) (*analytics.Burndown, error) {
	ref := s.today()
	if asOf != nil {
		ref = *asOf
	}

	key := projectID + "/" + sprintID + "@" + ref.String()
	shared := context.WithoutCancel(ctx)
	ch := s.burndowns.DoChan(key, func() (any, error) {
		sp, err := s.scopedSprint(shared, s.store, projectID, sprintID)
		if err != nil {
			return nil, err
		}
		tasks, err := s.store.ListSprintTasks(shared, sp.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks of sprint %s: %w", sp.ID, err)
		}
		return s.burndown(sp, tasks, ref)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*analytics.Burndown), nil
	}
}

func (s *Service) burndown(sp *model.Sprint, tasks []*model.Task, ref calendar.Date) (*analytics.Burndown, error) {
	bd, err := analytics.ComputeBurndown(sp, tasks, ref, s.cfg)
	if errors.Is(err, analytics.ErrInvalidWindow) {
		return nil, &Error{Kind: InvalidArgument, Message: fmt.Sprintf("sprint %s: end date %s is before start date %s", sp.ID, sp.EndDate, sp.StartDate), Err: err}
	}
	return bd, err
}

// GetProjectVelocity computes the velocity history of a project. Only
// sprints that ended before today count unless includeActive is set, in
// which case every sprint does.
func (s *Service) GetProjectVelocity(ctx context.Context, projectID string, includeActive bool) (*analytics.VelocityReport, error) {
	if _, err := s.projectScope(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	sprints, err := s.store.ListSprints(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sprints of project %s: %w", projectID, err)
	}

	today := s.today()
	var selected []*model.Sprint
	for _, sp := range sprints {
		if includeActive || sp.EndDate.Before(today) {
			selected = append(selected, sp)
		}
	}

	history, err := s.loadSprintTasks(ctx, selected)
	if err != nil {
		return nil, err
	}
	report := analytics.ComputeVelocity(history, s.cfg)
	report.ProjectID = projectID
	return report, nil
}

// GetProjectBurndowns computes the burndown of every sprint of a project, or
// of the sprints running today when activeOnly is set. Results follow the
// chronological sprint order.
func (s *Service) GetProjectBurndowns(ctx context.Context, projectID string, activeOnly bool) ([]*analytics.Burndown, error) {
	if _, err := s.projectScope(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	sprints, err := s.store.ListSprints(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sprints of project %s: %w", projectID, err)
	}

	today := s.today()
	var selected []*model.Sprint
	for _, sp := range sprints {
		if !activeOnly || (!today.Before(sp.StartDate) && !today.After(sp.EndDate)) {
			selected = append(selected, sp)
		}
	}

	history, err := s.loadSprintTasks(ctx, selected)
	if err != nil {
		return nil, err
	}

	results := make([]*analytics.Burndown, len(history))
	g := new(errgroup.Group)
	g.SetLimit(s.parallelism)
	for i, st := range history {
		g.Go(func() error {
			bd, err := s.burndown(st.Sprint, st.Tasks, today)
			if err != nil {
				return err
			}
			results[i] = bd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadSprintTasks fetches the tasks of each sprint concurrently, keeping
// the order of sprints.
func (s *Service) loadSprintTasks(ctx context.Context, sprints []*model.Sprint) ([]analytics.SprintTasks, error) {
	history := make([]analytics.SprintTasks, len(sprints))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, sp := range sprints {
		g.Go(func() error {
			tasks, err := s.store.ListSprintTasks(gctx, sp.ID)
			if err != nil {
				return fmt.Errorf("list tasks of sprint %s: %w", sp.ID, err)
			}
			history[i] = analytics.SprintTasks{Sprint: sp, Tasks: tasks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return history, nil
}
