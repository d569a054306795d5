package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// ErrInvalidWindow is returned when a sprint's end date precedes its start.
var ErrInvalidWindow = errors.New("invalid sprint window")

// SprintSummary is the sprint metadata echoed in analytics results.
type SprintSummary struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Name      string        `json:"name"`
	Goal      string        `json:"goal,omitempty"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
}

// BurndownMetrics are the sprint-level totals and projections.
type BurndownMetrics struct {
	TotalEstimatedHours     float64       `json:"total_estimated_hours"`
	TotalActualHours        float64       `json:"total_actual_hours"`
	CompletedHours          float64       `json:"completed_hours"`
	RemainingHours          float64       `json:"remaining_hours"`
	TotalDays               int           `json:"total_days"`
	DaysElapsed             int           `json:"days_elapsed"`
	DaysRemaining           int           `json:"days_remaining"`
	Velocity                float64       `json:"velocity"`
	ProjectedCompletionDays float64       `json:"projected_completion_days"`
	ProjectedCompletionDate calendar.Date `json:"projected_completion_date"`
	IsOnTrack               bool          `json:"is_on_track"`
}

// IdealPoint is one day of the linear reference burndown.
type IdealPoint struct {
	Day        int           `json:"day"`
	Date       calendar.Date `json:"date"`
	IdealHours float64       `json:"ideal_hours"`
}

// RealPoint is one day of the observed burndown. The trailing point of an
// unfinished sprint is marked Current and counts every task done so far.
type RealPoint struct {
	Day            int           `json:"day"`
	Date           calendar.Date `json:"date"`
	RemainingHours float64       `json:"remaining_hours"`
	CompletedHours float64       `json:"completed_hours"`
	Current        bool          `json:"current,omitempty"`
}

// TaskSummary is the per-task view included in a burndown.
type TaskSummary struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Status        model.TaskStatus `json:"status"`
	EstimateHours float64          `json:"estimate_hours"`
	ActualHours   float64          `json:"actual_hours"`
	Contribution  float64          `json:"contribution"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Burndown is the full burndown result for one sprint.
type Burndown struct {
	Sprint        SprintSummary   `json:"sprint"`
	Metrics       BurndownMetrics `json:"metrics"`
	IdealBurndown []IdealPoint    `json:"ideal_burndown"`
	RealBurndown  []RealPoint     `json:"real_burndown"`
	Tasks         []TaskSummary   `json:"tasks"`
}

// Summarize returns the analytics view of a sprint.
func Summarize(s *model.Sprint) SprintSummary {
	return SprintSummary{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Name:      s.Name,
		Goal:      s.Goal,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
}

// ComputeBurndown builds the ideal and real burndown of a sprint as seen on
// ref. tasks are the tasks currently assigned to the sprint.
func ComputeBurndown(sprint *model.Sprint, tasks []*model.Task, ref calendar.Date, cfg Config) (*Burndown, error) {
	cfg = cfg.normalized()

	w, err := calendar.NewWindow(sprint.StartDate, sprint.EndDate, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	totalDays := w.TotalDays()
	elapsed := w.DaysElapsed()

	var (
		totalEstimated float64
		totalActual    float64
		completed      float64
	)
	summaries := make([]TaskSummary, 0, len(tasks))
	// DONE tasks keyed by the calendar day of their last update.
	type doneTask struct {
		day          calendar.Date
		contribution float64
	}
	var done []doneTask

	for _, t := range tasks {
		est := nonNegative(t.EstimateHours)
		act := nonNegative(t.ActualHours)
		totalEstimated += est
		totalActual += act

		contrib := Contribution(t, cfg.Strategies)
		if t.IsDone() {
			completed += contrib
			done = append(done, doneTask{day: calendar.In(t.UpdatedAt, cfg.Location), contribution: contrib})
		}
		summaries = append(summaries, TaskSummary{
			ID:            t.ID,
			Title:         t.Title,
			Status:        t.Status,
			EstimateHours: est,
			ActualHours:   act,
			Contribution:  contrib,
			UpdatedAt:     t.UpdatedAt,
		})
	}

	ideal := make([]IdealPoint, 0, totalDays+1)
	if totalDays == 0 {
		ideal = append(ideal, IdealPoint{Day: 0, Date: w.Start, IdealHours: totalEstimated})
	} else {
		perDay := totalEstimated / float64(totalDays)
		for day := 0; day <= totalDays; day++ {
			ideal = append(ideal, IdealPoint{
				Day:        day,
				Date:       w.Day(day),
				IdealHours: math.Max(0, totalEstimated-perDay*float64(day)),
			})
		}
	}

	observed := make([]RealPoint, 0, elapsed+2)
	for day := 0; day <= elapsed; day++ {
		date := w.Day(day)
		var burned float64
		for _, d := range done {
			if !d.day.After(date) {
				burned += d.contribution
			}
		}
		observed = append(observed, RealPoint{
			Day:            day,
			Date:           date,
			RemainingHours: math.Max(0, totalEstimated-burned),
			CompletedHours: burned,
		})
	}
	if !w.Ended() {
		observed = append(observed, RealPoint{
			Day:            elapsed,
			Date:           w.Day(elapsed),
			RemainingHours: math.Max(0, totalEstimated-completed),
			CompletedHours: completed,
			Current:        true,
		})
	}

	metrics := BurndownMetrics{
		TotalEstimatedHours: totalEstimated,
		TotalActualHours:    totalActual,
		CompletedHours:      completed,
		RemainingHours:      math.Max(0, totalEstimated-completed),
		TotalDays:           totalDays,
		DaysElapsed:         elapsed,
		DaysRemaining:       w.DaysRemaining(),
	}
	if elapsed > 0 {
		metrics.Velocity = completed / float64(elapsed)
	}

	projected := float64(totalDays)
	if metrics.Velocity > 0 {
		projected = float64(elapsed) + metrics.RemainingHours/metrics.Velocity
		// Projections beyond the horizon are clamped to it.
		if limit := float64(max(cfg.ProjectionHorizonDays, totalDays+1)); projected > limit {
			projected = limit
		}
	}
	metrics.ProjectedCompletionDays = projected
	metrics.ProjectedCompletionDate = w.Start.AddDays(int(math.Ceil(projected)))
	metrics.IsOnTrack = projected <= float64(totalDays)

	return &Burndown{
		Sprint:        Summarize(sprint),
		Metrics:       metrics,
		IdealBurndown: ideal,
		RealBurndown:  observed,
		Tasks:         summaries,
	}, nil
}
