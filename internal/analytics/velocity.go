package analytics

import (
	"sort"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// SprintTasks pairs a sprint with the tasks assigned to it.
type SprintTasks struct {
	Sprint *model.Sprint
	Tasks  []*model.Task
}

// VelocityRecord is the derived throughput of one sprint. It is never
// persisted.
type VelocityRecord struct {
	SprintID       string        `json:"sprint_id"`
	SprintName     string        `json:"sprint_name"`
	StartDate      calendar.Date `json:"start_date"`
	EndDate        calendar.Date `json:"end_date"`
	PlannedHours   float64       `json:"planned_hours"`
	ActualHours    float64       `json:"actual_hours"`
	Velocity       float64       `json:"velocity"`
	CompletedTasks int           `json:"completed_tasks"`
	TotalTasks     int           `json:"total_tasks"`
	CompletionRate float64       `json:"completion_rate"`
}

// VelocityMetrics aggregates a velocity history.
type VelocityMetrics struct {
	AverageVelocity float64 `json:"average_velocity"`
	RecentAverage   float64 `json:"recent_average"`
	Forecast        float64 `json:"forecast"`
	Trend           float64 `json:"trend"`
	SprintCount     int     `json:"sprint_count"`
}

// VelocityReport is the project velocity result. HasData is false when the
// history is empty, in which case every metric is zero.
type VelocityReport struct {
	ProjectID       string           `json:"project_id,omitempty"`
	VelocityHistory []VelocityRecord `json:"velocity_history"`
	Metrics         VelocityMetrics  `json:"metrics"`
	HasData         bool             `json:"has_data"`
	Message         string           `json:"message,omitempty"`
}

// NoDataMessage is reported with an empty velocity history.
const NoDataMessage = "no completed sprints to compute velocity from"

// RecordFor computes the velocity record of one sprint.
func RecordFor(st SprintTasks, cfg Config) VelocityRecord {
	cfg = cfg.normalized()

	rec := VelocityRecord{
		SprintID:   st.Sprint.ID,
		SprintName: st.Sprint.Name,
		StartDate:  st.Sprint.StartDate,
		EndDate:    st.Sprint.EndDate,
		TotalTasks: len(st.Tasks),
	}
	for _, t := range st.Tasks {
		rec.PlannedHours += nonNegative(t.EstimateHours)
		rec.ActualHours += nonNegative(t.ActualHours)
		if t.IsDone() {
			rec.CompletedTasks++
			rec.Velocity += Contribution(t, cfg.Strategies)
		}
	}
	if rec.TotalTasks > 0 {
		rec.CompletionRate = float64(rec.CompletedTasks) / float64(rec.TotalTasks) * 100
	}
	return rec
}

// SortChronologically orders sprints by start date, then end date, then id.
func SortChronologically(history []SprintTasks) {
	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i].Sprint, history[j].Sprint
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		if a.EndDate != b.EndDate {
			return a.EndDate < b.EndDate
		}
		return a.ID < b.ID
	})
}

// ComputeVelocity builds the velocity history and aggregate metrics of a set
// of sprints. The input order is irrelevant; sprints are sorted
// chronologically before the recent window is taken.
func ComputeVelocity(history []SprintTasks, cfg Config) *VelocityReport {
	cfg = cfg.normalized()

	sorted := make([]SprintTasks, len(history))
	copy(sorted, history)
	SortChronologically(sorted)

	report := &VelocityReport{VelocityHistory: make([]VelocityRecord, 0, len(sorted))}
	for _, st := range sorted {
		report.VelocityHistory = append(report.VelocityHistory, RecordFor(st, cfg))
	}

	n := len(report.VelocityHistory)
	report.Metrics.SprintCount = n
	if n == 0 {
		report.Message = NoDataMessage
		return report
	}
	report.HasData = true

	report.Metrics.AverageVelocity = meanVelocity(report.VelocityHistory)
	recent := report.VelocityHistory[max(0, n-cfg.RecentWindow):]
	report.Metrics.RecentAverage = meanVelocity(recent)
	report.Metrics.Forecast = report.Metrics.RecentAverage
	if avg := report.Metrics.AverageVelocity; avg > 0 {
		report.Metrics.Trend = (report.Metrics.RecentAverage - avg) / avg * 100
	}
	return report
}

func meanVelocity(records []VelocityRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Velocity
	}
	return sum / float64(len(records))
}
