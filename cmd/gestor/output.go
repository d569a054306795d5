package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/client"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

// barWidth is resized to the terminal before each command runs.
var barWidth = 24

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printError writes err to stderr, including the rejected cycle path when
// the server reported one.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Cycle) > 0 {
		fmt.Fprintf(os.Stderr, "  cycle: %s\n", strings.Join(apiErr.Cycle, " -> "))
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func printBurndown(w io.Writer, b *analytics.Burndown) {
	m := b.Metrics
	fmt.Fprintf(w, "%s  %s\n", ui.RenderAccent(b.Sprint.Name), ui.RenderMuted(b.Sprint.ID))
	fmt.Fprintf(w, "Window:      %s .. %s (%d days, %d elapsed, %d remaining)\n",
		b.Sprint.StartDate, b.Sprint.EndDate, m.TotalDays, m.DaysElapsed, m.DaysRemaining)
	fmt.Fprintf(w, "Hours:       %.1f estimated, %.1f completed, %.1f remaining, %.1f logged\n",
		m.TotalEstimatedHours, m.CompletedHours, m.RemainingHours, m.TotalActualHours)
	fmt.Fprintf(w, "Velocity:    %.2f h/day\n", m.Velocity)
	fmt.Fprintf(w, "Projection:  %s (day %.1f)  %s\n",
		m.ProjectedCompletionDate, m.ProjectedCompletionDays, ui.RenderTrack(m.IsOnTrack))

	if len(b.RealBurndown) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DAY\tDATE\tIDEAL\tREMAINING\t")
		for _, p := range b.RealBurndown {
			ideal := ""
			if p.Day < len(b.IdealBurndown) {
				ideal = fmt.Sprintf("%.1f", b.IdealBurndown[p.Day].IdealHours)
			}
			day := fmt.Sprintf("%d", p.Day)
			if p.Current {
				day += "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n",
				day, p.Date, ideal, p.RemainingHours, ui.Bar(p.RemainingHours, m.TotalEstimatedHours, barWidth))
		}
		tw.Flush()
	}

	if len(b.Tasks) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TASK\tSTATUS\tESTIMATE\tACTUAL\tTITLE")
		for _, t := range b.Tasks {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%s\n",
				t.ID, ui.RenderStatus(string(t.Status)), t.EstimateHours, t.ActualHours, truncate(t.Title, 50))
		}
		tw.Flush()
	}
}

func printBurndownList(w io.Writer, burndowns []*analytics.Burndown) {
	if len(burndowns) == 0 {
		fmt.Fprintln(w, "no sprints")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPRINT\tNAME\tSTART\tEND\tREMAINING\tTRACK\t")
	for _, b := range burndowns {
		m := b.Metrics
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f/%.1f\t%s\t%s\n",
			b.Sprint.ID, truncate(b.Sprint.Name, 30), b.Sprint.StartDate, b.Sprint.EndDate,
			m.RemainingHours, m.TotalEstimatedHours, ui.RenderTrack(m.IsOnTrack),
			ui.Bar(m.CompletedHours, m.TotalEstimatedHours, barWidth/2))
	}
	tw.Flush()
}

func printVelocity(w io.Writer, r *analytics.VelocityReport) {
	if !r.HasData {
		fmt.Fprintln(w, ui.RenderMuted(r.Message))
		return
	}
	var peak float64
	for _, rec := range r.VelocityHistory {
		peak = max(peak, rec.Velocity)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPRINT\tNAME\tEND\tPLANNED\tVELOCITY\tDONE\t")
	for _, rec := range r.VelocityHistory {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%d/%d (%.0f%%)\t%s\n",
			rec.SprintID, truncate(rec.SprintName, 30), rec.EndDate, rec.PlannedHours, rec.Velocity,
			rec.CompletedTasks, rec.TotalTasks, rec.CompletionRate, ui.Bar(rec.Velocity, peak, barWidth/2))
	}
	tw.Flush()

	m := r.Metrics
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average:  %.1f h/sprint over %d sprints\n", m.AverageVelocity, m.SprintCount)
	fmt.Fprintf(w, "Recent:   %.1f h/sprint\n", m.RecentAverage)
	fmt.Fprintf(w, "Forecast: %.1f h\n", m.Forecast)
	trend := fmt.Sprintf("%+.1f%%", m.Trend)
	switch {
	case m.Trend > 0:
		trend = ui.RenderOK(trend)
	case m.Trend < 0:
		trend = ui.RenderFail(trend)
	}
	fmt.Fprintf(w, "Trend:    %s\n", trend)
}

func printDependency(w io.Writer, d *model.TaskDependency) {
	fmt.Fprintf(w, "%s  %s -> %s\n", ui.RenderAccent(d.ID), d.PredecessorID, d.SuccessorID)
}

// printTaskDependencies lists the neighbours of a task together with the
// edge ids needed to remove them.
func printTaskDependencies(w io.Writer, taskID string, deps *model.TaskDependencies) {
	edgeFor := func(edges []*model.TaskDependency, match func(*model.TaskDependency) bool) string {
		for _, e := range edges {
			if match(e) {
				return e.ID
			}
		}
		return ""
	}
	section := func(title string, tasks []*model.Task, edge func(*model.Task) string) {
		fmt.Fprintln(w, ui.RenderAccent(title+":"))
		if len(tasks) == 0 {
			fmt.Fprintln(w, ui.RenderMuted("  (none)"))
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, t := range tasks {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				t.ID, ui.RenderStatus(string(t.Status)), truncate(t.Title, 50), ui.RenderMuted(edge(t)))
		}
		tw.Flush()
	}

	section("Predecessors", deps.Predecessors, func(t *model.Task) string {
		return edgeFor(deps.PredecessorDependencies, func(e *model.TaskDependency) bool {
			return e.PredecessorID == t.ID && e.SuccessorID == taskID
		})
	})
	section("Successors", deps.Successors, func(t *model.Task) string {
		return edgeFor(deps.SuccessorDependencies, func(e *model.TaskDependency) bool {
			return e.PredecessorID == taskID && e.SuccessorID == t.ID
		})
	})
}

func printGraph(w io.Writer, g *model.DependencyGraph) {
	titles := make(map[string]*model.Task, len(g.Nodes))
	for _, n := range g.Nodes {
		titles[n.ID] = n
	}
	blocked := make(map[string]bool, len(g.Blocked))
	for _, id := range g.Blocked {
		blocked[id] = true
	}
	preds := make(map[string][]string)
	for _, e := range g.Edges {
		preds[e.SuccessorID] = append(preds[e.SuccessorID], e.PredecessorID)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTASK\tSTATUS\tAFTER\tTITLE")
	for i, id := range g.Order {
		t := titles[id]
		status, title := "", ""
		if t != nil {
			status, title = string(t.Status), t.Title
		}
		marker := ""
		if blocked[id] {
			marker = " " + ui.RenderFail("blocked")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s%s\t%s\t%s\n",
			i+1, id, ui.RenderStatus(status), marker, strings.Join(preds[id], ","), truncate(title, 50))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d tasks, %d edges, %d blocked\n", len(g.Nodes), len(g.Edges), len(g.Blocked))
}

func printSprint(w io.Writer, s *model.Sprint) {
	fmt.Fprintf(w, "ID:          %s\n", s.ID)
	fmt.Fprintf(w, "Project:     %s\n", s.ProjectID)
	fmt.Fprintf(w, "Name:        %s\n", s.Name)
	if s.Goal != "" {
		fmt.Fprintf(w, "Goal:        %s\n", s.Goal)
	}
	fmt.Fprintf(w, "Window:      %s .. %s\n", s.StartDate, s.EndDate)
	if len(s.Tasks) > 0 {
		fmt.Fprintf(w, "Tasks:       %d\n", len(s.Tasks))
	}
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created At:  %s\n", s.CreatedAt.Format(timeLayout))
	}
}

func printEvents(w io.Writer, evts []*model.Event) {
	if len(evts) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tACTION\tENTITY\tACTOR")
	for _, e := range evts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.CreatedAt.Format(timeLayout), e.Action(), e.EntityID, e.Actor)
	}
	tw.Flush()
}
