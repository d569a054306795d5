package server

import (
	"net/http"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
)

// handleGetSprintBurndown handles GET /v1/projects/{project}/sprints/{sprint}/burndown.
// An optional as_of=YYYY-MM-DD replaces today as the reference day.
func (s *PlanningServer) handleGetSprintBurndown(w http.ResponseWriter, r *http.Request) {
	var asOf *calendar.Date
	if v := r.URL.Query().Get("as_of"); v != "" {
		d, err := calendar.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be a YYYY-MM-DD date")
			return
		}
		asOf = &d
	}

	bd, err := s.svc.GetSprintBurndown(r.Context(), r.PathValue("project"), r.PathValue("sprint"), asOf)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

// handleGetProjectVelocity handles GET /v1/projects/{project}/velocity.
func (s *PlanningServer) handleGetProjectVelocity(w http.ResponseWriter, r *http.Request) {
	includeActive, err := queryBool(r, "include_active")
	if err != nil {
		writeError(w, http.StatusBadRequest, "include_active must be a boolean")
		return
	}

	report, err := s.svc.GetProjectVelocity(r.Context(), r.PathValue("project"), includeActive)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGetProjectBurndowns handles GET /v1/projects/{project}/burndowns.
func (s *PlanningServer) handleGetProjectBurndowns(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active")
	if err != nil {
		writeError(w, http.StatusBadRequest, "active must be a boolean")
		return
	}

	bds, err := s.svc.GetProjectBurndowns(r.Context(), r.PathValue("project"), activeOnly)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BurndownsResponse{Burndowns: bds})
}
