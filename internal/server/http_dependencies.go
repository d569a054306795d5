package server

import (
	"net/http"
	"strconv"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
)

// handleCreateDependency handles POST /v1/projects/{project}/dependencies.
func (s *PlanningServer) handleCreateDependency(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDependencyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dep, err := s.svc.CreateDependency(r.Context(), r.PathValue("project"), req.Input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dep)
}

// handleDeleteDependency handles DELETE /v1/projects/{project}/dependencies/{dependency}.
// The actor is taken from the optional actor query parameter.
func (s *PlanningServer) handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteDependency(r.Context(), r.PathValue("project"), r.PathValue("dependency"), r.URL.Query().Get("actor"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetTaskDependencies handles GET /v1/projects/{project}/tasks/{task}/dependencies.
func (s *PlanningServer) handleGetTaskDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.svc.GetTaskDependencies(r.Context(), r.PathValue("project"), r.PathValue("task"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

// handleGetDependencyGraph handles GET /v1/projects/{project}/graph.
func (s *PlanningServer) handleGetDependencyGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetProjectDependencyGraph(r.Context(), r.PathValue("project"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleListEvents handles GET /v1/projects/{project}/events.
func (s *PlanningServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	evs, err := s.svc.ListEvents(r.Context(), r.PathValue("project"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.EventsResponse{Events: evs})
}
