package server

import (
	"net/http"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
)

// handleCloneSprint handles POST /v1/projects/{project}/sprints/{sprint}/clone.
// The body is optional; include_tasks defaults to true.
func (s *PlanningServer) handleCloneSprint(w http.ResponseWriter, r *http.Request) {
	var req api.CloneSprintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sprint, err := s.svc.CloneSprint(r.Context(), r.PathValue("project"), r.PathValue("sprint"), req.Options())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sprint)
}
