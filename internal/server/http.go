package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header. Every request is logged and
// tagged with an X-Request-ID.
func (s *PlanningServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/projects/{project}/sprints/{sprint}/burndown", s.handleGetSprintBurndown)
	mux.HandleFunc("POST /v1/projects/{project}/sprints/{sprint}/clone", s.handleCloneSprint)
	mux.HandleFunc("GET /v1/projects/{project}/burndowns", s.handleGetProjectBurndowns)
	mux.HandleFunc("GET /v1/projects/{project}/velocity", s.handleGetProjectVelocity)
	mux.HandleFunc("POST /v1/projects/{project}/dependencies", s.handleCreateDependency)
	mux.HandleFunc("DELETE /v1/projects/{project}/dependencies/{dependency}", s.handleDeleteDependency)
	mux.HandleFunc("GET /v1/projects/{project}/tasks/{task}/dependencies", s.handleGetTaskDependencies)
	mux.HandleFunc("GET /v1/projects/{project}/graph", s.handleGetDependencyGraph)
	mux.HandleFunc("GET /v1/projects/{project}/events", s.handleListEvents)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return RequestLogger(s.logger, AuthMiddleware(authToken, mux))
}

// handleHealth handles GET /v1/health.
func (s *PlanningServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// httpStatus maps a planning error kind to its HTTP status.
func httpStatus(kind planning.ErrorKind) int {
	switch kind {
	case planning.NotFound:
		return http.StatusNotFound
	case planning.InvalidArgument:
		return http.StatusBadRequest
	case planning.DuplicateEdge, planning.CycleViolation:
		return http.StatusConflict
	case planning.CrossProjectViolation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeServiceError writes the response for an error returned by the
// planning service.
func (s *PlanningServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := planning.KindOf(err)
	if kind == planning.KindInternal {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", w.Header().Get(RequestIDHeader), "error", err)
	}
	writeJSON(w, httpStatus(kind), errorBody(err))
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}
