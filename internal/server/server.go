// Package server exposes the planning service over HTTP/JSON and gRPC.
package server

import (
	"errors"
	"log/slog"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
)

// PlanningServer serves planning.Service on both transports.
type PlanningServer struct {
	svc    *planning.Service
	logger *slog.Logger
}

// NewPlanningServer returns a server for svc. A nil logger uses slog.Default().
func NewPlanningServer(svc *planning.Service, logger *slog.Logger) *PlanningServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanningServer{svc: svc, logger: logger}
}

// errorBody builds the JSON error body for err. Errors that are not planning
// errors are reported without their message.
func errorBody(err error) api.ErrorResponse {
	var pe *planning.Error
	if !errors.As(err, &pe) || pe.Kind == planning.KindInternal {
		return api.ErrorResponse{Error: "internal error", Code: planning.KindInternal.String()}
	}
	return api.ErrorResponse{Error: pe.Error(), Code: pe.Kind.String(), Cycle: pe.Cycle}
}
