package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
)

// NewGRPCServer creates a gRPC server with standard interceptors, registers
// the PlanningService, the health service and reflection, and returns the
// server ready to serve.
func NewGRPCServer(ps *PlanningServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	srv.RegisterService(&planningServiceDesc, ps)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv
}

// planningService is the handler type of planningServiceDesc.
type planningService interface {
	service() *planning.Service
}

func (s *PlanningServer) service() *planning.Service { return s.svc }

// rpcHandler serves one PlanningService method. Requests and responses are
// google.protobuf.Struct messages shaped like the HTTP JSON bodies.
type rpcHandler func(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error)

var planningServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*planningService)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodGetSprintBurndown, rpcGetSprintBurndown),
		unary(api.MethodGetProjectVelocity, rpcGetProjectVelocity),
		unary(api.MethodGetProjectBurndowns, rpcGetProjectBurndowns),
		unary(api.MethodCreateDependency, rpcCreateDependency),
		unary(api.MethodDeleteDependency, rpcDeleteDependency),
		unary(api.MethodGetTaskDependencies, rpcGetTaskDependencies),
		unary(api.MethodGetProjectDependencyGraph, rpcGetProjectDependencyGraph),
		unary(api.MethodCloneSprint, rpcCloneSprint),
		unary(api.MethodListEvents, rpcListEvents),
	},
	Streams: []grpc.StreamDesc{},
}

// unary adapts h to a grpc.MethodDesc, converting its result to a Struct
// and its error to a status.
func unary(name string, h rpcHandler) grpc.MethodDesc {
	call := func(ctx context.Context, srv any, req any) (any, error) {
		resp, err := h(ctx, srv.(planningService).service(), req.(*structpb.Struct))
		if err != nil {
			return nil, grpcError(err)
		}
		out, err := api.ToStruct(resp)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode response: %v", err)
		}
		return out, nil
	}
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, srv, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(ctx, srv, req)
			})
		},
	}
}

// grpcError maps a planning error to a gRPC status.
func grpcError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	body := errorBody(err)
	switch planning.KindOf(err) {
	case planning.NotFound:
		return status.Error(codes.NotFound, body.Error)
	case planning.InvalidArgument:
		return status.Error(codes.InvalidArgument, body.Error)
	case planning.DuplicateEdge:
		return status.Error(codes.AlreadyExists, body.Error)
	case planning.CrossProjectViolation, planning.CycleViolation:
		return status.Error(codes.FailedPrecondition, body.Error)
	}
	return status.Error(codes.Internal, body.Error)
}

// decode unpacks a request, reporting malformed ones as InvalidArgument.
func decode(req *structpb.Struct, v any) error {
	if err := api.FromStruct(req, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

func rpcGetSprintBurndown(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.BurndownRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.GetSprintBurndown(ctx, in.ProjectID, in.SprintID, in.AsOf)
}

func rpcGetProjectVelocity(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.VelocityRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.GetProjectVelocity(ctx, in.ProjectID, in.IncludeActive)
}

func rpcGetProjectBurndowns(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.BurndownsRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	bds, err := svc.GetProjectBurndowns(ctx, in.ProjectID, in.ActiveOnly)
	if err != nil {
		return nil, err
	}
	return api.BurndownsResponse{Burndowns: bds}, nil
}

func rpcCreateDependency(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.CreateDependencyRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.CreateDependency(ctx, in.ProjectID, in.Input())
}

func rpcDeleteDependency(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.DeleteDependencyRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := svc.DeleteDependency(ctx, in.ProjectID, in.DependencyID, in.Actor); err != nil {
		return nil, err
	}
	return api.Empty{}, nil
}

func rpcGetTaskDependencies(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.TaskDependenciesRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.GetTaskDependencies(ctx, in.ProjectID, in.TaskID)
}

func rpcGetProjectDependencyGraph(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.GraphRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.GetProjectDependencyGraph(ctx, in.ProjectID)
}

func rpcCloneSprint(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.CloneSprintRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return svc.CloneSprint(ctx, in.ProjectID, in.SprintID, in.Options())
}

func rpcListEvents(ctx context.Context, svc *planning.Service, req *structpb.Struct) (any, error) {
	var in api.ListEventsRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	evs, err := svc.ListEvents(ctx, in.ProjectID, in.Limit)
	if err != nil {
		return nil, err
	}
	return api.EventsResponse{Events: evs}, nil
}
