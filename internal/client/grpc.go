package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// GRPCClient implements PlanningClient using the gRPC transport.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// NewGRPCClient connects to the given gRPC address and returns a client.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn, token: token}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// invoke calls a PlanningService method, converting req and the response
// through google.protobuf.Struct.
func (c *GRPCClient) invoke(ctx context.Context, method string, req, out any) error {
	in, err := api.ToStruct(req)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, api.FullMethod(method), in, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return api.FromStruct(resp, out)
}

// --- Analytics ---

func (c *GRPCClient) GetSprintBurndown(ctx context.Context, req *api.BurndownRequest) (*analytics.Burndown, error) {
	var bd analytics.Burndown
	if err := c.invoke(ctx, api.MethodGetSprintBurndown, req, &bd); err != nil {
		return nil, err
	}
	return &bd, nil
}

func (c *GRPCClient) GetProjectVelocity(ctx context.Context, req *api.VelocityRequest) (*analytics.VelocityReport, error) {
	var report analytics.VelocityReport
	if err := c.invoke(ctx, api.MethodGetProjectVelocity, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *GRPCClient) GetProjectBurndowns(ctx context.Context, req *api.BurndownsRequest) ([]*analytics.Burndown, error) {
	var resp api.BurndownsResponse
	if err := c.invoke(ctx, api.MethodGetProjectBurndowns, req, &resp); err != nil {
		return nil, err
	}
	return resp.Burndowns, nil
}

// --- Dependencies ---

func (c *GRPCClient) CreateDependency(ctx context.Context, req *api.CreateDependencyRequest) (*model.TaskDependency, error) {
	var dep model.TaskDependency
	if err := c.invoke(ctx, api.MethodCreateDependency, req, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (c *GRPCClient) DeleteDependency(ctx context.Context, req *api.DeleteDependencyRequest) error {
	return c.invoke(ctx, api.MethodDeleteDependency, req, nil)
}

func (c *GRPCClient) GetTaskDependencies(ctx context.Context, projectID, taskID string) (*model.TaskDependencies, error) {
	var deps model.TaskDependencies
	req := api.TaskDependenciesRequest{ProjectID: projectID, TaskID: taskID}
	if err := c.invoke(ctx, api.MethodGetTaskDependencies, req, &deps); err != nil {
		return nil, err
	}
	return &deps, nil
}

func (c *GRPCClient) GetProjectDependencyGraph(ctx context.Context, projectID string) (*model.DependencyGraph, error) {
	var g model.DependencyGraph
	if err := c.invoke(ctx, api.MethodGetProjectDependencyGraph, api.GraphRequest{ProjectID: projectID}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// --- Sprints ---

func (c *GRPCClient) CloneSprint(ctx context.Context, req *api.CloneSprintRequest) (*model.Sprint, error) {
	var sp model.Sprint
	if err := c.invoke(ctx, api.MethodCloneSprint, req, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// --- Events ---

func (c *GRPCClient) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	var resp api.EventsResponse
	if err := c.invoke(ctx, api.MethodListEvents, api.ListEventsRequest{ProjectID: projectID, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return "", err
	}
	if resp.GetStatus() == healthpb.HealthCheckResponse_SERVING {
		return "ok", nil
	}
	return resp.GetStatus().String(), nil
}

var (
	_ PlanningClient = (*HTTPClient)(nil)
	_ PlanningClient = (*GRPCClient)(nil)
)
