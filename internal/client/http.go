package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// HTTPClient implements PlanningClient using the HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func projectPath(projectID string) string {
	return "/v1/projects/" + url.PathEscape(projectID)
}

// --- Analytics ---

func (c *HTTPClient) GetSprintBurndown(ctx context.Context, req *api.BurndownRequest) (*analytics.Burndown, error) {
	path := projectPath(req.ProjectID) + "/sprints/" + url.PathEscape(req.SprintID) + "/burndown"
	if req.AsOf != nil {
		path += "?as_of=" + req.AsOf.String()
	}
	var bd analytics.Burndown
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &bd); err != nil {
		return nil, err
	}
	return &bd, nil
}

func (c *HTTPClient) GetProjectVelocity(ctx context.Context, req *api.VelocityRequest) (*analytics.VelocityReport, error) {
	path := projectPath(req.ProjectID) + "/velocity"
	if req.IncludeActive {
		path += "?include_active=true"
	}
	var report analytics.VelocityReport
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) GetProjectBurndowns(ctx context.Context, req *api.BurndownsRequest) ([]*analytics.Burndown, error) {
	path := projectPath(req.ProjectID) + "/burndowns"
	if req.ActiveOnly {
		path += "?active=true"
	}
	var resp api.BurndownsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Burndowns, nil
}

// --- Dependencies ---

func (c *HTTPClient) CreateDependency(ctx context.Context, req *api.CreateDependencyRequest) (*model.TaskDependency, error) {
	body := *req
	body.ProjectID = ""
	var dep model.TaskDependency
	if err := c.doJSON(ctx, http.MethodPost, projectPath(req.ProjectID)+"/dependencies", body, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (c *HTTPClient) DeleteDependency(ctx context.Context, req *api.DeleteDependencyRequest) error {
	path := projectPath(req.ProjectID) + "/dependencies/" + url.PathEscape(req.DependencyID)
	if req.Actor != "" {
		path += "?" + url.Values{"actor": {req.Actor}}.Encode()
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) GetTaskDependencies(ctx context.Context, projectID, taskID string) (*model.TaskDependencies, error) {
	var deps model.TaskDependencies
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/tasks/"+url.PathEscape(taskID)+"/dependencies", nil, &deps); err != nil {
		return nil, err
	}
	return &deps, nil
}

func (c *HTTPClient) GetProjectDependencyGraph(ctx context.Context, projectID string) (*model.DependencyGraph, error) {
	var g model.DependencyGraph
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/graph", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// --- Sprints ---

func (c *HTTPClient) CloneSprint(ctx context.Context, req *api.CloneSprintRequest) (*model.Sprint, error) {
	body := *req
	body.ProjectID, body.SprintID = "", ""
	var sp model.Sprint
	if err := c.doJSON(ctx, http.MethodPost, projectPath(req.ProjectID)+"/sprints/"+url.PathEscape(req.SprintID)+"/clone", body, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// --- Events ---

func (c *HTTPClient) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	path := projectPath(projectID) + "/events"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp api.EventsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server. Code is the
// planning error kind when the server reported one.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Cycle      []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Code: errResp.Code, Cycle: errResp.Cycle}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
