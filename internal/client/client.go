// Package client talks to the bath planner API.
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
	"time"

	api "github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/pkg/requestid"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// APIError is returned for any non 2xx answer.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request id %s)", e.RequestID)
	}
	return msg
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func modulePath(name string, rest ...string) string {
	return "/api/v1/modules/" + url.PathEscape(name) + strings.Join(rest, "")
}

func (c *Client) Health(ctx context.Context) error {
	var h api.Health
	return c.do(ctx, http.MethodGet, "/health", nil, &h)
}

func (c *Client) Info(ctx context.Context) (*api.Info, error) {
	var info api.Info
	if err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListModules(ctx context.Context) (api.ModuleList, error) {
	var modules api.ModuleList
	if err := c.do(ctx, http.MethodGet, "/api/v1/modules", nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (c *Client) GetModule(ctx context.Context, name string) (*api.Module, error) {
	var module api.Module
	if err := c.do(ctx, http.MethodGet, modulePath(name), nil, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *Client) GetSetup(ctx context.Context) (*api.SetupStatus, error) {
	var status api.SetupStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/setup", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ReplaceSetup makes modules the whole configuration of the server.
func (c *Client) ReplaceSetup(ctx context.Context, modules api.ModuleList) (*api.SetupStatus, error) {
	var status api.SetupStatus
	if err := c.do(ctx, http.MethodPut, "/api/v1/setup", api.SetupUpdate{Modules: modules}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Correct(ctx context.Context, name string, req api.CorrectionRequest) (*api.CorrectionResult, error) {
	var result api.CorrectionResult
	if err := c.do(ctx, http.MethodPost, modulePath(name, "/correction"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Simulate(ctx context.Context, name string, req api.SimulationRequest) (*api.SimulationResult, error) {
	var result api.SimulationResult
	if err := c.do(ctx, http.MethodPost, modulePath(name, "/simulation"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Refill(ctx context.Context, name string, req api.RefillRequest) (*api.RefillResult, error) {
	var result api.RefillResult
	if err := c.do(ctx, http.MethodPost, modulePath(name, "/refill"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History lists the recorded calculations of a module. kind and limit are optional.
func (c *Client) History(ctx context.Context, name, kind string, limit int) (api.HistoryList, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", kind)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := modulePath(name, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history api.HistoryList
	if err := c.do(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ExportHistory downloads the history workbook of a module.
func (c *Client) ExportHistory(ctx context.Context, name string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, modulePath(name, "/history/export"), nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp, bodyBytes)
	}
	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id := requestid.Generate()
	req.Header.Set(requestid.Header, id)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call bath planner: %w", err)
	}
	zap.S().Named("client").Debugw("request sent", "method", method, "path", path, "status", resp.StatusCode, "request_id", id)
	return resp, nil
}

func apiError(resp *http.Response, body []byte) error {
	e := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get(requestid.Header)}

	var apiErr api.Error
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		e.Message = apiErr.Message
		if apiErr.RequestId != "" {
			e.RequestID = apiErr.RequestId
		}
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}
