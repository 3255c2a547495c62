package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// DefaultClientTimeout bounds one request to the server.
const DefaultClientTimeout = 10 * time.Second

// Client drives the /api/todos routes of a running server.
//
// It offers the same command and query methods as the engine, so a command
// sent through Client commits on the server's single writer and reaches
// every live view the server holds.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for server, an http or https URL.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", server)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base:       u,
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateTodo creates a todo on the server and returns its ID.
func (c *Client) CreateTodo(ctx context.Context, title string, description todo.Option[string]) (string, error) {
	var resp CreateResponse
	err := c.do(ctx, "create", http.MethodPost, "/api/todos", nil,
		CreateRequest{Title: title, Description: description}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ToggleTodo sets IsCompleted of id on the server.
func (c *Client) ToggleTodo(ctx context.Context, id string, completed bool) error {
	return c.do(ctx, "toggle", http.MethodPatch, "/api/todos/"+url.PathEscape(id), nil,
		ToggleRequest{IsCompleted: &completed}, nil)
}

// DeleteTodo deletes id on the server.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil, nil)
}

// UpdateTodoPositions applies explicit positions on the server.
func (c *Client) UpdateTodoPositions(ctx context.Context, updates []todo.PositionUpdate) error {
	return c.do(ctx, "update positions", http.MethodPost, "/api/todos/positions", nil,
		PositionsRequest{Updates: updates}, nil)
}

// Reorder puts ids in order on the server.
func (c *Client) Reorder(ctx context.Context, ids []string) (ordering.Result, error) {
	var resp ReorderResponse
	if err := c.do(ctx, "reorder", http.MethodPost, "/api/todos/reorder", nil,
		ReorderRequest{IDs: ids}, &resp); err != nil {
		return ordering.Result{}, err
	}
	return ordering.Result{Strategy: resp.Strategy, Updates: resp.Updates}, nil
}

// ClearCompletedTodos deletes every completed todo on the server.
func (c *Client) ClearCompletedTodos(ctx context.Context) ([]string, error) {
	var resp ClearResponse
	if err := c.do(ctx, "clear completed", http.MethodPost, "/api/todos/clear-completed", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.IDs == nil {
		return []string{}, nil
	}
	return resp.IDs, nil
}

// GetTodos returns the server's todos visible under f.
func (c *Client) GetTodos(ctx context.Context, f todo.Filter) ([]todo.Todo, error) {
	var resp ListResponse
	if err := c.do(ctx, "list", http.MethodGet, "/api/todos", url.Values{"filter": {string(f)}}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		return []todo.Todo{}, nil
	}
	return resp.Todos, nil
}

// do sends one request and decodes the response into out (if non-nil).
//
// Transport failures are TRANSIENT. Error responses are mapped back onto
// the todo error taxonomy by their code.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return todo.NewTransientError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// responseError converts a failed response into an error.
func responseError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Code == "" {
		cause := fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway {
			return todo.NewTransientError(op, cause)
		}
		return fmt.Errorf("%s: %w", op, cause)
	}

	cause := errors.New(er.Error)
	switch code := todo.ErrorCode(er.Code); code {
	case todo.ErrCodeValidation, todo.ErrCodeNotFound:
		return &todo.Error{Code: code, Op: op, Message: "rejected by server", Err: cause}
	case todo.ErrCodeTransient:
		return todo.NewTransientError(op, cause)
	default:
		return fmt.Errorf("%s: server error (%s): %w", op, er.Code, cause)
	}
}
