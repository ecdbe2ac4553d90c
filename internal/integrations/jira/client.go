// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-19

package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTimeout bounds every request when Config.Timeout is unset.
const defaultTimeout = 30 * time.Second

// API is the set of Jira operations used by the sync engine.
// *Client implements it; jiratest.Fake implements it for tests.
type API interface {
	Boards(ctx context.Context, projectKey string) ([]Board, error)
	BoardProjects(ctx context.Context, boardID ID, projectKey string) ([]Project, error)
	CreateMeta(ctx context.Context, projectKey string) ([]IssueType, error)
	Sprints(ctx context.Context, boardID ID, state string) ([]Sprint, error)
	MoveIssuesToSprint(ctx context.Context, sprintID ID, issueKeys ...string) error

	CreateIssue(ctx context.Context, fields IssueFields) (*Issue, error)
	GetIssue(ctx context.Context, issueKey string) (*Issue, error)
	DeleteIssue(ctx context.Context, issueKey string) error
	AddComment(ctx context.Context, issueKey, text string) (*Comment, error)
	Transitions(ctx context.Context, issueKey string) ([]Transition, error)
	DoTransition(ctx context.Context, issueKey string, transitionID ID) error
	AssignIssue(ctx context.Context, issueKey, accountID string) error

	AssignableUsers(ctx context.Context, issueKey string) ([]User, error)
	SearchUsers(ctx context.Context, query string) ([]User, error)
}

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the REST root, e.g. "https://acme.atlassian.net/rest".
	BaseURL string

	// AgileVersion and PlatformVersion select the API versions used in paths.
	AgileVersion    string
	PlatformVersion string

	// Username and Token are used for Basic authentication.
	Username string
	Token    string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client issues authenticated calls against Jira.
type Client struct {
	baseURL         string
	agileVersion    string
	platformVersion string
	username        string
	token           string
	httpClient      *http.Client
	logger          *slog.Logger
}

var _ API = (*Client)(nil)

// NewClient creates a Jira client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("jira: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("jira: invalid base URL: %w", err)
	}
	if cfg.Username == "" || cfg.Token == "" {
		return nil, fmt.Errorf("jira: username and token are required")
	}

	agile := cfg.AgileVersion
	if agile == "" {
		agile = "1.0"
	}
	platform := cfg.PlatformVersion
	if platform == "" {
		platform = "3"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:         baseURL,
		agileVersion:    agile,
		platformVersion: platform,
		username:        cfg.Username,
		token:           cfg.Token,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

// agilePath builds a path under the Jira Software API.
func (c *Client) agilePath(format string, args ...any) string {
	return fmt.Sprintf("/agile/%s", c.agileVersion) + fmt.Sprintf(format, args...)
}

// platformPath builds a path under the Jira platform API.
func (c *Client) platformPath(format string, args ...any) string {
	return fmt.Sprintf("/api/%s", c.platformVersion) + fmt.Sprintf(format, args...)
}

// request describes a single API call.
type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
	expect    int
}

// do executes req, checks the status and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", req.operation, err)
	}
	httpReq.SetBasicAuth(c.username, c.token)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("jira request failed",
			"operation", req.operation,
			"method", req.method,
			"path", req.path,
			"error", err,
		)
		return &APIError{Operation: req.operation, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Operation: req.operation, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("jira request",
		"operation", req.operation,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != req.expect {
		return &APIError{
			Operation:  req.operation,
			StatusCode: resp.StatusCode,
			Body:       truncate(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", req.operation, err)
	}
	return nil
}
