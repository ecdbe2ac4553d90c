// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-13
// Last Modified: 2026-10-19

// Package opsgenie resolves who is currently on call for a schedule.
package opsgenie

import (
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

const (
	defaultBaseURL = "https://api.opsgenie.com"
	defaultTimeout = 30 * time.Second
)

// Participant is a responder currently on call.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Field returns the named participant attribute. Unknown names return "".
func (p Participant) Field(name string) string {
	switch name {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "type":
		return p.Type
	default:
		return ""
	}
}

// APIError is returned when the schedule service does not answer 200.
// Transport failures and timeouts use StatusCode 0.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("opsgenie: error while getting on-call users: %v", e.Err)
	}
	return fmt.Sprintf("opsgenie: error while getting on-call users: %d - %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Config holds configuration for creating a Client.
type Config struct {
	BaseURL    string
	Token      string
	Schedule   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client queries the on-call API for a single named schedule.
type Client struct {
	baseURL    string
	token      string
	schedule   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an on-call client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("opsgenie: token is required")
	}
	if cfg.Schedule == "" {
		return nil, fmt.Errorf("opsgenie: schedule name is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
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
		baseURL:    baseURL,
		token:      cfg.Token,
		schedule:   cfg.Schedule,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type onCallsResponse struct {
	Data struct {
		OnCallParticipants []Participant `json:"onCallParticipants"`
	} `json:"data"`
}

// OnCallParticipants returns the current on-call participants, in the order
// the service reports them.
func (c *Client) OnCallParticipants(ctx context.Context) ([]Participant, error) {
	u := fmt.Sprintf("%s/v2/schedules/%s/on-calls?%s",
		c.baseURL,
		url.PathEscape(c.schedule),
		url.Values{"scheduleIdentifierType": {"name"}}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create on-call request: %w", err)
	}
	req.Header.Set("Authorization", "GenieKey "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		truncated := string(body)
		if len(truncated) > 200 {
			truncated = truncated[:200] + "..."
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncated}
	}

	var parsed onCallsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse on-call response: %w", err)
	}

	c.logger.Debug("on-call participants resolved",
		"schedule", c.schedule,
		"count", len(parsed.Data.OnCallParticipants),
	)

	return parsed.Data.OnCallParticipants, nil
}
