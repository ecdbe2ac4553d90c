// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package github wraps the GitHub issues API used as the relay's source platform.
package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
)

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
}

// APIError is returned when a GitHub call fails. StatusCode is 0 when no
// response was received.
type APIError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github: error while %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("github: error while %s: %d - %v", e.Operation, e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// wrapError converts a go-github error into an *APIError.
func wrapError(operation string, err error) error {
	apiErr := &APIError{Operation: operation, Err: err}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		apiErr.StatusCode = respErr.Response.StatusCode
	}
	return apiErr
}

// SplitRepo parses an "owner/repo" string.
func SplitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repo format: expected 'owner/repo', got '%s'", fullName)
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo: owner and repo cannot be empty")
	}
	return parts[0], parts[1], nil
}

// ListIssues lists open issues of a repository.
func (c *Client) ListIssues(ctx context.Context, fullName string) ([]*github.Issue, error) {
	owner, repo, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}

	issues, _, err := c.client.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{State: "open"})
	if err != nil {
		return nil, wrapError("getting issues from "+fullName, err)
	}
	return issues, nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, fullName, title, body string) (*github.Issue, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("issue title cannot be empty")
	}
	owner, repo, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}

	issue, _, err := c.client.Issues.Create(ctx, owner, repo, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return nil, wrapError("creating issue in "+fullName, err)
	}
	return issue, nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, fullName string, number int, body string) (*github.IssueComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("comment body cannot be empty")
	}
	owner, repo, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	created, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("creating comment on issue %d of %s", number, fullName), err)
	}
	return created, nil
}

// Issue states accepted by SetIssueState.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// SetIssueState closes or reopens an issue.
func (c *Client) SetIssueState(ctx context.Context, fullName string, number int, state string) (*github.Issue, error) {
	if state != StateOpen && state != StateClosed {
		return nil, fmt.Errorf("state must be open or closed, got %q", state)
	}
	owner, repo, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}

	issue, _, err := c.client.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{
		State: github.String(state),
	})
	if err != nil {
		return nil, wrapError(fmt.Sprintf("changing issue state of %d of %s", number, fullName), err)
	}
	return issue, nil
}
