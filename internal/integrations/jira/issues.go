// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-19

package jira

import (
	"context"
	"net/http"
	"net/url"
)

// createMetaResponse is the subset of /issue/createmeta we read.
type createMetaResponse struct {
	Projects []struct {
		Key        string      `json:"key"`
		IssueTypes []IssueType `json:"issuetypes"`
	} `json:"projects"`
}

// CreateMeta returns the issue types creatable in the project.
func (c *Client) CreateMeta(ctx context.Context, projectKey string) ([]IssueType, error) {
	var meta createMetaResponse
	err := c.do(ctx, request{
		operation: "getting issue type info",
		method:    http.MethodGet,
		path:      c.platformPath("/issue/createmeta"),
		query:     url.Values{"projectKeys": {projectKey}},
		expect:    http.StatusOK,
	}, &meta)
	if err != nil {
		return nil, err
	}
	if len(meta.Projects) == 0 {
		return nil, nil
	}
	types := meta.Projects[0].IssueTypes
	if err := validateAll(types); err != nil {
		return nil, err
	}
	return types, nil
}

// createIssueRequest is the POST /issue payload.
type createIssueRequest struct {
	Update map[string]any    `json:"update"`
	Fields createIssueFields `json:"fields"`
}

type createIssueFields struct {
	Summary     string   `json:"summary"`
	Project     idRef    `json:"project"`
	IssueType   idRef    `json:"issuetype"`
	Description Document `json:"description"`
	Labels      []string `json:"labels"`
}

type idRef struct {
	ID ID `json:"id"`
}

// CreateIssue creates an issue and returns its key and id.
func (c *Client) CreateIssue(ctx context.Context, fields IssueFields) (*Issue, error) {
	labels := fields.Labels
	if labels == nil {
		labels = []string{}
	}

	payload := createIssueRequest{
		Update: map[string]any{},
		Fields: createIssueFields{
			Summary:     fields.Summary,
			Project:     idRef{ID: fields.ProjectID},
			IssueType:   idRef{ID: fields.IssueTypeID},
			Description: NewDocument(fields.Description),
			Labels:      labels,
		},
	}

	var issue Issue
	err := c.do(ctx, request{
		operation: "posting issue",
		method:    http.MethodPost,
		path:      c.platformPath("/issue"),
		body:      payload,
		expect:    http.StatusCreated,
	}, &issue)
	if err != nil {
		return nil, err
	}
	if err := issue.validate(); err != nil {
		return nil, err
	}
	return &issue, nil
}

// getIssueResponse is the subset of GET /issue/{key} we read.
type getIssueResponse struct {
	Issue
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

// GetIssue fetches an issue by key.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (*Issue, error) {
	var resp getIssueResponse
	err := c.do(ctx, request{
		operation: "getting issue",
		method:    http.MethodGet,
		path:      c.platformPath("/issue/%s", url.PathEscape(issueKey)),
		expect:    http.StatusOK,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.Issue.validate(); err != nil {
		return nil, err
	}
	issue := resp.Issue
	issue.Summary = resp.Fields.Summary
	issue.Status = resp.Fields.Status.Name
	return &issue, nil
}

// DeleteIssue deletes an issue.
func (c *Client) DeleteIssue(ctx context.Context, issueKey string) error {
	return c.do(ctx, request{
		operation: "deleting issue",
		method:    http.MethodDelete,
		path:      c.platformPath("/issue/%s", url.PathEscape(issueKey)),
		expect:    http.StatusNoContent,
	}, nil)
}

// AddComment posts a plain-text comment wrapped in an ADF document.
func (c *Client) AddComment(ctx context.Context, issueKey, text string) (*Comment, error) {
	payload := struct {
		Body Document `json:"body"`
	}{Body: NewDocument(text)}

	var comment Comment
	err := c.do(ctx, request{
		operation: "setting comment",
		method:    http.MethodPost,
		path:      c.platformPath("/issue/%s/comment", url.PathEscape(issueKey)),
		body:      payload,
		expect:    http.StatusCreated,
	}, &comment)
	if err != nil {
		return nil, err
	}
	if err := comment.validate(); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Transitions lists the transitions currently available for an issue.
func (c *Client) Transitions(ctx context.Context, issueKey string) ([]Transition, error) {
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	err := c.do(ctx, request{
		operation: "getting transitions",
		method:    http.MethodGet,
		path:      c.platformPath("/issue/%s/transitions", url.PathEscape(issueKey)),
		expect:    http.StatusOK,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := validateAll(resp.Transitions); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// DoTransition executes a transition on an issue.
func (c *Client) DoTransition(ctx context.Context, issueKey string, transitionID ID) error {
	payload := struct {
		Transition idRef `json:"transition"`
	}{Transition: idRef{ID: transitionID}}

	return c.do(ctx, request{
		operation: "setting transition",
		method:    http.MethodPost,
		path:      c.platformPath("/issue/%s/transitions", url.PathEscape(issueKey)),
		body:      payload,
		expect:    http.StatusNoContent,
	}, nil)
}

// AssignIssue sets the assignee of an issue.
func (c *Client) AssignIssue(ctx context.Context, issueKey, accountID string) error {
	payload := struct {
		AccountID string `json:"accountId"`
	}{AccountID: accountID}

	return c.do(ctx, request{
		operation: "assigning issue to user",
		method:    http.MethodPut,
		path:      c.platformPath("/issue/%s/assignee", url.PathEscape(issueKey)),
		body:      payload,
		expect:    http.StatusNoContent,
	}, nil)
}
