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

// pagedBoards, pagedProjects and pagedSprints mirror the Agile API list envelope.
type pagedBoards struct {
	Values []Board `json:"values"`
}

type pagedProjects struct {
	Values []Project `json:"values"`
}

type pagedSprints struct {
	Values []Sprint `json:"values"`
}

// Boards returns the boards for a project key or id.
func (c *Client) Boards(ctx context.Context, projectKey string) ([]Board, error) {
	var page pagedBoards
	err := c.do(ctx, request{
		operation: "getting board",
		method:    http.MethodGet,
		path:      c.agilePath("/board"),
		query:     url.Values{"projectKeyOrId": {projectKey}},
		expect:    http.StatusOK,
	}, &page)
	if err != nil {
		return nil, err
	}
	if err := validateAll(page.Values); err != nil {
		return nil, err
	}
	return page.Values, nil
}

// BoardProjects returns the projects attached to a board, filtered by project key.
func (c *Client) BoardProjects(ctx context.Context, boardID ID, projectKey string) ([]Project, error) {
	var page pagedProjects
	err := c.do(ctx, request{
		operation: "getting project",
		method:    http.MethodGet,
		path:      c.agilePath("/board/%s/project", url.PathEscape(boardID.String())),
		query:     url.Values{"projectKeyOrId": {projectKey}},
		expect:    http.StatusOK,
	}, &page)
	if err != nil {
		return nil, err
	}
	if err := validateAll(page.Values); err != nil {
		return nil, err
	}
	return page.Values, nil
}

// Sprints returns the sprints of a board in the given state ("" for all).
func (c *Client) Sprints(ctx context.Context, boardID ID, state string) ([]Sprint, error) {
	query := url.Values{}
	if state != "" {
		query.Set("state", state)
	}

	var page pagedSprints
	err := c.do(ctx, request{
		operation: "getting active sprint",
		method:    http.MethodGet,
		path:      c.agilePath("/board/%s/sprint", url.PathEscape(boardID.String())),
		query:     query,
		expect:    http.StatusOK,
	}, &page)
	if err != nil {
		return nil, err
	}
	if err := validateAll(page.Values); err != nil {
		return nil, err
	}
	return page.Values, nil
}

// MoveIssuesToSprint moves issues into a sprint.
func (c *Client) MoveIssuesToSprint(ctx context.Context, sprintID ID, issueKeys ...string) error {
	payload := struct {
		Issues []string `json:"issues"`
	}{Issues: issueKeys}

	return c.do(ctx, request{
		operation: "moving issue to sprint",
		method:    http.MethodPost,
		path:      c.agilePath("/sprint/%s/issue", url.PathEscape(sprintID.String())),
		body:      payload,
		expect:    http.StatusNoContent,
	}, nil)
}
