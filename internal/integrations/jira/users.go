package jira

import (
	"context"
	"net/http"
	"net/url"
)

// AssignableUsers returns the users that can be assigned to an issue.
func (c *Client) AssignableUsers(ctx context.Context, issueKey string) ([]User, error) {
	var users []User
	err := c.do(ctx, request{
		operation: "getting assignable users",
		method:    http.MethodGet,
		path:      c.platformPath("/user/assignable/search"),
		query:     url.Values{"issueKey": {issueKey}},
		expect:    http.StatusOK,
	}, &users)
	if err != nil {
		return nil, err
	}
	if err := validateAll(users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers runs a directory-wide user search (by email, name, ...).
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var users []User
	err := c.do(ctx, request{
		operation: "getting users",
		method:    http.MethodGet,
		path:      c.platformPath("/user/search"),
		query:     url.Values{"query": {query}},
		expect:    http.StatusOK,
	}, &users)
	if err != nil {
		return nil, err
	}
	if err := validateAll(users); err != nil {
		return nil, err
	}
	return users, nil
}
