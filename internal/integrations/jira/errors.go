// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-19

package jira

import (
	"errors"
	"fmt"
)

// maxErrorBody bounds how much of a response body is kept on an APIError.
const maxErrorBody = 500

// APIError is returned for any Jira call that did not produce the expected
// status. Transport failures and timeouts are reported the same way with
// StatusCode 0 and Err set.
type APIError struct {
	// Operation names the call, e.g. "create issue".
	Operation string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the (truncated) response body.
	Body string

	// Err is the transport error, if any.
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("jira: error while %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("jira: error while %s: %d - %s", e.Operation, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ParseError reports a response that decoded but lacks a required field.
type ParseError struct {
	Entity string
	Field  string

	// Index is the position of the offending element in a list response.
	Index string
}

func (e *ParseError) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("jira: %s[%s] is missing required field %q", e.Entity, e.Index, e.Field)
	}
	return fmt.Sprintf("jira: %s is missing required field %q", e.Entity, e.Field)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a Jira 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// truncate shortens a response body for inclusion in errors.
func truncate(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
