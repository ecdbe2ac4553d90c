// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-19

// Package jira provides a typed client for the Jira Cloud REST and Agile APIs.
package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque Jira identifier. Jira returns some ids as JSON numbers
// (boards, sprints) and others as strings (projects, issues), so ID accepts both.
type ID string

// UnmarshalJSON decodes a JSON string or number into an ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a string.
func (id ID) String() string {
	return string(id)
}

// Sprint states.
const (
	SprintActive = "active"
	SprintFuture = "future"
	SprintClosed = "closed"
)

// Project is a Jira project.
type Project struct {
	ID   ID     `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// BoardLocation describes the project a board belongs to.
type BoardLocation struct {
	ProjectID   ID     `json:"projectId"`
	ProjectKey  string `json:"projectKey,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
}

// Board is a Jira Software board.
type Board struct {
	ID       ID            `json:"id"`
	Name     string        `json:"name,omitempty"`
	Type     string        `json:"type,omitempty"`
	Location BoardLocation `json:"location"`
}

// Sprint is a sprint on a board.
type Sprint struct {
	ID    ID     `json:"id"`
	Name  string `json:"name,omitempty"`
	State string `json:"state"`
}

// IsActive reports whether issues may be moved into the sprint.
func (s Sprint) IsActive() bool {
	return s.State == SprintActive
}

// IssueType is an issue type creatable in a project.
type IssueType struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Issue is a created or fetched Jira issue.
type Issue struct {
	ID   ID     `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self,omitempty"`

	// Summary and Status are only populated by GetIssue.
	Summary string `json:"-"`
	Status  string `json:"-"`
}

// Transition is an edge in an issue's workflow.
type Transition struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// User is a Jira directory user.
type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Active       bool   `json:"active"`
}

// Field returns the named user attribute, used when matching users against
// identities from other systems. Unknown names return "".
func (u User) Field(name string) string {
	switch name {
	case "accountId":
		return u.AccountID
	case "emailAddress":
		return u.EmailAddress
	case "displayName":
		return u.DisplayName
	default:
		return ""
	}
}

// Comment is a comment posted on an issue.
type Comment struct {
	ID ID `json:"id"`
}

// IssueFields is the input for creating an issue.
type IssueFields struct {
	Summary     string
	Description string
	ProjectID   ID
	IssueTypeID ID
	Labels      []string
}

// FindTransition returns the first transition whose name equals name exactly.
func FindTransition(transitions []Transition, name string) (Transition, bool) {
	for _, t := range transitions {
		if t.Name == name {
			return t, true
		}
	}
	return Transition{}, false
}

// Document is an Atlassian Document Format node.
type Document struct {
	Type    string     `json:"type"`
	Version int        `json:"version,omitempty"`
	Text    string     `json:"text,omitempty"`
	Content []Document `json:"content,omitempty"`
}

// NewDocument wraps plain text into a single-paragraph ADF document.
func NewDocument(text string) Document {
	return Document{
		Type:    "doc",
		Version: 1,
		Content: []Document{
			{
				Type: "paragraph",
				Content: []Document{
					{Type: "text", Text: text},
				},
			},
		},
	}
}

// PlainText flattens the text nodes of a document.
func (d Document) PlainText() string {
	var buf bytes.Buffer
	d.writeText(&buf)
	return buf.String()
}

func (d Document) writeText(buf *bytes.Buffer) {
	if d.Type == "text" {
		buf.WriteString(d.Text)
	}
	for i, c := range d.Content {
		if i > 0 && c.Type == "paragraph" {
			buf.WriteString("\n")
		}
		c.writeText(buf)
	}
}

// validators for decoded entities. Each reports the first missing required field.

func (p Project) validate() error {
	if p.ID == "" {
		return &ParseError{Entity: "project", Field: "id"}
	}
	if p.Key == "" {
		return &ParseError{Entity: "project", Field: "key"}
	}
	return nil
}

func (b Board) validate() error {
	if b.ID == "" {
		return &ParseError{Entity: "board", Field: "id"}
	}
	return nil
}

func (s Sprint) validate() error {
	if s.ID == "" {
		return &ParseError{Entity: "sprint", Field: "id"}
	}
	if s.State == "" {
		return &ParseError{Entity: "sprint", Field: "state"}
	}
	return nil
}

func (t IssueType) validate() error {
	if t.ID == "" {
		return &ParseError{Entity: "issuetype", Field: "id"}
	}
	if t.Name == "" {
		return &ParseError{Entity: "issuetype", Field: "name"}
	}
	return nil
}

func (i Issue) validate() error {
	if i.Key == "" {
		return &ParseError{Entity: "issue", Field: "key"}
	}
	if i.ID == "" {
		return &ParseError{Entity: "issue", Field: "id"}
	}
	return nil
}

func (t Transition) validate() error {
	if t.ID == "" {
		return &ParseError{Entity: "transition", Field: "id"}
	}
	if t.Name == "" {
		return &ParseError{Entity: "transition", Field: "name"}
	}
	return nil
}

func (u User) validate() error {
	if u.AccountID == "" {
		return &ParseError{Entity: "user", Field: "accountId"}
	}
	return nil
}

func (c Comment) validate() error {
	if c.ID == "" {
		return &ParseError{Entity: "comment", Field: "id"}
	}
	return nil
}

// validateAll validates every element, annotating errors with the index.
func validateAll[T interface{ validate() error }](items []T) error {
	for i, item := range items {
		if err := item.validate(); err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Index = strconv.Itoa(i)
			}
			return err
		}
	}
	return nil
}
