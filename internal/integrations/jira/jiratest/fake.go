// Package jiratest provides an in-memory jira.API for tests.
package jiratest

import (
	"context"
	"sync"

	"github.com/similigh/gitssues/internal/integrations/jira"
)

// Call records one invocation on the fake.
type Call struct {
	Method string
	Args   []string
}

// Fake is a scripted jira.API. Each field holds the canned result for the
// matching method; the *Err fields, when set, are returned instead.
// Every invocation is recorded in order.
type Fake struct {
	BoardList     []jira.Board
	ProjectList   []jira.Project
	IssueTypeList []jira.IssueType
	SprintList    []jira.Sprint
	Created       *jira.Issue
	Fetched       *jira.Issue
	NewComment    *jira.Comment
	TransitionSet []jira.Transition
	Assignable    []jira.User
	Directory     []jira.User

	BoardsErr       error
	ProjectsErr     error
	CreateMetaErr   error
	SprintsErr      error
	MoveErr         error
	CreateErr       error
	GetErr          error
	DeleteErr       error
	CommentErr      error
	TransitionsErr  error
	DoTransitionErr error
	AssignErr       error
	AssignableErr   error
	SearchErr       error

	mu    sync.Mutex
	calls []Call
}

var _ jira.API = (*Fake)(nil)

func (f *Fake) record(method string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times method was called.
func (f *Fake) Count(method string) int {
	return len(f.CallsTo(method))
}

func (f *Fake) Boards(_ context.Context, projectKey string) ([]jira.Board, error) {
	f.record("Boards", projectKey)
	return f.BoardList, f.BoardsErr
}

func (f *Fake) BoardProjects(_ context.Context, boardID jira.ID, projectKey string) ([]jira.Project, error) {
	f.record("BoardProjects", boardID.String(), projectKey)
	return f.ProjectList, f.ProjectsErr
}

func (f *Fake) CreateMeta(_ context.Context, projectKey string) ([]jira.IssueType, error) {
	f.record("CreateMeta", projectKey)
	return f.IssueTypeList, f.CreateMetaErr
}

func (f *Fake) Sprints(_ context.Context, boardID jira.ID, state string) ([]jira.Sprint, error) {
	f.record("Sprints", boardID.String(), state)
	return f.SprintList, f.SprintsErr
}

func (f *Fake) MoveIssuesToSprint(_ context.Context, sprintID jira.ID, issueKeys ...string) error {
	f.record("MoveIssuesToSprint", append([]string{sprintID.String()}, issueKeys...)...)
	return f.MoveErr
}

func (f *Fake) CreateIssue(_ context.Context, fields jira.IssueFields) (*jira.Issue, error) {
	f.record("CreateIssue", fields.Summary, fields.Description, fields.ProjectID.String(), fields.IssueTypeID.String())
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.Created, nil
}

func (f *Fake) GetIssue(_ context.Context, issueKey string) (*jira.Issue, error) {
	f.record("GetIssue", issueKey)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Fetched, nil
}

func (f *Fake) DeleteIssue(_ context.Context, issueKey string) error {
	f.record("DeleteIssue", issueKey)
	return f.DeleteErr
}

func (f *Fake) AddComment(_ context.Context, issueKey, text string) (*jira.Comment, error) {
	f.record("AddComment", issueKey, text)
	if f.CommentErr != nil {
		return nil, f.CommentErr
	}
	return f.NewComment, nil
}

func (f *Fake) Transitions(_ context.Context, issueKey string) ([]jira.Transition, error) {
	f.record("Transitions", issueKey)
	return f.TransitionSet, f.TransitionsErr
}

func (f *Fake) DoTransition(_ context.Context, issueKey string, transitionID jira.ID) error {
	f.record("DoTransition", issueKey, transitionID.String())
	return f.DoTransitionErr
}

func (f *Fake) AssignIssue(_ context.Context, issueKey, accountID string) error {
	f.record("AssignIssue", issueKey, accountID)
	return f.AssignErr
}

func (f *Fake) AssignableUsers(_ context.Context, issueKey string) ([]jira.User, error) {
	f.record("AssignableUsers", issueKey)
	return f.Assignable, f.AssignableErr
}

func (f *Fake) SearchUsers(_ context.Context, query string) ([]jira.User, error) {
	f.record("SearchUsers", query)
	return f.Directory, f.SearchErr
}
