// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package pipeline provides the workflow engine behind ticket creation.
// It defines the Step interface and the Context passed between steps.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic. Any error aborts the remaining steps.
	Run(ctx *Context) error
}

// Ticket is the normalized content of the ticket to create.
type Ticket struct {
	Title   string
	Content string
	Labels  []string
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Session is the prepared Jira context.
	Session *session.Session

	// Ticket is what gets created.
	Ticket Ticket

	// Policy picks the assignee.
	Policy assign.Policy

	// Filled in by the steps as they succeed.
	Sprint            *jira.Sprint
	Issue             *jira.Issue
	AssigneeAccountID string

	Logger *slog.Logger
}

// NewContext creates a new pipeline context for one ticket.
func NewContext(ctx context.Context, sess *session.Session, ticket Ticket, policy assign.Policy) *Context {
	return &Context{
		Ctx:     ctx,
		Session: sess,
		Ticket:  ticket,
		Policy:  policy,
		Logger:  slog.Default(),
	}
}

// IssueKey returns the created issue key, or "" before creation.
func (c *Context) IssueKey() string {
	if c.Issue == nil {
		return ""
	}
	return c.Issue.Key
}

// StepError reports which step failed. IssueKey is set when the ticket was
// already created, so callers can find the partial result.
type StepError struct {
	Step     string
	Index    int
	IssueKey string
	Err      error
}

func (e *StepError) Error() string {
	if e.IssueKey != "" {
		return fmt.Sprintf("step %d '%s' failed (issue %s): %v", e.Index, e.Step, e.IssueKey, e.Err)
	}
	return fmt.Sprintf("step %d '%s' failed: %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order and stops on the first error, returned
// as a *StepError. Completed steps are not undone.
func (p *Pipeline) Run(ctx *Context) error {
	for i, step := range p.steps {
		if err := ctx.Ctx.Err(); err != nil {
			return &StepError{Step: step.Name(), Index: i + 1, IssueKey: ctx.IssueKey(), Err: err}
		}
		if err := step.Run(ctx); err != nil {
			return &StepError{Step: step.Name(), Index: i + 1, IssueKey: ctx.IssueKey(), Err: err}
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}
