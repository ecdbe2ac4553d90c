// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-14
// Last Modified: 2026-10-19

// Package engine drives Jira: session discovery, the ticket creation
// workflow and direct ticket operations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/integrations/jira"
	"github.com/similigh/gitssues/internal/steps"
)

var (
	ErrNoBoard            = errors.New("no board found for project")
	ErrNoProject          = errors.New("no project found on board")
	ErrNoIssueType        = errors.New("issue type not available in project")
	ErrTransitionNotFound = errors.New("transition not found")
	ErrEmptyTitle         = errors.New("ticket title cannot be empty")
	ErrEmptyKey           = errors.New("issue key cannot be empty")
)

// Workflow run states.
const (
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Outcome describes one run of the ticket workflow. On failure the fields
// filled by the steps that succeeded are kept.
type Outcome struct {
	RunID             string
	State             string
	FailedStep        string
	Issue             *jira.Issue
	Sprint            *jira.Sprint
	AssigneeAccountID string
}

// IssueKey returns the created issue key, or "".
func (o *Outcome) IssueKey() string {
	if o == nil || o.Issue == nil {
		return ""
	}
	return o.Issue.Key
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStepWrapper decorates every workflow step, e.g. for progress reporting.
func WithStepWrapper(wrap func(pipeline.Step) pipeline.Step) Option {
	return func(e *Engine) {
		e.wrap = wrap
	}
}

// Engine runs operations against one Jira instance.
type Engine struct {
	jira     jira.API
	logger   *slog.Logger
	registry *pipeline.Registry
	wrap     func(pipeline.Step) pipeline.Step
}

// New creates an Engine.
func New(api jira.API, opts ...Option) *Engine {
	e := &Engine{
		jira:     api,
		logger:   slog.Default(),
		registry: pipeline.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	steps.RegisterAll(e.registry)
	return e
}

// Jira returns the underlying client.
func (e *Engine) Jira() jira.API {
	return e.jira
}

// WorkflowSteps returns the step names of the ticket workflow.
func (e *Engine) WorkflowSteps() []string {
	names, _ := pipeline.GetPreset(pipeline.PresetNewTicket)
	return names
}

// Prepare discovers the board, project and issue type to work with. It
// only reads from Jira; persisting the session is up to the caller.
func (e *Engine) Prepare(ctx context.Context, projectKey, issueTypeName string) (*session.Session, error) {
	boards, err := e.jira.Boards(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	if len(boards) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoBoard, projectKey)
	}
	board := boards[0]

	projects, err := e.jira.BoardProjects(ctx, board.ID, projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list board projects: %w", err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoProject, board.Name)
	}
	project := projects[0]

	types, err := e.jira.CreateMeta(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get create metadata: %w", err)
	}
	var issueType *jira.IssueType
	for i := range types {
		if types[i].Name == issueTypeName {
			issueType = &types[i]
			break
		}
	}
	if issueType == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoIssueType, issueTypeName, projectKey)
	}

	e.logger.Info("session prepared",
		"board", board.Name,
		"project", project.Key,
		"issue_type", issueType.Name,
	)

	return &session.Session{
		Version:   session.Version,
		Project:   project,
		Board:     board,
		IssueType: *issueType,
	}, nil
}

// CreateTicket runs the ticket workflow. The returned Outcome is never nil.
// An empty title fails with ErrEmptyTitle before any step runs; a failing
// step yields a *pipeline.StepError.
func (e *Engine) CreateTicket(ctx context.Context, sess *session.Session, ticket pipeline.Ticket, policy assign.Policy) (*Outcome, error) {
	outcome := &Outcome{RunID: uuid.NewString(), State: StateFailed}
	logger := e.logger.With("run_id", outcome.RunID)

	if strings.TrimSpace(ticket.Title) == "" {
		return outcome, ErrEmptyTitle
	}

	names, _ := pipeline.GetPreset(pipeline.PresetNewTicket)
	p, err := e.registry.BuildFromNames(names, &pipeline.Dependencies{Jira: e.jira, Logger: logger})
	if err != nil {
		return outcome, err
	}
	if e.wrap != nil {
		wrapped := make([]pipeline.Step, 0, len(p.Steps()))
		for _, step := range p.Steps() {
			wrapped = append(wrapped, e.wrap(step))
		}
		p = pipeline.New(wrapped...)
	}

	pCtx := pipeline.NewContext(ctx, sess, ticket, policy)
	pCtx.Logger = logger

	runErr := p.Run(pCtx)

	outcome.Issue = pCtx.Issue
	outcome.Sprint = pCtx.Sprint
	outcome.AssigneeAccountID = pCtx.AssigneeAccountID

	if runErr != nil {
		var stepErr *pipeline.StepError
		if errors.As(runErr, &stepErr) {
			outcome.FailedStep = stepErr.Step
		}
		logger.Error("ticket workflow failed",
			"step", outcome.FailedStep,
			"issue", outcome.IssueKey(),
			"error", runErr,
		)
		return outcome, runErr
	}

	outcome.State = StateCompleted
	logger.Info("ticket workflow completed",
		"issue", outcome.IssueKey(),
		"sprint", pCtx.Sprint.Name,
		"assignee", outcome.AssigneeAccountID,
	)
	return outcome, nil
}
