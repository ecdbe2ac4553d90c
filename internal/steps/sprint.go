// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-14
// Last Modified: 2026-10-19

// Package steps contains the ticket workflow steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"errors"
	"fmt"

	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

var (
	// ErrNoActiveSprint is returned when the board has no active sprint.
	ErrNoActiveSprint = errors.New("no active sprint on board")
	// ErrNoIssue is returned by steps that need a created issue.
	ErrNoIssue = errors.New("no issue key to act on")
	// ErrSprintNotActive is returned when asked to move into a non-active sprint.
	ErrSprintNotActive = errors.New("sprint is not active")
)

// SprintResolver finds the board's active sprint.
type SprintResolver struct {
	jira jira.API
}

// NewSprintResolver creates a new sprint resolver step.
func NewSprintResolver(deps *pipeline.Dependencies) *SprintResolver {
	return &SprintResolver{jira: deps.Jira}
}

// Name returns the step name.
func (s *SprintResolver) Name() string {
	return "sprint_resolver"
}

// Run picks the first active sprint of the session's board.
func (s *SprintResolver) Run(ctx *pipeline.Context) error {
	board := ctx.Session.Board
	sprints, err := s.jira.Sprints(ctx.Ctx, board.ID, jira.SprintActive)
	if err != nil {
		return fmt.Errorf("failed to get sprints: %w", err)
	}
	if len(sprints) == 0 {
		return fmt.Errorf("%w %s (%s)", ErrNoActiveSprint, board.Name, board.ID)
	}

	sprint := sprints[0]
	ctx.Sprint = &sprint
	ctx.Logger.Debug("active sprint resolved", "sprint", sprint.Name, "id", sprint.ID)
	return nil
}

// SprintPlacer moves the created issue into the resolved sprint.
type SprintPlacer struct {
	jira jira.API
}

// NewSprintPlacer creates a new sprint placer step.
func NewSprintPlacer(deps *pipeline.Dependencies) *SprintPlacer {
	return &SprintPlacer{jira: deps.Jira}
}

// Name returns the step name.
func (s *SprintPlacer) Name() string {
	return "sprint_placer"
}

// Run moves the issue. It refuses when the sprint is not active.
func (s *SprintPlacer) Run(ctx *pipeline.Context) error {
	key := ctx.IssueKey()
	if key == "" {
		return ErrNoIssue
	}
	if ctx.Sprint == nil || !ctx.Sprint.IsActive() {
		return ErrSprintNotActive
	}

	if err := s.jira.MoveIssuesToSprint(ctx.Ctx, ctx.Sprint.ID, key); err != nil {
		return fmt.Errorf("failed to move %s to sprint %s: %w", key, ctx.Sprint.Name, err)
	}
	ctx.Logger.Info("issue moved to sprint", "issue", key, "sprint", ctx.Sprint.Name)
	return nil
}
