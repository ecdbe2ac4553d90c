package steps

import (
	"fmt"

	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

// TicketCreator creates the Jira issue.
type TicketCreator struct {
	jira jira.API
}

// NewTicketCreator creates a new ticket creator step.
func NewTicketCreator(deps *pipeline.Dependencies) *TicketCreator {
	return &TicketCreator{jira: deps.Jira}
}

// Name returns the step name.
func (s *TicketCreator) Name() string {
	return "ticket_creator"
}

// Run creates the issue in the session's project with its default issue type.
func (s *TicketCreator) Run(ctx *pipeline.Context) error {
	issue, err := s.jira.CreateIssue(ctx.Ctx, jira.IssueFields{
		Summary:     ctx.Ticket.Title,
		Description: ctx.Ticket.Content,
		ProjectID:   ctx.Session.Project.ID,
		IssueTypeID: ctx.Session.IssueType.ID,
		Labels:      ctx.Ticket.Labels,
	})
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	ctx.Issue = issue
	ctx.Logger.Info("issue created", "issue", issue.Key, "project", ctx.Session.Project.Key)
	return nil
}
