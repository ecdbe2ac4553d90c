package steps

import (
	"errors"
	"fmt"

	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

// ErrNoAssignee is returned when assigning without a resolved account id.
var ErrNoAssignee = errors.New("no assignee resolved")

// AssigneeResolver asks the context's policy who should own the issue.
type AssigneeResolver struct{}

// NewAssigneeResolver creates a new assignee resolver step.
func NewAssigneeResolver(_ *pipeline.Dependencies) *AssigneeResolver {
	return &AssigneeResolver{}
}

// Name returns the step name.
func (s *AssigneeResolver) Name() string {
	return "assignee_resolver"
}

// Run resolves the assignee account id.
func (s *AssigneeResolver) Run(ctx *pipeline.Context) error {
	key := ctx.IssueKey()
	if key == "" {
		return ErrNoIssue
	}
	if ctx.Policy == nil {
		return fmt.Errorf("%w: no assignment policy", ErrNoAssignee)
	}

	accountID, err := ctx.Policy.Choose(ctx.Ctx, key)
	if err != nil {
		return fmt.Errorf("failed to resolve assignee (%s): %w", ctx.Policy.Name(), err)
	}

	ctx.AssigneeAccountID = accountID
	ctx.Logger.Debug("assignee resolved", "issue", key, "policy", ctx.Policy.Name(), "account", accountID)
	return nil
}

// Assigner assigns the issue to the resolved account.
type Assigner struct {
	jira jira.API
}

// NewAssigner creates a new assigner step.
func NewAssigner(deps *pipeline.Dependencies) *Assigner {
	return &Assigner{jira: deps.Jira}
}

// Name returns the step name.
func (s *Assigner) Name() string {
	return "assigner"
}

// Run performs the assignment.
func (s *Assigner) Run(ctx *pipeline.Context) error {
	key := ctx.IssueKey()
	if key == "" {
		return ErrNoIssue
	}
	if ctx.AssigneeAccountID == "" {
		return ErrNoAssignee
	}

	if err := s.jira.AssignIssue(ctx.Ctx, key, ctx.AssigneeAccountID); err != nil {
		return fmt.Errorf("failed to assign %s: %w", key, err)
	}
	ctx.Logger.Info("issue assigned", "issue", key, "account", ctx.AssigneeAccountID)
	return nil
}
