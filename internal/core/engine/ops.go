package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// Comment posts text on an existing issue.
func (e *Engine) Comment(ctx context.Context, key, text string) (*jira.Comment, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	comment, err := e.jira.AddComment(ctx, key, text)
	if err != nil {
		return nil, fmt.Errorf("failed to comment on %s: %w", key, err)
	}
	e.logger.Info("comment added", "issue", key, "comment", comment.ID)
	return comment, nil
}

// Transitions lists the transitions currently available on an issue.
func (e *Engine) Transitions(ctx context.Context, key string) ([]jira.Transition, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	transitions, err := e.jira.Transitions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions of %s: %w", key, err)
	}
	return transitions, nil
}

// Transition applies the transition whose name matches exactly. When none
// matches, ErrTransitionNotFound is returned and nothing is executed.
func (e *Engine) Transition(ctx context.Context, key, name string) (jira.Transition, error) {
	transitions, err := e.Transitions(ctx, key)
	if err != nil {
		return jira.Transition{}, err
	}

	t, ok := jira.FindTransition(transitions, name)
	if !ok {
		return jira.Transition{}, fmt.Errorf("%w: %q on %s", ErrTransitionNotFound, name, key)
	}
	if err := e.jira.DoTransition(ctx, key, t.ID); err != nil {
		return jira.Transition{}, fmt.Errorf("failed to transition %s to %q: %w", key, name, err)
	}
	e.logger.Info("issue transitioned", "issue", key, "transition", t.Name)
	return t, nil
}

// Delete removes an issue.
func (e *Engine) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := e.jira.DeleteIssue(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	e.logger.Info("issue deleted", "issue", key)
	return nil
}

// AssignByEmail assigns the issue to the first user whose email matches
// exactly. It returns the assigned account id.
func (e *Engine) AssignByEmail(ctx context.Context, key, email string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	accountID, err := assign.ResolveEmail(ctx, e.jira, email)
	if err != nil {
		return "", err
	}
	if err := e.jira.AssignIssue(ctx, key, accountID); err != nil {
		return "", fmt.Errorf("failed to assign %s: %w", key, err)
	}
	e.logger.Info("issue assigned", "issue", key, "account", accountID)
	return accountID, nil
}

// Show fetches an issue.
func (e *Engine) Show(ctx context.Context, key string) (*jira.Issue, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	issue, err := e.jira.GetIssue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return issue, nil
}
