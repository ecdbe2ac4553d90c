package tui

import (
	"strings"
	"testing"

	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

func TestUpdateTracksSteps(t *testing.T) {
	steps := []string{"sprint_resolver", "ticket_creator"}
	ch := make(chan StepStatusMsg)
	m := NewModel("New ticket", steps, ch)

	next, _ := m.Update(StepStatusMsg{Step: "sprint_resolver", Status: StatusSuccess, Message: "Completed"})
	next, _ = next.(Model).Update(StepStatusMsg{Step: "ticket_creator", Status: StatusError, Message: "400"})
	got := next.(Model)

	if got.current != 1 {
		t.Errorf("current = %d, want 1", got.current)
	}
	if got.err == nil || !strings.Contains(got.err.Error(), "ticket_creator") {
		t.Errorf("err = %v", got.err)
	}
	view := got.View()
	if !strings.Contains(view, "✓ sprint_resolver") || !strings.Contains(view, "✗ ticket_creator") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestResultQuits(t *testing.T) {
	m := NewModel("New ticket", nil, make(chan StepStatusMsg))
	outcome := &engine.Outcome{State: engine.StateCompleted, Issue: &jira.Issue{Key: "OPS-1"}}

	next, cmd := m.Update(ResultMsg{Outcome: outcome})
	got := next.(Model)

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got.Result() == nil || got.Result().Outcome.IssueKey() != "OPS-1" {
		t.Errorf("Result() = %+v", got.Result())
	}
	if got.View() != "" {
		t.Error("view should be empty once quitting")
	}
}
