// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/tui"
)

// statusReportingStep reports each step's progress.
type statusReportingStep struct {
	inner  pipeline.Step
	report func(tui.StepStatusMsg)
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.report(tui.StepStatusMsg{Step: s.Name(), Status: tui.StatusStarted})

	if err := s.inner.Run(ctx); err != nil {
		s.report(tui.StepStatusMsg{Step: s.Name(), Status: tui.StatusError, Message: err.Error()})
		return err
	}

	s.report(tui.StepStatusMsg{Step: s.Name(), Status: tui.StatusSuccess, Message: "Completed"})
	return nil
}

// ticketRunner runs the ticket workflow either behind the progress TUI or,
// in plain mode, printing one line per step.
type ticketRunner struct {
	plain      bool
	statusChan chan tui.StepStatusMsg
}

func newTicketRunner(plain bool) *ticketRunner {
	r := &ticketRunner{plain: plain}
	if !plain {
		// Each step reports at most twice; the workflow never blocks on a quit TUI.
		names, _ := pipeline.GetPreset(pipeline.PresetNewTicket)
		r.statusChan = make(chan tui.StepStatusMsg, 2*len(names))
	}
	return r
}

// logger keeps slog output from drawing over the TUI.
func (r *ticketRunner) logger() *slog.Logger {
	if r.plain || verbose {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *ticketRunner) wrap(step pipeline.Step) pipeline.Step {
	return &statusReportingStep{inner: step, report: r.report}
}

func (r *ticketRunner) report(msg tui.StepStatusMsg) {
	if !r.plain {
		r.statusChan <- msg
		return
	}
	if msg.Message == "" {
		fmt.Printf("[%s] %s\n", msg.Step, msg.Status)
		return
	}
	fmt.Printf("[%s] %s: %s\n", msg.Step, msg.Status, msg.Message)
}

func (r *ticketRunner) run(ctx context.Context, eng *engine.Engine, sess *session.Session, title, content string, labels []string, policy assign.Policy) (*engine.Outcome, error) {
	ticket := pipeline.Ticket{Title: title, Content: content, Labels: labels}
	if r.plain {
		return eng.CreateTicket(ctx, sess, ticket, policy)
	}

	model := tui.NewModel("gitssues: new ticket", eng.WorkflowSteps(), r.statusChan)
	p := tea.NewProgram(model)

	go func() {
		outcome, err := eng.CreateTicket(ctx, sess, ticket, policy)
		close(r.statusChan)
		p.Send(tui.ResultMsg{Outcome: outcome, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run progress display: %w", err)
	}
	result := final.(tui.Model).Result()
	if result == nil {
		return nil, fmt.Errorf("interrupted before the workflow finished")
	}
	return result.Outcome, result.Err
}
