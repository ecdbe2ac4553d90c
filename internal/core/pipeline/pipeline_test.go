package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/similigh/gitssues/internal/integrations/jira"
)

type funcStep struct {
	name string
	run  func(ctx *Context) error
}

func (s funcStep) Name() string           { return s.name }
func (s funcStep) Run(ctx *Context) error { return s.run(ctx) }

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	record := func(name string, err error) Step {
		return funcStep{name: name, run: func(ctx *Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	p := New(record("a", nil), record("b", boom), record("c", nil))
	err := p.Run(NewContext(context.Background(), nil, Ticket{}, nil))

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if stepErr.Step != "b" || stepErr.Index != 2 {
		t.Errorf("got step %q index %d, want b/2", stepErr.Step, stepErr.Index)
	}
	if !errors.Is(err, boom) {
		t.Error("StepError should unwrap to the step's error")
	}
	if diff := cmp.Diff([]string{"a", "b"}, ran); diff != "" {
		t.Errorf("steps run mismatch (-want +got):\n%s", diff)
	}
}

func TestStepErrorCarriesIssueKey(t *testing.T) {
	create := funcStep{name: "create", run: func(ctx *Context) error {
		ctx.Issue = &jira.Issue{ID: "1", Key: "OPS-42"}
		return nil
	}}
	fail := funcStep{name: "move", run: func(ctx *Context) error {
		return errors.New("sprint closed")
	}}

	err := New(create, fail).Run(NewContext(context.Background(), nil, Ticket{}, nil))

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if stepErr.IssueKey != "OPS-42" {
		t.Errorf("IssueKey = %q, want OPS-42", stepErr.IssueKey)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	p := New(funcStep{name: "a", run: func(*Context) error { called = true; return nil }})
	err := p.Run(NewContext(ctx, nil, Ticket{}, nil))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("step should not run after cancellation")
	}
}

func TestRegistryBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(*Dependencies) (Step, error) {
		return funcStep{name: "a", run: func(*Context) error { return nil }}, nil
	})

	p, err := r.BuildFromNames([]string{"a"}, &Dependencies{})
	if err != nil {
		t.Fatalf("BuildFromNames failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, p.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.BuildFromNames([]string{"a", "missing"}, &Dependencies{}); err == nil {
		t.Error("expected error for unknown step")
	}
}

func TestNewTicketPreset(t *testing.T) {
	got, ok := GetPreset(PresetNewTicket)
	if !ok {
		t.Fatal("new-ticket preset missing")
	}
	want := []string{"sprint_resolver", "ticket_creator", "sprint_placer", "assignee_resolver", "assigner"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}
}
