package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/integrations/jira"
	"github.com/similigh/gitssues/internal/integrations/jira/jiratest"
)

type fakeTickets struct {
	outcome *engine.Outcome
	err     error
	titles  []string
	bodies  []string
	ctxs    []context.Context
}

func (f *fakeTickets) CreateTicket(ctx context.Context, title, content string) (*engine.Outcome, error) {
	f.ctxs = append(f.ctxs, ctx)
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, content)
	return f.outcome, f.err
}

const openedPayload = `{
  "action": "opened",
  "issue": {
    "number": 1,
    "title": "Crash",
    "url": "https://example.test/1",
    "user": {"login": "octocat"},
    "labels": [{"name": "bug"}, {"name": "p1"}],
    "body": "Stack trace"
  }
}`

func newTestHandler(t *testing.T, tickets TicketCreator) (*Handler, *Verifier) {
	t.Helper()
	v := mustVerifier(t, AlgorithmSHA1)
	return NewHandler(v, tickets, slog.New(slog.NewTextHandler(io.Discard, nil))), v
}

func post(h http.Handler, v *Verifier, body, delivery string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/github", bytes.NewBufferString(body))
	if v != nil {
		req.Header.Set(v.Header(), v.Sign([]byte(body)))
	}
	if delivery != "" {
		req.Header.Set("X-GitHub-Delivery", delivery)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func status(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return resp.Status
}

func TestOpenedIssueCreatesTicket(t *testing.T) {
	tickets := &fakeTickets{outcome: &engine.Outcome{State: engine.StateCompleted, Issue: &jira.Issue{Key: "OPS-7"}}}
	h, v := newTestHandler(t, tickets)

	rec := post(h, v, openedPayload, "d-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	if got := status(t, rec); got != "Ticket OPS-7 created" {
		t.Errorf("Status = %q", got)
	}
	if len(tickets.titles) != 1 || tickets.titles[0] != "['bug', 'p1'] #1 Crash by octocat" {
		t.Errorf("titles = %q", tickets.titles)
	}
	if tickets.bodies[0] != "Stack trace\n----\nURL: https://example.test/1" {
		t.Errorf("content = %q", tickets.bodies[0])
	}
}

func TestClassifiedPassthrough(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status string
	}{
		{"ping", `{"zen":"Keep it logically awesome.","hook_id":42}`, "Pong"},
		{"comment", `{"action":"created","comment":{"body":"hi"}}`, "Comment event ignored"},
		{"closed", `{"action":"closed","issue":{"number":1}}`, "Close event ignored"},
		{"unknown", `{"action":"labeled"}`, "Unknown action"},
		{"empty action", `{"action":""}`, "Unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets := &fakeTickets{}
			h, v := newTestHandler(t, tickets)

			rec := post(h, v, tt.body, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d", rec.Code)
			}
			if got := status(t, rec); got != tt.status {
				t.Errorf("Status = %q, want %q", got, tt.status)
			}
			if len(tickets.titles) != 0 {
				t.Error("no ticket expected")
			}
		})
	}
}

// hangUpJira cancels the inbound request as soon as the ticket exists.
type hangUpJira struct {
	*jiratest.Fake
	hangUp context.CancelFunc
}

func (j *hangUpJira) CreateIssue(ctx context.Context, fields jira.IssueFields) (*jira.Issue, error) {
	j.hangUp()
	return j.Fake.CreateIssue(ctx, fields)
}

func TestClientDisconnectDoesNotAbortWorkflow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := &jiratest.Fake{
		SprintList: []jira.Sprint{{ID: "31", Name: "Sprint 31", State: jira.SprintActive}},
		Created:    &jira.Issue{ID: "20001", Key: "OPS-1"},
		Assignable: []jira.User{{AccountID: "acc-1", EmailAddress: "alice@acme.io"}},
	}
	reqCtx, hangUp := context.WithCancel(context.Background())
	defer hangUp()
	api := &hangUpJira{Fake: fake, hangUp: hangUp}

	store := session.NewStore(filepath.Join(t.TempDir(), "gitssues.cache"))
	if err := store.Save(&session.Session{
		Project:   jira.Project{ID: "10000", Key: "OPS"},
		Board:     jira.Board{ID: "7", Name: "OPS board"},
		IssueType: jira.IssueType{ID: "10004", Name: "Bug"},
	}); err != nil {
		t.Fatal(err)
	}
	relay := engine.NewRelay(engine.New(api, engine.WithLogger(logger)), store, assign.NewRandom(api, nil), nil)
	h, v := newTestHandler(t, relay)

	req := httptest.NewRequest(http.MethodPost, "/github", bytes.NewBufferString(openedPayload)).WithContext(reqCtx)
	req.Header.Set(v.Header(), v.Sign([]byte(openedPayload)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if reqCtx.Err() == nil {
		t.Fatal("request context should have been cancelled during the run")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	if got := status(t, rec); got != "Ticket OPS-1 created" {
		t.Errorf("Status = %q", got)
	}
	if n := fake.Count("MoveIssuesToSprint"); n != 1 {
		t.Errorf("MoveIssuesToSprint calls = %d, want 1", n)
	}
	if n := fake.Count("AssignIssue"); n != 1 {
		t.Errorf("AssignIssue calls = %d, want 1", n)
	}
}

func TestWorkflowContextHasDeadline(t *testing.T) {
	tickets := &fakeTickets{outcome: &engine.Outcome{State: engine.StateCompleted, Issue: &jira.Issue{Key: "OPS-7"}}}
	h, v := newTestHandler(t, tickets)
	h.workflowTimeout = time.Minute

	start := time.Now()
	post(h, v, openedPayload, "")

	if len(tickets.ctxs) != 1 {
		t.Fatalf("CreateTicket calls = %d, want 1", len(tickets.ctxs))
	}
	deadline, ok := tickets.ctxs[0].Deadline()
	if !ok {
		t.Fatal("workflow context has no deadline")
	}
	if d := deadline.Sub(start); d <= 0 || d > time.Minute+time.Second {
		t.Errorf("deadline %v after start, want about 1m", d)
	}
}

func TestVerificationFailures(t *testing.T) {
	tickets := &fakeTickets{}
	h, v := newTestHandler(t, tickets)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusForbidden},
		{"malformed", "nonsense", http.StatusForbidden},
		{"wrong digest", "sha1=" + fmt.Sprintf("%040d", 0), http.StatusForbidden},
		{"unsupported", "sha512=abcd", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/github", bytes.NewBufferString(openedPayload))
			if tt.header != "" {
				req.Header.Set(v.Header(), tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
		})
	}
	if len(tickets.titles) != 0 {
		t.Error("unverified deliveries must not reach the relay")
	}
}

func TestBadRequests(t *testing.T) {
	h, v := newTestHandler(t, &fakeTickets{})

	if rec := post(h, v, "not json", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: code = %d", rec.Code)
	}
	if rec := post(h, v, `{"action":"opened"}`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("opened without issue: code = %d", rec.Code)
	}
	if rec := post(h, v, `{"action":"opened","issue":{"number":3,"title":"t","url":"u"}}`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("opened without user: code = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/github", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: code = %d", rec.Code)
	}
}

func TestWorkflowErrors(t *testing.T) {
	tests := []struct {
		name   string
		tk     *fakeTickets
		code   int
		status string
	}{
		{
			name:   "not prepared",
			tk:     &fakeTickets{err: fmt.Errorf("failed to load session: %w", session.ErrNotPrepared)},
			code:   http.StatusServiceUnavailable,
			status: "Run prepare before!",
		},
		{
			name: "step failed after create",
			tk: &fakeTickets{
				outcome: &engine.Outcome{State: engine.StateFailed, FailedStep: "sprint_placer", Issue: &jira.Issue{Key: "OPS-9"}},
				err:     &pipeline.StepError{Step: "sprint_placer", Index: 3, IssueKey: "OPS-9", Err: errors.New("400")},
			},
			code:   http.StatusBadGateway,
			status: "Ticket creation failed at sprint_placer (issue OPS-9)",
		},
		{
			name: "step failed before create",
			tk: &fakeTickets{
				outcome: &engine.Outcome{State: engine.StateFailed, FailedStep: "sprint_resolver"},
				err:     &pipeline.StepError{Step: "sprint_resolver", Index: 1, Err: errors.New("no sprint")},
			},
			code:   http.StatusBadGateway,
			status: "Ticket creation failed at sprint_resolver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, v := newTestHandler(t, tt.tk)
			rec := post(h, v, openedPayload, "")

			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			if got := status(t, rec); got != tt.status {
				t.Errorf("Status = %q, want %q", got, tt.status)
			}
		})
	}
}

func TestDuplicateDeliveryIgnored(t *testing.T) {
	tickets := &fakeTickets{outcome: &engine.Outcome{Issue: &jira.Issue{Key: "OPS-7"}}}
	h, v := newTestHandler(t, tickets)

	post(h, v, openedPayload, "d-1")
	rec := post(h, v, openedPayload, "d-1")

	if rec.Code != http.StatusOK || status(t, rec) != "Duplicate delivery" {
		t.Errorf("second delivery: code %d, body %s", rec.Code, rec.Body)
	}
	if len(tickets.titles) != 1 {
		t.Errorf("relay called %d times, want 1", len(tickets.titles))
	}
}

func TestDeduplicationWindowExpires(t *testing.T) {
	tickets := &fakeTickets{outcome: &engine.Outcome{Issue: &jira.Issue{Key: "OPS-7"}}}
	h, v := newTestHandler(t, tickets)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	post(h, v, openedPayload, "d-1")
	now = now.Add(deduplicationWindow + time.Minute)
	post(h, v, openedPayload, "d-1")

	if len(tickets.titles) != 2 {
		t.Errorf("relay called %d times, want 2", len(tickets.titles))
	}
}

func TestFailedDeliveryCanBeRetried(t *testing.T) {
	tickets := &fakeTickets{err: session.ErrNotPrepared}
	h, v := newTestHandler(t, tickets)

	post(h, v, openedPayload, "d-1")
	post(h, v, openedPayload, "d-1")

	if len(tickets.titles) != 2 {
		t.Errorf("relay called %d times, want 2", len(tickets.titles))
	}
}

func TestMuxRoutes(t *testing.T) {
	h, _ := newTestHandler(t, &fakeTickets{})
	mux := NewMux(h)

	for path, want := range map[string]string{"/": "It works!", "/health": "ok"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || status(t, rec) != want {
			t.Errorf("%s: code %d body %s", path, rec.Code, rec.Body)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("/github GET: code %d", rec.Code)
	}
}
