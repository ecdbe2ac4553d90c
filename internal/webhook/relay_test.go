// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package webhook_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/integrations/jira"
	"github.com/similigh/gitssues/internal/webhook"
)

// jiraServer is a minimal Jira that records requests by "METHOD path".
type jiraServer struct {
	mu       sync.Mutex
	requests []string
	created  map[string]any
}

func (s *jiraServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()

	switch r.Method + " " + r.URL.Path {
	case "GET /agile/1.0/board/7/sprint":
		_, _ = w.Write([]byte(`{"values":[{"id":31,"name":"Sprint 31","state":"active"}]}`))
	case "POST /api/3/issue":
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.created = payload
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"20001","key":"OPS-101","self":"https://jira.test/rest/api/3/issue/20001"}`))
	case "POST /agile/1.0/sprint/31/issue", "PUT /api/3/issue/OPS-101/assignee":
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/3/user/assignable/search":
		_, _ = w.Write([]byte(`[{"accountId":"acc-1","emailAddress":"alice@acme.io","active":true}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestDeliveryToSprintTicket(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := &jiraServer{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	api, err := jira.NewClient(jira.Config{BaseURL: srv.URL, Username: "bot", Token: "t", Logger: logger})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	store := session.NewStore(filepath.Join(t.TempDir(), "gitssues.cache"))
	if err := store.Save(&session.Session{
		Project:   jira.Project{ID: "10000", Key: "OPS"},
		Board:     jira.Board{ID: "7", Name: "OPS board"},
		IssueType: jira.IssueType{ID: "10004", Name: "Bug"},
	}); err != nil {
		t.Fatal(err)
	}

	relay := engine.NewRelay(engine.New(api, engine.WithLogger(logger)), store, assign.NewRandom(api, nil), []string{"github"})
	verifier, err := webhook.NewVerifier("s3cret", webhook.AlgorithmSHA256)
	if err != nil {
		t.Fatal(err)
	}
	mux := webhook.NewMux(webhook.NewHandler(verifier, relay, logger))

	body := []byte(`{"action":"opened","issue":{"number":12,"title":"Login fails","url":"https://api.github.test/repos/acme/app/issues/12",
		"user":{"login":"octocat"},"labels":[{"name":"bug"}],"body":"500 on submit"}}`)
	req := httptest.NewRequest(http.MethodPost, "/github", bytes.NewReader(body))
	req.Header.Set(webhook.HeaderSHA256, verifier.Sign(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	var resp webhook.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "Ticket OPS-101 created" {
		t.Errorf("Status = %q", resp.Status)
	}

	want := []string{
		"GET /agile/1.0/board/7/sprint",
		"POST /api/3/issue",
		"POST /agile/1.0/sprint/31/issue",
		"GET /api/3/user/assignable/search",
		"PUT /api/3/issue/OPS-101/assignee",
	}
	if len(backend.requests) != len(want) {
		t.Fatalf("requests = %v, want %v", backend.requests, want)
	}
	for i := range want {
		if backend.requests[i] != want[i] {
			t.Errorf("request %d = %s, want %s", i, backend.requests[i], want[i])
		}
	}

	fields, _ := backend.created["fields"].(map[string]any)
	if fields["summary"] != "['bug'] #12 Login fails by octocat" {
		t.Errorf("summary = %v", fields["summary"])
	}
}
