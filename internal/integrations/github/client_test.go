// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v60/github"
)

// newTestClient points a go-github client at a local server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("Failed to parse server URL: %v", err)
	}
	gh.BaseURL = base
	return &Client{client: gh}
}

func TestCreateCommentValidation(t *testing.T) {
	// Validation runs before any API call
	client := &Client{client: nil}

	if _, err := client.CreateComment(context.Background(), "org/repo", 1, ""); err == nil {
		t.Error("Expected error for empty comment body")
	}
	if _, err := client.CreateComment(context.Background(), "org/repo", 1, "   "); err == nil {
		t.Error("Expected error for whitespace-only comment body")
	}
}

func TestSetIssueStateValidation(t *testing.T) {
	client := &Client{client: nil}

	if _, err := client.SetIssueState(context.Background(), "org/repo", 1, "merged"); err == nil {
		t.Error("Expected error for invalid state")
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		name       string
		fullName   string
		shouldFail bool
	}{
		{"valid format", "owner/repo", false},
		{"missing slash", "ownerrepo", true},
		{"empty owner", "/repo", true},
		{"empty repo", "owner/", true},
		{"empty string", "", true},
		{"too many slashes", "owner/repo/extra", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepo(tt.fullName)
			if tt.shouldFail {
				if err == nil {
					t.Errorf("Expected error for %q", tt.fullName)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if owner != "owner" || repo != "repo" {
				t.Errorf("got %s/%s", owner, repo)
			}
		})
	}
}

func TestCreateIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/acme/app/issues" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req github.IssueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.GetTitle() != "Crash" {
			t.Errorf("title = %q", req.GetTitle())
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":42,"title":"Crash"}`))
	})

	issue, err := client.CreateIssue(context.Background(), "acme/app", "Crash", "desc")
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if issue.GetNumber() != 42 {
		t.Errorf("number = %d, want 42", issue.GetNumber())
	}
}

func TestSetIssueStateSendsPatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/repos/acme/app/issues/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req github.IssueRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GetState() != StateClosed {
			t.Errorf("state = %q, want closed", req.GetState())
		}
		_, _ = w.Write([]byte(`{"number":7,"state":"closed"}`))
	})

	issue, err := client.SetIssueState(context.Background(), "acme/app", 7, StateClosed)
	if err != nil {
		t.Fatalf("SetIssueState failed: %v", err)
	}
	if issue.GetState() != StateClosed {
		t.Errorf("state = %q", issue.GetState())
	}
}

func TestErrorsAreTyped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := client.ListIssues(context.Background(), "acme/missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}
