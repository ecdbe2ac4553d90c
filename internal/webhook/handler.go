package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/utils/text"
)

// maxBodySize bounds webhook payloads; GitHub caps deliveries at 25 MB.
const maxBodySize = 25 * 1024 * 1024

// deduplicationWindow is how long delivery IDs are remembered.
const deduplicationWindow = 1 * time.Hour

// defaultWorkflowTimeout bounds one ticket workflow run.
const defaultWorkflowTimeout = 2 * time.Minute

// TicketCreator creates a Jira ticket from normalized content.
type TicketCreator interface {
	CreateTicket(ctx context.Context, title, content string) (*engine.Outcome, error)
}

// Response is the JSON body of every reply.
type Response struct {
	Status string `json:"Status"`
}

// Handler is the http.Handler for GitHub issue deliveries.
type Handler struct {
	verifier *Verifier
	tickets  TicketCreator
	logger   *slog.Logger
	now      func() time.Time

	// workflowTimeout bounds the ticket workflow, which outlives the request.
	workflowTimeout time.Duration

	mu         sync.Mutex
	deliveries map[string]time.Time
}

// NewHandler creates a Handler. A nil logger uses slog.Default().
func NewHandler(verifier *Verifier, tickets TicketCreator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		verifier:        verifier,
		tickets:         tickets,
		logger:          logger,
		now:             time.Now,
		workflowTimeout: defaultWorkflowTimeout,
		deliveries:      make(map[string]time.Time),
	}
}

// ServeHTTP handles a single delivery.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// HMAC verification needs the raw bytes.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		writeJSON(w, http.StatusInternalServerError, "Failed to read body")
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(h.verifier.Header())); err != nil {
		h.logger.Warn("webhook: signature verification failed",
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
		if errors.Is(err, ErrUnsupportedAlgorithm) {
			writeJSON(w, http.StatusNotImplemented, "Unsupported signature algorithm")
			return
		}
		writeJSON(w, http.StatusForbidden, "Forbidden")
		return
	}

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID != "" && h.isDuplicate(deliveryID) {
		h.logger.Debug("webhook: duplicate delivery, ignoring", "delivery_id", deliveryID)
		writeJSON(w, http.StatusOK, "Duplicate delivery")
		return
	}

	ev, err := ParseEvent(body)
	if err != nil {
		h.forget(deliveryID)
		writeJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	kind := ev.Classify()
	logger := h.logger.With("delivery_id", deliveryID, "kind", kind.String())

	switch kind {
	case KindPing:
		if ev.HookID != 0 || ev.Zen != "" {
			logger.Info("new webhook detected", "hook_id", ev.HookID, "zen", ev.Zen)
		}
		writeJSON(w, http.StatusOK, "Pong")
	case KindOpened:
		// The workflow runs to completion even when GitHub hangs up after 10s.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.workflowTimeout)
		defer cancel()
		h.relayOpened(ctx, w, logger, ev, deliveryID)
	case KindComment:
		// Comment mirroring is not implemented.
		logger.Debug("webhook: comment event ignored")
		writeJSON(w, http.StatusOK, "Comment event ignored")
	case KindClosed:
		// Close mirroring is not implemented.
		logger.Debug("webhook: close event ignored")
		writeJSON(w, http.StatusOK, "Close event ignored")
	default:
		logger.Debug("webhook: unknown action", "action", *ev.Action)
		writeJSON(w, http.StatusOK, "Unknown action")
	}
}

func (h *Handler) relayOpened(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, ev *Event, deliveryID string) {
	issue, err := ev.SourceIssue()
	if err != nil {
		h.forget(deliveryID)
		logger.Warn("webhook: unusable issue payload", "error", err)
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	title, content := text.NormalizeIssue(issue)
	outcome, err := h.tickets.CreateTicket(ctx, title, content)
	if err != nil {
		if outcome.IssueKey() == "" {
			h.forget(deliveryID)
		}
		if errors.Is(err, session.ErrNotPrepared) {
			logger.Error("webhook: session not prepared")
			writeJSON(w, http.StatusServiceUnavailable, "Run prepare before!")
			return
		}
		logger.Error("webhook: ticket workflow failed", "issue", issue.Number, "error", err)
		writeJSON(w, http.StatusBadGateway, failureStatus(err))
		return
	}

	logger.Info("webhook: ticket created", "issue", issue.Number, "ticket", outcome.IssueKey())
	writeJSON(w, http.StatusOK, fmt.Sprintf("Ticket %s created", outcome.IssueKey()))
}

func failureStatus(err error) string {
	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) {
		return "Ticket creation failed: " + err.Error()
	}
	if stepErr.IssueKey != "" {
		return fmt.Sprintf("Ticket creation failed at %s (issue %s)", stepErr.Step, stepErr.IssueKey)
	}
	return fmt.Sprintf("Ticket creation failed at %s", stepErr.Step)
}

// isDuplicate checks and records a delivery ID, pruning expired entries.
func (h *Handler) isDuplicate(deliveryID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for id, receivedAt := range h.deliveries {
		if now.Sub(receivedAt) > deduplicationWindow {
			delete(h.deliveries, id)
		}
	}

	if _, exists := h.deliveries[deliveryID]; exists {
		return true
	}
	h.deliveries[deliveryID] = now
	return false
}

// forget drops a delivery so a redelivery is processed again.
func (h *Handler) forget(deliveryID string) {
	if deliveryID == "" {
		return
	}
	h.mu.Lock()
	delete(h.deliveries, deliveryID)
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Status: status})
}

// NewMux wires the delivery handler next to the index and health routes.
func NewMux(deliveries http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeJSON(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, "It works!")
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "ok")
	})
	mux.Handle("/github", deliveries)
	return mux
}
