package engine

import (
	"context"
	"fmt"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/pipeline"
	"github.com/similigh/gitssues/internal/core/session"
)

// Relay turns normalized source issues into Jira tickets. The session is
// loaded on every call so a fresh "prepare" is picked up without restart.
type Relay struct {
	engine *Engine
	store  *session.Store
	policy assign.Policy
	labels []string
}

// NewRelay creates a Relay.
func NewRelay(engine *Engine, store *session.Store, policy assign.Policy, labels []string) *Relay {
	return &Relay{
		engine: engine,
		store:  store,
		policy: policy,
		labels: labels,
	}
}

// CreateTicket loads the session and runs the ticket workflow. A missing
// session yields session.ErrNotPrepared and a nil Outcome.
func (r *Relay) CreateTicket(ctx context.Context, title, content string) (*Outcome, error) {
	sess, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return r.engine.CreateTicket(ctx, sess, pipeline.Ticket{
		Title:   title,
		Content: content,
		Labels:  r.labels,
	}, r.policy)
}
