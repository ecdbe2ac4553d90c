// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-14
// Last Modified: 2026-10-19

// Package assign decides who a freshly created ticket is assigned to.
package assign

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/similigh/gitssues/internal/integrations/jira"
	"github.com/similigh/gitssues/internal/integrations/opsgenie"
)

var (
	// ErrNoAssignableUsers is returned when nobody can be assigned to the issue.
	ErrNoAssignableUsers = errors.New("no assignable users for issue")
	// ErrNoOnCallParticipant is returned when the schedule has nobody on call.
	ErrNoOnCallParticipant = errors.New("no on-call participant")
	// ErrNoDirectoryMatch is returned when an identity has no matching Jira user.
	ErrNoDirectoryMatch = errors.New("no matching user in directory")
)

// Policy resolves the account id of the assignee for an issue.
type Policy interface {
	Name() string
	Choose(ctx context.Context, issueKey string) (string, error)
}

// Directory is the subset of the Jira API used to look users up.
type Directory interface {
	AssignableUsers(ctx context.Context, issueKey string) ([]jira.User, error)
	SearchUsers(ctx context.Context, query string) ([]jira.User, error)
}

// OnCallSource lists who is currently on call.
type OnCallSource interface {
	OnCallParticipants(ctx context.Context) ([]opsgenie.Participant, error)
}

// Random picks uniformly among the users assignable to the issue.
type Random struct {
	dir Directory

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random policy. A nil rng is seeded from the clock.
func NewRandom(dir Directory, rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{dir: dir, rng: rng}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Choose(ctx context.Context, issueKey string) (string, error) {
	users, err := r.dir.AssignableUsers(ctx, issueKey)
	if err != nil {
		return "", fmt.Errorf("failed to list assignable users: %w", err)
	}
	if len(users) == 0 {
		return "", fmt.Errorf("%w %s", ErrNoAssignableUsers, issueKey)
	}

	r.mu.Lock()
	idx := r.rng.Intn(len(users))
	r.mu.Unlock()

	return users[idx].AccountID, nil
}

// OnCall assigns the first on-call participant, matched against the
// assignable users by configurable fields.
type OnCall struct {
	dir              Directory
	source           OnCallSource
	participantField string
	userField        string
}

// NewOnCall creates an OnCall policy. Empty field names default to
// "name" and "emailAddress".
func NewOnCall(dir Directory, source OnCallSource, participantField, userField string) *OnCall {
	if participantField == "" {
		participantField = "name"
	}
	if userField == "" {
		userField = "emailAddress"
	}
	return &OnCall{
		dir:              dir,
		source:           source,
		participantField: participantField,
		userField:        userField,
	}
}

func (o *OnCall) Name() string { return "on-call" }

func (o *OnCall) Choose(ctx context.Context, issueKey string) (string, error) {
	participants, err := o.source.OnCallParticipants(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve on-call: %w", err)
	}
	if len(participants) == 0 {
		return "", ErrNoOnCallParticipant
	}
	identity := participants[0].Field(o.participantField)

	users, err := o.dir.AssignableUsers(ctx, issueKey)
	if err != nil {
		return "", fmt.Errorf("failed to list assignable users: %w", err)
	}
	if id, ok := match(users, o.userField, identity); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s=%q", ErrNoDirectoryMatch, o.userField, identity)
}

// FixedEmail always assigns the user owning one email address.
type FixedEmail struct {
	dir   Directory
	email string
}

func NewFixedEmail(dir Directory, email string) *FixedEmail {
	return &FixedEmail{dir: dir, email: email}
}

func (f *FixedEmail) Name() string { return "email" }

func (f *FixedEmail) Choose(ctx context.Context, _ string) (string, error) {
	return ResolveEmail(ctx, f.dir, f.email)
}

// ResolveEmail searches the whole directory and returns the account id of
// the first user whose email matches exactly.
func ResolveEmail(ctx context.Context, dir Directory, email string) (string, error) {
	users, err := dir.SearchUsers(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to search users: %w", err)
	}
	if id, ok := match(users, "emailAddress", email); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: emailAddress=%q", ErrNoDirectoryMatch, email)
}

// match is exact and case-sensitive; first hit wins.
func match(users []jira.User, field, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	for _, u := range users {
		if u.Field(field) == value {
			return u.AccountID, true
		}
	}
	return "", false
}
