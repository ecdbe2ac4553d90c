package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/similigh/gitssues/internal/utils/text"
)

// ErrInvalidPayload is returned for bodies that cannot be used.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// Kind classifies a delivery by its top-level action.
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindOpened
	KindComment
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindOpened:
		return "opened"
	case KindComment:
		return "comment"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is the part of a GitHub delivery the relay looks at.
type Event struct {
	Action *string       `json:"action"`
	HookID int64         `json:"hook_id"`
	Zen    string        `json:"zen"`
	Issue  *issuePayload `json:"issue"`
}

type issuePayload struct {
	Number int     `json:"number"`
	Title  *string `json:"title"`
	URL    string  `json:"url"`
	Body   *string `json:"body"`
	User   *struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// ParseEvent decodes a delivery body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &ev, nil
}

// Classify maps the action to a Kind. A delivery without an action is a ping.
func (e *Event) Classify() Kind {
	if e.Action == nil {
		return KindPing
	}
	switch *e.Action {
	case "opened":
		return KindOpened
	case "created":
		return KindComment
	case "closed":
		return KindClosed
	default:
		return KindUnknown
	}
}

// SourceIssue extracts the issue of an "opened" delivery.
func (e *Event) SourceIssue() (text.Issue, error) {
	p := e.Issue
	switch {
	case p == nil:
		return text.Issue{}, fmt.Errorf("%w: issue missing", ErrInvalidPayload)
	case p.Number == 0:
		return text.Issue{}, fmt.Errorf("%w: issue.number missing", ErrInvalidPayload)
	case p.Title == nil:
		return text.Issue{}, fmt.Errorf("%w: issue.title missing", ErrInvalidPayload)
	case p.URL == "":
		return text.Issue{}, fmt.Errorf("%w: issue.url missing", ErrInvalidPayload)
	case p.User == nil || p.User.Login == "":
		return text.Issue{}, fmt.Errorf("%w: issue.user.login missing", ErrInvalidPayload)
	}

	issue := text.Issue{
		Number: p.Number,
		Title:  *p.Title,
		URL:    p.URL,
		Author: p.User.Login,
	}
	if p.Body != nil {
		issue.Body = *p.Body
	}
	for _, l := range p.Labels {
		issue.Labels = append(issue.Labels, l.Name)
	}
	return issue, nil
}
