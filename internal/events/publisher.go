package events

import (
	"context"
	"time"
)

// Topic carries every project lifecycle event.
const Topic = "project-events"

// Event types published on the topic.
const (
	TypeProjectSubmitted = "project.submitted"
	TypeProjectApproved  = "project.approved"
	TypeProjectRejected  = "project.rejected"
)

// Event is the envelope published for project lifecycle changes.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// ProjectEvent is the payload for all project lifecycle event types.
type ProjectEvent struct {
	ProjectID    uint   `json:"project_id"`
	ProjectName  string `json:"project_name"`
	OwnerID      uint   `json:"owner_id"`
	Department   string `json:"department"`
	Status       string `json:"status"`
	AdminMessage string `json:"admin_message,omitempty"`
}

// EventPublisher publishes lifecycle events. Publishing is best effort:
// callers log failures but never fail the originating request on them.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
