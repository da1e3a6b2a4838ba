// Package events publishes domain events after state changes are committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an event. It doubles as the subject suffix on the bus.
type Type string

const (
	UserRegistered Type = "user.registered"
	UserFollowed   Type = "user.followed"
	UserUnfollowed Type = "user.unfollowed"
	PostCreated    Type = "post.created"
	PostDeleted    Type = "post.deleted"
	PostLiked      Type = "post.liked"
	PostUnliked    Type = "post.unliked"
	CommentCreated Type = "comment.created"
	CommentDeleted Type = "comment.deleted"
	CommentLiked   Type = "comment.liked"
	CommentUnliked Type = "comment.unliked"
)

// Event is the payload sent on the bus.
type Event struct {
	Type       Type      `json:"type"`
	ActorID    uuid.UUID `json:"actor_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(t Type, actorID, subjectID uuid.UUID) Event {
	return Event{Type: t, ActorID: actorID, SubjectID: subjectID, OccurredAt: time.Now().UTC()}
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
