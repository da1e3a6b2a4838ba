package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"socialnet/internal/events"
)

const bcryptCost = 10

func userKey(id uuid.UUID) string    { return "user:" + id.String() }
func postKey(id uuid.UUID) string    { return "post:" + id.String() }
func commentKey(id uuid.UUID) string { return "comment:" + id.String() }

// publish sends an event after commit. Delivery failures are logged and never undo
// the committed change.
func publish(ctx context.Context, pub events.Publisher, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "event publish failed",
			"type", event.Type,
			"actor_id", event.ActorID,
			"subject_id", event.SubjectID,
			"error", err,
		)
	}
}
