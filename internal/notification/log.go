package notification

import (
	"context"
	"log/slog"
)

// LogBroadcaster writes events to the structured log. It backs the notifier
// in binaries that have no websocket surface, such as the scheduler.
type LogBroadcaster struct{}

var _ Broadcaster = LogBroadcaster{}

func (LogBroadcaster) Broadcast(ctx context.Context, event Event) {
	slog.InfoContext(ctx, "notification event",
		"type", event.Type,
		"obligation_id", event.ObligationID,
		"message", event.Message)
}
