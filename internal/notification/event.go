// Package notification broadcasts real-time events about obligations to
// connected sessions. Delivery is fire-and-forget: the engine reports events
// and never blocks on, or fails because of, a slow consumer.
package notification

import "time"

// EventType classifies a real-time notification.
type EventType string

const (
	EventObligationCreated   EventType = "OBLIGATION_CREATED"
	EventObligationUpdated   EventType = "OBLIGATION_UPDATED"
	EventObligationCompleted EventType = "OBLIGATION_COMPLETED"
	EventObligationDeleted   EventType = "OBLIGATION_DELETED"
	EventObligationDueSoon   EventType = "OBLIGATION_DUE_SOON"
	EventMonthlyReport       EventType = "MONTHLY_REPORT"
)

// Event is the payload broadcast to every connected session.
type Event struct {
	Type         EventType `json:"type"`
	Message      string    `json:"message"`
	ObligationID string    `json:"obligationId,omitempty"`
	Editor       string    `json:"editor,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
