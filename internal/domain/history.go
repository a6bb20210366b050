package domain

import "time"

// SystemEditor is the actor recorded for automated runs.
const SystemEditor = "System"

// ChangeRecord is one audit-trail entry for an obligation: a single field
// transition with before/after values and the editor who caused it.
type ChangeRecord struct {
	ID           string
	ObligationID string
	Field        string
	OldValue     *string
	NewValue     *string
	Editor       string
	Notes        string
	ChangedAt    time.Time
}
