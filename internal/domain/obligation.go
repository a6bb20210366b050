package domain

import (
	"fmt"
	"time"
)

// ObligationKind categorizes a fiscal obligation.
type ObligationKind string

const (
	KindTax         ObligationKind = "TAX"
	KindInstallment ObligationKind = "INSTALLMENT"
	KindDeclaration ObligationKind = "DECLARATION"
	KindDocument    ObligationKind = "DOCUMENT"
	KindOther       ObligationKind = "OTHER"
)

// RecurrenceKind is the policy governing how often a new occurrence
// of an obligation is spawned.
type RecurrenceKind string

const (
	RecurrenceNone       RecurrenceKind = "NONE"
	RecurrenceMonthly    RecurrenceKind = "MONTHLY"
	RecurrenceQuarterly  RecurrenceKind = "QUARTERLY"
	RecurrenceSemiannual RecurrenceKind = "SEMIANNUAL"
	RecurrenceAnnual     RecurrenceKind = "ANNUAL"
	RecurrenceCustom     RecurrenceKind = "CUSTOM"
)

// Obligation is a trackable fiscal commitment with a due date and optional
// recurrence. It is modeled as a value: engine steps return new values (or
// explicit field updates) instead of mutating shared state, which keeps the
// "never advance the generation marker unless the clone persisted" rule easy
// to enforce.
//
// All date fields carry calendar-day semantics: midnight UTC, no timezone
// interpretation. Operational timestamps (CreatedAt, UpdatedAt) are UTC.
type Obligation struct {
	ID          string
	Name        string
	Kind        ObligationKind
	Description string

	// References to external aggregates, resolved by the storage layer.
	ClientID      *string
	ResponsibleID *string

	// DueDate is the current commitment date. Once adjustment has been
	// applied it is always a business day (per the obligation's own flags).
	DueDate time.Time

	Recurrence           RecurrenceKind
	CustomIntervalDays   *int // required and positive iff Recurrence == CUSTOM
	RecurrenceDayOfMonth *int // 1-31; anchors generated occurrences to a billing day

	AdjustForWeekends bool
	AdjustForHolidays bool

	// NextGenerationDate is when the batch driver should spawn the next
	// occurrence. Nil for non-recurring obligations.
	NextGenerationDate *time.Time

	Active      bool
	Completed   bool
	CompletedOn *time.Time

	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastEditor string

	// Optimistic locking version for concurrent update protection.
	Version int
}

// IsRecurring reports whether the obligation spawns future occurrences.
func (o *Obligation) IsRecurring() bool {
	return o.Recurrence != RecurrenceNone && o.Recurrence != ""
}

// Etag returns the entity tag used for optimistic concurrency control.
func (o *Obligation) Etag() string {
	return fmt.Sprintf("%d", o.Version)
}
