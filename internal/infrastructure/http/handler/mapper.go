package handler

import (
	"fmt"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// ObligationDTO is the wire representation of an obligation. Date-only
// fields travel as "2006-01-02" strings; timestamps as RFC 3339.
type ObligationDTO struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Kind                 string    `json:"kind"`
	Description          string    `json:"description,omitempty"`
	ClientID             *string   `json:"client_id,omitempty"`
	ResponsibleID        *string   `json:"responsible_id,omitempty"`
	DueDate              string    `json:"due_date"`
	Recurrence           string    `json:"recurrence"`
	CustomIntervalDays   *int      `json:"custom_interval_days,omitempty"`
	RecurrenceDayOfMonth *int      `json:"recurrence_day_of_month,omitempty"`
	AdjustForWeekends    bool      `json:"adjust_for_weekends"`
	AdjustForHolidays    bool      `json:"adjust_for_holidays"`
	NextGenerationDate   *string   `json:"next_generation_date,omitempty"`
	Active               bool      `json:"active"`
	Completed            bool      `json:"completed"`
	CompletedOn          *string   `json:"completed_on,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	LastEditor           string    `json:"last_editor,omitempty"`
	Version              int       `json:"version"`
}

// ChangeRecordDTO is the wire representation of one audit-trail entry.
type ChangeRecordDTO struct {
	ID           string    `json:"id"`
	ObligationID string    `json:"obligation_id"`
	Field        string    `json:"field"`
	OldValue     *string   `json:"old_value,omitempty"`
	NewValue     *string   `json:"new_value,omitempty"`
	Editor       string    `json:"editor"`
	Notes        string    `json:"notes,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

// StatsDTO summarizes obligation counts for the dashboard.
type StatsDTO struct {
	Open      int64 `json:"open"`
	Completed int64 `json:"completed"`
	Overdue   int64 `json:"overdue"`
}

// MapObligationToDTO converts a domain obligation to its wire form.
func MapObligationToDTO(o *domain.Obligation) ObligationDTO {
	dto := ObligationDTO{
		ID:                   o.ID,
		Name:                 o.Name,
		Kind:                 string(o.Kind),
		Description:          o.Description,
		ClientID:             o.ClientID,
		ResponsibleID:        o.ResponsibleID,
		DueDate:              o.DueDate.Format(time.DateOnly),
		Recurrence:           string(o.Recurrence),
		CustomIntervalDays:   o.CustomIntervalDays,
		RecurrenceDayOfMonth: o.RecurrenceDayOfMonth,
		AdjustForWeekends:    o.AdjustForWeekends,
		AdjustForHolidays:    o.AdjustForHolidays,
		Active:               o.Active,
		Completed:            o.Completed,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		LastEditor:           o.LastEditor,
		Version:              o.Version,
	}
	if o.NextGenerationDate != nil {
		formatted := o.NextGenerationDate.Format(time.DateOnly)
		dto.NextGenerationDate = &formatted
	}
	if o.CompletedOn != nil {
		formatted := o.CompletedOn.Format(time.DateOnly)
		dto.CompletedOn = &formatted
	}
	return dto
}

// MapChangeToDTO converts an audit-trail record to its wire form.
func MapChangeToDTO(rec *domain.ChangeRecord) ChangeRecordDTO {
	return ChangeRecordDTO{
		ID:           rec.ID,
		ObligationID: rec.ObligationID,
		Field:        rec.Field,
		OldValue:     rec.OldValue,
		NewValue:     rec.NewValue,
		Editor:       rec.Editor,
		Notes:        rec.Notes,
		ChangedAt:    rec.ChangedAt,
	}
}

// parseDateOnly parses a "2006-01-02" string into a midnight-UTC time.
func parseDateOnly(value string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}
