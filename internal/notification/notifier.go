package notification

import (
	"context"
	"fmt"
	"time"
)

// Notifier is the collaborator the engine invokes with event payloads.
// Methods never return errors: delivery is the implementation's concern.
type Notifier interface {
	NotifyCreated(ctx context.Context, obligationID, name, editor string)
	NotifyUpdated(ctx context.Context, obligationID, name, editor string)
	NotifyCompleted(ctx context.Context, obligationID, name, editor string)
	NotifyDeleted(ctx context.Context, obligationID, name, editor string)
	NotifyDueSoon(ctx context.Context, obligationID, name string, daysRemaining int)
	NotifyMonthlyReport(ctx context.Context, open, completed, overdue int64)
}

// Broadcaster delivers an event to all connected sessions.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event)
}

// Service formats obligation events and hands them to a broadcaster.
type Service struct {
	broadcaster Broadcaster
	now         func() time.Time
}

// NewService creates a notifier backed by the given broadcaster.
func NewService(broadcaster Broadcaster) *Service {
	return &Service{
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ Notifier = (*Service)(nil)

func (s *Service) NotifyCreated(ctx context.Context, obligationID, name, editor string) {
	s.broadcast(ctx, EventObligationCreated, fmt.Sprintf("Nova obrigação criada: %s", name), obligationID, editor)
}

func (s *Service) NotifyUpdated(ctx context.Context, obligationID, name, editor string) {
	s.broadcast(ctx, EventObligationUpdated, fmt.Sprintf("Obrigação atualizada: %s", name), obligationID, editor)
}

func (s *Service) NotifyCompleted(ctx context.Context, obligationID, name, editor string) {
	s.broadcast(ctx, EventObligationCompleted, fmt.Sprintf("Obrigação concluída: %s", name), obligationID, editor)
}

func (s *Service) NotifyDeleted(ctx context.Context, obligationID, name, editor string) {
	s.broadcast(ctx, EventObligationDeleted, fmt.Sprintf("Obrigação excluída: %s", name), obligationID, editor)
}

// NotifyDueSoon emits an alert for an obligation due in daysRemaining days;
// zero or negative means due today or already overdue.
func (s *Service) NotifyDueSoon(ctx context.Context, obligationID, name string, daysRemaining int) {
	message := fmt.Sprintf("ALERTA: Obrigação vence em %d dias - %s", daysRemaining, name)
	if daysRemaining <= 0 {
		message = fmt.Sprintf("ATENÇÃO: Obrigação vence HOJE - %s", name)
	}
	s.broadcast(ctx, EventObligationDueSoon, message, obligationID, "System")
}

// NotifyMonthlyReport broadcasts the aggregate obligation counts.
func (s *Service) NotifyMonthlyReport(ctx context.Context, open, completed, overdue int64) {
	message := fmt.Sprintf("Relatório mensal: %d em aberto, %d concluídas, %d em atraso", open, completed, overdue)
	s.broadcast(ctx, EventMonthlyReport, message, "", "System")
}

func (s *Service) broadcast(ctx context.Context, eventType EventType, message, obligationID, editor string) {
	s.broadcaster.Broadcast(ctx, Event{
		Type:         eventType,
		Message:      message,
		ObligationID: obligationID,
		Editor:       editor,
		Timestamp:    s.now(),
	})
}
