package worker

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// TicketEventRecorder counts lifecycle events.
type TicketEventRecorder interface {
	RecordTicketEvent(event string)
}

// LifecycleCounter feeds every ticket event into the metrics recorder.
// It is the only subscriber of ticket_resolved.
type LifecycleCounter struct {
	dispatcher events.Dispatcher
	recorder   TicketEventRecorder
}

// NewLifecycleCounter builds the subscriber.
func NewLifecycleCounter(dispatcher events.Dispatcher, recorder TicketEventRecorder) *LifecycleCounter {
	return &LifecycleCounter{dispatcher: dispatcher, recorder: recorder}
}

// RegisterHandlers subscribes to all lifecycle events.
func (l *LifecycleCounter) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketCommented,
		events.EventTicketResolved,
	} {
		l.dispatcher.Subscribe(eventType, l.count)
	}
}

func (l *LifecycleCounter) count(_ context.Context, event events.Event) error {
	l.recorder.RecordTicketEvent(string(event.Type))
	return nil
}
