package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

type eventTally map[string]int

func (t eventTally) RecordTicketEvent(event string) { t[event]++ }

func TestLifecycleCounterCountsEveryEventType(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop(), nil)
	tally := eventTally{}
	StartNotificationWorker(zap.NewNop(), NewLifecycleCounter(dispatcher, tally))

	ctx := context.Background()
	dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: "t-1"})
	dispatcher.Publish(ctx, events.Event{Type: events.EventTicketAssigned, TicketID: "t-1"})
	dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCommented, TicketID: "t-1"})
	dispatcher.Publish(ctx, events.Event{Type: events.EventTicketResolved, TicketID: "t-1"})
	dispatcher.Publish(ctx, events.Event{Type: events.EventTicketResolved, TicketID: "t-2"})

	assert.Equal(t, eventTally{
		"ticket_created":   1,
		"ticket_assigned":  1,
		"ticket_commented": 1,
		"ticket_resolved":  2,
	}, tally)
}
