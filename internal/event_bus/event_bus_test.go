package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	bus.Subscribe(CalendarEventCreatedType, func(e Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(CalendarEventCreatedType, func(e Event) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe(CalendarEventDeletedType, func(e Event) error {
		calls = append(calls, "other type")
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), CalendarEventCreatedType, nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	count := 0
	unsubscribe := bus.Subscribe(CalendarEventCreatedType, func(e Event) error {
		count++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventCreatedType, nil)))
	unsubscribe()
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventCreatedType, nil)))

	assert.Equal(t, 1, count)
}

func TestEventBus_CollectsErrors(t *testing.T) {
	bus := NewEventBus()
	failure := errors.New("boom")
	reached := false
	bus.Subscribe(CalendarEventUpdatedType, func(e Event) error { return failure })
	bus.Subscribe(CalendarEventUpdatedType, func(e Event) error { panic("handler bug") })
	bus.Subscribe(CalendarEventUpdatedType, func(e Event) error {
		reached = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), CalendarEventUpdatedType, nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "panicked")
	assert.True(t, reached)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(CalendarEventCreatedType, func(e Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, CalendarEventCreatedType, nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var received []CalendarEventChanged
	SubscribeTyped(bus, CalendarEventRescheduledType, func(e EventT[CalendarEventChanged]) error {
		received = append(received, e.Data)
		assert.Equal(t, CalendarEventRescheduledType, e.Type)
		assert.NotNil(t, e.Context())
		return nil
	})

	payload := CalendarEventChanged{EventID: "1", Title: "Standup", Date: "2024-01-10", OccurrenceID: "1@2024-01-08", FromDate: "2024-01-08"}
	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventRescheduledType, payload)))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventRescheduledType, "not a payload")))

	assert.Equal(t, []CalendarEventChanged{payload}, received)
}
