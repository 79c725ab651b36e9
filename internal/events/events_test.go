package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := BookingEventPayload{BookingID: 7, ItemID: 3, Status: "WAITING"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	var typed, all []string

	bus.Subscribe(EventBookingApproved, func(e *Event) error { typed = append(typed, e.Type); return nil })
	bus.SubscribeAll(func(e *Event) error { all = append(all, e.Type); return nil })

	require.NoError(t, bus.Publish(&Event{Type: EventBookingApproved}))
	require.NoError(t, bus.Publish(&Event{Type: EventBookingRejected}))

	assert.Equal(t, []string{EventBookingApproved}, typed)
	assert.Equal(t, []string{EventBookingApproved, EventBookingRejected}, all)
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	var secondCalled bool

	bus.Subscribe("event", func(_ *Event) error { return boom })
	bus.Subscribe("event", func(_ *Event) error { secondCalled = true; return nil })

	err := bus.Publish(&Event{Type: "event"})
	assert.ErrorIs(t, err, boom)
	assert.True(t, secondCalled)
}

func TestEventBusNilAndNoSubscribers(t *testing.T) {
	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON("event", map[string]string{}))

	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON("nobody", map[string]string{"a": "b"}))
	assert.Error(t, bus.PublishJSON("bad", make(chan int)))
}
