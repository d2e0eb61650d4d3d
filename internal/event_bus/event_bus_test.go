package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/stretchr/testify/assert"
)

func TestPublish_TypedHandlersReceivePayload(t *testing.T) {
	bus := NewEventBus()
	var received []coterie.Event

	SubscribeTyped(bus, EventsLoadedType, func(e EventT[EventsLoaded]) error {
		received = append(received, e.Data.Events...)
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), EventsLoadedType, EventsLoaded{
		Events: []coterie.Event{{ID: "1", Title: "Gala"}},
	}))

	assert.NoError(t, err)
	assert.Len(t, received, 1)
	assert.Equal(t, "Gala", received[0].Title)
}

func TestPublish_MismatchedPayloadIsSkipped(t *testing.T) {
	bus := NewEventBus()
	called := false
	SubscribeTyped(bus, EventsLoadedType, func(e EventT[EventsLoaded]) error {
		called = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), EventsLoadedType, "not a payload"))

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestPublish_RunsInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		bus.Subscribe(BannerRotatedType, func(Event) error {
			order = append(order, i)
			return nil
		})
	}

	assert.NoError(t, bus.Publish(NewEvent(context.Background(), BannerRotatedType, BannerRotated{})))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_CollectsErrorsAndPanics(t *testing.T) {
	bus := NewEventBus()
	lastRan := false
	bus.Subscribe(BannerRotatedType, func(Event) error { return errors.New("boom") })
	bus.Subscribe(BannerRotatedType, func(Event) error { panic("kaboom") })
	bus.Subscribe(BannerRotatedType, func(Event) error {
		lastRan = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), BannerRotatedType, BannerRotated{}))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.True(t, lastRan)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe(BannerRotatedType, func(Event) error {
		calls++
		return nil
	})

	assert.NoError(t, bus.Publish(NewEvent(context.Background(), BannerRotatedType, nil)))
	unsubscribe()
	assert.NoError(t, bus.Publish(NewEvent(context.Background(), BannerRotatedType, nil)))

	assert.Equal(t, 1, calls)
}

func TestPublish_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(BannerRotatedType, func(Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, BannerRotatedType, nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
