package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Event(t *testing.T) {
	t.Run("should return cached event", func(t *testing.T) {
		store := NewStore()
		store.PutEvents(coterie.Event{ID: "e1", Title: "Gala"})

		e, err := store.Event("e1")

		require.NoError(t, err)
		assert.Equal(t, "Gala", e.Title)
	})

	t.Run("should report miss", func(t *testing.T) {
		store := NewStore()

		_, err := store.Event("missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should overwrite with later fetch", func(t *testing.T) {
		store := NewStore()
		store.PutEvents(coterie.Event{ID: "e1", Title: "Gala"})
		store.PutEvents(coterie.Event{ID: "e1", Title: "Gala (moved)"})

		e, err := store.Event("e1")

		require.NoError(t, err)
		assert.Equal(t, "Gala (moved)", e.Title)
	})

	t.Run("should ignore records without id", func(t *testing.T) {
		store := NewStore()
		store.PutEvents(coterie.Event{Title: "Anonymous"})

		events, _ := store.Len()

		assert.Equal(t, 0, events)
	})
}

func TestStore_Announcement(t *testing.T) {
	store := NewStore()
	store.PutAnnouncements(coterie.Announcement{ID: "a1", Title: "Welcome"})

	a, err := store.Announcement("a1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", a.Title)

	_, err = store.Announcement("a2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Subscribe(t *testing.T) {
	// given
	bus := event_bus.NewEventBus()
	store := NewStore()
	unsubscribe := store.Subscribe(bus)
	ctx := context.Background()

	// when
	err := bus.Publish(event_bus.NewEvent(ctx, event_bus.EventsLoadedType, event_bus.EventsLoaded{
		Events: []coterie.Event{{ID: "e1", Title: "Gala", StartTime: time.Now()}},
	}))
	require.NoError(t, err)
	err = bus.Publish(event_bus.NewEvent(ctx, event_bus.AnnouncementsLoadedType, event_bus.AnnouncementsLoaded{
		Announcements: []coterie.Announcement{{ID: "a1", Title: "Welcome"}},
	}))
	require.NoError(t, err)

	// then
	events, announcements := store.Len()
	assert.Equal(t, 1, events)
	assert.Equal(t, 1, announcements)

	// and after unsubscribing nothing more is cached
	unsubscribe()
	_ = bus.Publish(event_bus.NewEvent(ctx, event_bus.EventsLoadedType, event_bus.EventsLoaded{
		Events: []coterie.Event{{ID: "e2"}},
	}))
	_, err = store.Event("e2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.PutEvents(coterie.Event{ID: "e1", Title: "Gala"})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Event("e1")
		}()
	}
	wg.Wait()

	_, err := store.Event("e1")
	assert.NoError(t, err)
}
