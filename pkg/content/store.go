package content

import (
	"errors"
	"sync"

	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/pkg/coterie"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("content not found")

// Store remembers every event and announcement the site has fetched, keyed by
// id, for the detail views. Later fetches overwrite earlier ones; nothing is
// evicted.
type Store struct {
	mu            sync.RWMutex
	events        map[string]coterie.Event
	announcements map[string]coterie.Announcement
}

func NewStore() *Store {
	return &Store{
		events:        make(map[string]coterie.Event),
		announcements: make(map[string]coterie.Announcement),
	}
}

func (s *Store) PutEvents(events ...coterie.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			continue
		}
		s.events[e.ID] = e
	}
}

func (s *Store) PutAnnouncements(announcements ...coterie.Announcement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range announcements {
		if a.ID == "" {
			continue
		}
		s.announcements[a.ID] = a
	}
}

func (s *Store) Event(id string) (coterie.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return coterie.Event{}, ErrNotFound
	}
	return e, nil
}

func (s *Store) Announcement(id string) (coterie.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.announcements[id]
	if !ok {
		return coterie.Announcement{}, ErrNotFound
	}
	return a, nil
}

// Len returns the number of cached events and announcements.
func (s *Store) Len() (events int, announcements int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), len(s.announcements)
}

// Subscribe feeds the store from content loaded anywhere in the application.
// The returned function detaches it again.
func (s *Store) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubEvents := event_bus.SubscribeTyped(bus, event_bus.EventsLoadedType,
		func(e event_bus.EventT[event_bus.EventsLoaded]) error {
			s.PutEvents(e.Data.Events...)
			log.Tracef("content store: cached %d events", len(e.Data.Events))
			return nil
		})
	unsubAnnouncements := event_bus.SubscribeTyped(bus, event_bus.AnnouncementsLoadedType,
		func(e event_bus.EventT[event_bus.AnnouncementsLoaded]) error {
			s.PutAnnouncements(e.Data.Announcements...)
			log.Tracef("content store: cached %d announcements", len(e.Data.Announcements))
			return nil
		})
	return func() {
		unsubEvents()
		unsubAnnouncements()
	}
}
