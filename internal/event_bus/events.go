package event_bus

import "github.com/neontemple/temple-site/pkg/coterie"

const (
	EventsLoadedType        EventType = "content.events.loaded"
	AnnouncementsLoadedType EventType = "content.announcements.loaded"
	BannerRotatedType       EventType = "banner.rotated"
)

// EventsLoaded is published whenever a page loader receives events from the backend.
type EventsLoaded struct {
	Events []coterie.Event
}

// AnnouncementsLoaded is published whenever announcements arrive, including the
// featured set fetched for the banner.
type AnnouncementsLoaded struct {
	Announcements []coterie.Announcement
}

// BannerRotated reports the slide now shown by the featured banner.
type BannerRotated struct {
	Index          int
	Count          int
	AnnouncementID string
}

// Publisher is the part of EventBus that loaders depend on.
type Publisher interface {
	Publish(e Event) error
}
