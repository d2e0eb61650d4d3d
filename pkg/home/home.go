package home

import (
	"context"

	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/pkg/coterie"
	log "github.com/sirupsen/logrus"
)

const (
	HomeEventsLimit        = 3
	HomeAnnouncementsLimit = 3
	AllAnnouncementsLimit  = 50
)

const (
	MessageNoEvents             = "No upcoming events"
	MessageNoRecentAnnouncement = "No recent announcements"
	MessageNoAnnouncements      = "No announcements"
	MessageEventsFailed         = "Could not load events"
	MessageAnnouncementsFailed  = "Could not load announcements"
)

type State string

const (
	StateLoaded State = "loaded"
	StateEmpty  State = "empty"
	StateError  State = "error"
)

// Section is one content block of a page: either a list with its members-only
// count, an empty-state message or an error message.
type Section struct {
	State         State                  `json:"state"`
	Message       string                 `json:"message,omitempty"`
	PrivateCount  int                    `json:"privateCount"`
	Events        []coterie.Event        `json:"events,omitempty"`
	Announcements []coterie.Announcement `json:"announcements,omitempty"`
}

type Service interface {
	LoadHomeEvents(ctx context.Context) Section
	LoadHomeAnnouncements(ctx context.Context) Section
	LoadAllAnnouncements(ctx context.Context) Section
}

type ServiceImpl struct {
	client    coterie.Client
	publisher event_bus.Publisher
}

func NewService(client coterie.Client, publisher event_bus.Publisher) *ServiceImpl {
	return &ServiceImpl{client: client, publisher: publisher}
}

func (s *ServiceImpl) LoadHomeEvents(ctx context.Context) Section {
	events, err := s.client.GetEvents(ctx, coterie.ListParams{Limit: HomeEventsLimit})
	if err != nil {
		log.Errorf("failed to load home events: %v", err)
		return Section{State: StateError, Message: MessageEventsFailed}
	}
	count := s.privateEventCount(ctx)
	if len(events) == 0 && count == 0 {
		return Section{State: StateEmpty, Message: MessageNoEvents}
	}

	s.publish(ctx, event_bus.EventsLoadedType, event_bus.EventsLoaded{Events: events})
	return Section{State: StateLoaded, PrivateCount: count, Events: events}
}

func (s *ServiceImpl) LoadHomeAnnouncements(ctx context.Context) Section {
	return s.loadAnnouncements(ctx, HomeAnnouncementsLimit, MessageNoRecentAnnouncement)
}

func (s *ServiceImpl) LoadAllAnnouncements(ctx context.Context) Section {
	return s.loadAnnouncements(ctx, AllAnnouncementsLimit, MessageNoAnnouncements)
}

func (s *ServiceImpl) loadAnnouncements(ctx context.Context, limit int, emptyMessage string) Section {
	announcements, err := s.client.GetAnnouncements(ctx, coterie.ListParams{Limit: limit})
	if err != nil {
		log.Errorf("failed to load announcements: %v", err)
		return Section{State: StateError, Message: MessageAnnouncementsFailed}
	}
	count := s.privateAnnouncementCount(ctx)
	if len(announcements) == 0 && count == 0 {
		return Section{State: StateEmpty, Message: emptyMessage}
	}

	s.publish(ctx, event_bus.AnnouncementsLoadedType, event_bus.AnnouncementsLoaded{Announcements: announcements})
	return Section{State: StateLoaded, PrivateCount: count, Announcements: announcements}
}

// Private counts are optional. Failures count as zero.
func (s *ServiceImpl) privateEventCount(ctx context.Context) int {
	result, err := s.client.GetPrivateEventCount(ctx)
	if err != nil {
		log.Debugf("private event count unavailable: %v", err)
		return 0
	}
	return result.Count
}

func (s *ServiceImpl) privateAnnouncementCount(ctx context.Context) int {
	result, err := s.client.GetPrivateAnnouncementCount(ctx)
	if err != nil {
		log.Debugf("private announcement count unavailable: %v", err)
		return 0
	}
	return result.Count
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
