package coterie

import (
	"context"
	"strings"
	"sync"
)

type ClientStub struct {
	mu                    sync.RWMutex
	baseURL               string
	events                []Event
	announcements         []Announcement
	privateEventCount     int
	privateAnnouncements  int
	signupResult          SignupResult
	signups               []SignupRequest
	healthy               bool
	getEventsErr          error
	getAnnouncementsErr   error
	privateEventCountErr  error
	privateAnnCountErr    error
	signupErr             error
	getEventsCalls        int
	getAnnouncementsCalls int
}

func NewClientStub() *ClientStub {
	return &ClientStub{
		baseURL: "http://coterie.test",
		healthy: true,
	}
}

func (c *ClientStub) GetEvents(ctx context.Context, params ListParams) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getEventsCalls++

	if c.getEventsErr != nil {
		return nil, c.getEventsErr
	}

	result := make([]Event, 0, len(c.events))
	for _, e := range c.events {
		if params.Type != "" && e.EventType != params.Type {
			continue
		}
		result = append(result, e)
	}
	return limit(result, params.Limit), nil
}

func (c *ClientStub) GetAnnouncements(ctx context.Context, params ListParams) ([]Announcement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getAnnouncementsCalls++

	if c.getAnnouncementsErr != nil {
		return nil, c.getAnnouncementsErr
	}

	result := make([]Announcement, 0, len(c.announcements))
	for _, a := range c.announcements {
		if params.Type != "" && a.AnnouncementType != params.Type {
			continue
		}
		result = append(result, a)
	}
	return limit(result, params.Limit), nil
}

func (c *ClientStub) GetFeaturedAnnouncement(ctx context.Context) (*Announcement, error) {
	announcements, err := c.GetAnnouncements(ctx, ListParams{Limit: featuredScanLimit})
	if err != nil {
		return nil, err
	}
	return FirstFeatured(announcements), nil
}

func (c *ClientStub) GetFeaturedAnnouncements(ctx context.Context) ([]Announcement, error) {
	announcements, err := c.GetAnnouncements(ctx, ListParams{Limit: featuredScanLimit})
	if err != nil {
		return nil, err
	}
	return FilterFeatured(announcements), nil
}

func (c *ClientStub) GetPrivateEventCount(ctx context.Context) (PrivateCount, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.privateEventCountErr != nil {
		return PrivateCount{}, c.privateEventCountErr
	}
	return PrivateCount{Count: c.privateEventCount}, nil
}

func (c *ClientStub) GetPrivateAnnouncementCount(ctx context.Context) (PrivateCount, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.privateAnnCountErr != nil {
		return PrivateCount{}, c.privateAnnCountErr
	}
	return PrivateCount{Count: c.privateAnnouncements}, nil
}

func (c *ClientStub) Signup(ctx context.Context, req SignupRequest) (SignupResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.signupErr != nil {
		return SignupResult{}, c.signupErr
	}
	c.signups = append(c.signups, req)
	return c.signupResult, nil
}

func (c *ClientStub) CalendarFeedURL() string {
	return c.baseURL + calendarFeedPath
}

func (c *ClientStub) RSSFeedURL() string {
	return c.baseURL + rssFeedPath
}

func (c *ClientStub) ImageURL(path string) string {
	return ResolveImageURL(c.baseURL, path)
}

func (c *ClientStub) HealthCheck(ctx context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Helper methods for testing

func (c *ClientStub) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

func (c *ClientStub) SetEvents(events []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append([]Event(nil), events...)
}

func (c *ClientStub) SetAnnouncements(announcements []Announcement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announcements = append([]Announcement(nil), announcements...)
}

func (c *ClientStub) SetPrivateEventCount(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateEventCount = count
}

func (c *ClientStub) SetPrivateAnnouncementCount(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateAnnouncements = count
}

func (c *ClientStub) SetSignupResult(result SignupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signupResult = result
}

func (c *ClientStub) SetHealthy(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
}

func (c *ClientStub) SetGetEventsError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getEventsErr = err
}

func (c *ClientStub) SetGetAnnouncementsError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getAnnouncementsErr = err
}

func (c *ClientStub) SetPrivateEventCountError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateEventCountErr = err
}

func (c *ClientStub) SetPrivateAnnouncementCountError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateAnnCountErr = err
}

func (c *ClientStub) SetSignupError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signupErr = err
}

// Signups returns every request accepted so far.
func (c *ClientStub) Signups() []SignupRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]SignupRequest(nil), c.signups...)
}

func (c *ClientStub) GetEventsCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getEventsCalls
}

func (c *ClientStub) GetAnnouncementsCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getAnnouncementsCalls
}

func (c *ClientStub) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
	c.announcements = nil
	c.privateEventCount = 0
	c.privateAnnouncements = 0
	c.signupResult = SignupResult{}
	c.signups = nil
	c.healthy = true
	c.getEventsErr = nil
	c.getAnnouncementsErr = nil
	c.privateEventCountErr = nil
	c.privateAnnCountErr = nil
	c.signupErr = nil
	c.getEventsCalls = 0
	c.getAnnouncementsCalls = 0
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
