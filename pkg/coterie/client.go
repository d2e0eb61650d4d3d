package coterie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neontemple/temple-site/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	eventsPath                   = "/public/events"
	announcementsPath            = "/public/announcements"
	privateEventCountPath        = "/public/events/private-count"
	privateAnnouncementCountPath = "/public/announcements/private-count"
	signupPath                   = "/public/signup"
	calendarFeedPath             = "/public/feed/calendar"
	rssFeedPath                  = "/public/feed/rss"
	healthPath                   = "/health"
)

const maxErrorBodyBytes int64 = 64 << 10

// Client talks to the membership backend's public API.
type Client interface {
	GetEvents(ctx context.Context, params ListParams) ([]Event, error)
	GetAnnouncements(ctx context.Context, params ListParams) ([]Announcement, error)
	GetFeaturedAnnouncement(ctx context.Context) (*Announcement, error)
	GetFeaturedAnnouncements(ctx context.Context) ([]Announcement, error)
	GetPrivateEventCount(ctx context.Context) (PrivateCount, error)
	GetPrivateAnnouncementCount(ctx context.Context) (PrivateCount, error)
	Signup(ctx context.Context, req SignupRequest) (SignupResult, error)
	CalendarFeedURL() string
	RSSFeedURL() string
	ImageURL(path string) string
	HealthCheck(ctx context.Context) bool
}

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
	recorder   metrics.Recorder
}

// NewClient builds a client for the backend at baseURL. A nil httpClient gets
// a 15 second timeout; a nil recorder discards metrics.
func NewClient(baseURL string, httpClient *http.Client, recorder metrics.Recorder) *ClientImpl {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &ClientImpl{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		recorder:   recorder,
	}
}

// GetEvents retrieves public events, optionally limited and filtered by event type slug
func (c *ClientImpl) GetEvents(ctx context.Context, params ListParams) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, eventsPath, params.query(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetAnnouncements retrieves public announcements, optionally limited and filtered by type slug
func (c *ClientImpl) GetAnnouncements(ctx context.Context, params ListParams) ([]Announcement, error) {
	var announcements []Announcement
	if err := c.do(ctx, http.MethodGet, announcementsPath, params.query(), nil, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (c *ClientImpl) GetFeaturedAnnouncement(ctx context.Context) (*Announcement, error) {
	announcements, err := c.GetAnnouncements(ctx, ListParams{Limit: featuredScanLimit})
	if err != nil {
		return nil, err
	}
	return FirstFeatured(announcements), nil
}

func (c *ClientImpl) GetFeaturedAnnouncements(ctx context.Context) ([]Announcement, error) {
	announcements, err := c.GetAnnouncements(ctx, ListParams{Limit: featuredScanLimit})
	if err != nil {
		return nil, err
	}
	return FilterFeatured(announcements), nil
}

func (c *ClientImpl) GetPrivateEventCount(ctx context.Context) (PrivateCount, error) {
	var count PrivateCount
	err := c.do(ctx, http.MethodGet, privateEventCountPath, nil, nil, &count)
	return count, err
}

func (c *ClientImpl) GetPrivateAnnouncementCount(ctx context.Context) (PrivateCount, error) {
	var count PrivateCount
	err := c.do(ctx, http.MethodGet, privateAnnouncementCountPath, nil, nil, &count)
	return count, err
}

// Signup submits a membership application
func (c *ClientImpl) Signup(ctx context.Context, req SignupRequest) (SignupResult, error) {
	var result SignupResult
	err := c.do(ctx, http.MethodPost, signupPath, nil, req, &result)
	return result, err
}

func (c *ClientImpl) CalendarFeedURL() string {
	return c.baseURL + calendarFeedPath
}

func (c *ClientImpl) RSSFeedURL() string {
	return c.baseURL + rssFeedPath
}

// ImageURL resolves an image reference. Absolute http(s) URLs are returned
// as-is, anything else is treated as a path on the backend.
func (c *ClientImpl) ImageURL(path string) string {
	return ResolveImageURL(c.baseURL, path)
}

// HealthCheck reports whether the backend answered at all. Any HTTP response
// counts as reachable; only transport failures report false.
func (c *ClientImpl) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.ObserveUpstream(healthPath, metrics.OutcomeError, time.Since(start))
		log.Debugf("health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.recorder.ObserveUpstream(healthPath, metrics.OutcomeSuccess, time.Since(start))
	return true
}

func ResolveImageURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	return q
}

// do issues a single request and decodes a JSON body into out. Every failure
// comes back as a *RequestFailedError; nothing is retried.
func (c *ClientImpl) do(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestFailedError{Endpoint: endpoint, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		log.Errorf("API error (%s): failed to create request: %v", endpoint, err)
		return &RequestFailedError{Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debugf("API request %s %s", method, endpoint)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.ObserveUpstream(endpoint, metrics.OutcomeError, time.Since(start))
		log.Errorf("API error (%s): %v", endpoint, err)
		return &RequestFailedError{Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recorder.ObserveUpstream(endpoint, metrics.OutcomeStatus, time.Since(start))
		rfErr := statusError(endpoint, resp.StatusCode, errorMessage(resp.Body))
		log.Errorf("API error (%s): %v", endpoint, rfErr)
		return rfErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.recorder.ObserveUpstream(endpoint, metrics.OutcomeDecode, time.Since(start))
			log.Errorf("API error (%s): failed to decode response: %v", endpoint, err)
			return &RequestFailedError{
				Endpoint: endpoint,
				Status:   resp.StatusCode,
				Message:  fmt.Sprintf("invalid response from %s", endpoint),
				Err:      err,
			}
		}
	}
	c.recorder.ObserveUpstream(endpoint, metrics.OutcomeSuccess, time.Since(start))
	return nil
}

// errorMessage extracts {"message": "..."} from an error body, or "".
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Message
}
