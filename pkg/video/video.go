package video

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultLimit    = 5
	defaultTitle    = "Video"
	feedURLTemplate = "https://www.youtube.com/feeds/videos.xml?playlist_id=%s"
	guidPrefix      = "yt:video:"
)

// DefaultRelays are tried in order. The escaped feed URL is appended to each.
var DefaultRelays = []string{
	"https://corsproxy.io/?",
	"https://api.allorigins.win/raw?url=",
}

type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func FeedURL(playlistID string) string {
	return fmt.Sprintf(feedURLTemplate, url.QueryEscape(playlistID))
}

// Fetcher reads a playlist's Atom feed through a list of relays.
type Fetcher struct {
	httpClient *http.Client
	relays     []string
	limit      int
}

func NewFetcher(httpClient *http.Client, relays []string, limit int) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if len(relays) == 0 {
		relays = DefaultRelays
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Fetcher{httpClient: httpClient, relays: relays, limit: limit}
}

// Fetch returns up to limit videos from the playlist. The first relay that
// answers with a feed holding at least one entry wins. When every relay fails
// the result is empty; no error is reported.
func (f *Fetcher) Fetch(ctx context.Context, playlistID string) []Video {
	feedURL := FeedURL(playlistID)
	for _, relay := range f.relays {
		feed, err := f.fetchVia(ctx, relay+url.QueryEscape(feedURL))
		if err != nil {
			log.Debugf("video relay %s failed: %v", relay, err)
			continue
		}
		if len(feed.Items) == 0 {
			log.Debugf("video relay %s returned an empty feed", relay)
			continue
		}
		videos := f.videos(feed.Items)
		log.Debugf("loaded %d videos via %s", len(videos), relay)
		return videos
	}
	log.Warnf("failed to load videos for playlist %s from any relay", playlistID)
	return []Video{}
}

func (f *Fetcher) fetchVia(ctx context.Context, target string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// videos keeps the first limit entries, then drops those without a video id.
func (f *Fetcher) videos(items []*gofeed.Item) []Video {
	if len(items) > f.limit {
		items = items[:f.limit]
	}
	videos := make([]Video, 0, len(items))
	for _, item := range items {
		id := videoID(item)
		if id == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = defaultTitle
		}
		videos = append(videos, Video{ID: id, Title: title})
	}
	return videos
}

func videoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		for _, ext := range yt["videoId"] {
			if v := strings.TrimSpace(ext.Value); v != "" {
				return v
			}
		}
	}
	if strings.HasPrefix(item.GUID, guidPrefix) {
		return strings.TrimPrefix(item.GUID, guidPrefix)
	}
	return ""
}
