package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/neontemple/temple-site/pkg/coterie"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "announcements", "calendar", "join"}

// Classifier assigns layout classes to thumbnail URLs without blocking.
type Classifier interface {
	Class(url string) string
}

type Options struct {
	SiteName        string
	PortalURL       string
	CalendarFeedURL string
	RSSFeedURL      string
	ImageURL        func(path string) string
	Location        *time.Location
	Classifier      Classifier
	// Banner supplies the featured slide shown on every page, or nil.
	Banner func() *BannerView
}

// PageData is handed to the layout. Data carries the page specific view model.
type PageData struct {
	Title     string
	Page      string
	Data      any
	CSRFField template.HTML
	// CSRFToken is copied onto the banner so its controls can post.
	CSRFToken string
	Banner    *BannerView
}

type TeaserView struct {
	Count int
	Noun  string
	Path  string
}

// BannerDot is one position marker under the featured banner.
type BannerDot struct {
	Index  int
	Number int
	Active bool
}

type BannerView struct {
	Announcement coterie.Announcement
	Index        int
	Count        int
	Prev         int
	Next         int
	Position     int
	Dots         []BannerDot
	CSRFToken    string
}

func NewBannerView(a coterie.Announcement, index, count int) *BannerView {
	v := &BannerView{
		Announcement: a,
		Index:        index,
		Count:        count,
		Position:     index + 1,
	}
	if count > 0 {
		v.Prev = (index - 1 + count) % count
		v.Next = (index + 1) % count
	}
	for i := 0; i < count; i++ {
		v.Dots = append(v.Dots, BannerDot{Index: i, Number: i + 1, Active: i == index})
	}
	return v
}

type Renderer struct {
	opts      Options
	fragments *template.Template
	pages     map[string]*template.Template
}

func New(opts Options) (*Renderer, error) {
	if opts.ImageURL == nil {
		opts.ImageURL = func(path string) string { return path }
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	opts.PortalURL = strings.TrimRight(opts.PortalURL, "/")

	r := &Renderer{opts: opts, pages: make(map[string]*template.Template)}

	base, err := template.New("site").Funcs(r.funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base templates: %w", err)
	}
	r.fragments = base

	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone templates for %s: %w", name, err)
		}
		page, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	loc := r.opts.Location
	return template.FuncMap{
		"siteName":        func() string { return r.opts.SiteName },
		"portalURL":       func() string { return r.opts.PortalURL },
		"calendarFeedURL": func() string { return r.opts.CalendarFeedURL },
		"rssFeedURL":      func() string { return r.opts.RSSFeedURL },
		"imageURL":        r.opts.ImageURL,
		"thumbClass":      r.thumbClass,
		"truncate":        Truncate,
		"plural":          Plural,
		"eventDate":       func(t time.Time) string { return FormatEventDate(t, loc) },
		"shortDate":       func(t time.Time) string { return FormatShortEventDate(t, loc) },
		"date":            func(t time.Time) string { return FormatDate(t, loc) },
		"fullDate":        func(t time.Time) string { return FormatFullDate(t, loc) },
		"clock":           func(t time.Time) string { return FormatTime(t, loc) },
		"teaser":          NewTeaser,
	}
}

func (r *Renderer) thumbClass(url string) string {
	if r.opts.Classifier == nil {
		return ""
	}
	return r.opts.Classifier.Class(url)
}

// NewTeaser describes the members-only notice for count hidden items of kind
// "event" or "announcement".
func NewTeaser(count int, noun string) TeaserView {
	path := "/portal"
	if noun == "announcement" {
		path = "/portal/announcements"
	}
	return TeaserView{Count: count, Noun: noun, Path: path}
}

// Page renders a full page through the layout.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Page == "" {
		data.Page = name
	}
	if data.Banner == nil && r.opts.Banner != nil {
		data.Banner = r.opts.Banner()
	}
	if data.Banner != nil && data.CSRFToken != "" {
		banner := *data.Banner
		banner.CSRFToken = data.CSRFToken
		data.Banner = &banner
	}
	return tpl.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) EventCard(e coterie.Event) (template.HTML, error) {
	return r.fragment("event-card", e)
}

func (r *Renderer) AnnouncementCard(a coterie.Announcement) (template.HTML, error) {
	return r.fragment("announcement-card", a)
}

// AnnouncementCardFull is the announcements page variant with badges and a
// longer preview.
func (r *Renderer) AnnouncementCardFull(a coterie.Announcement) (template.HTML, error) {
	return r.fragment("announcement-card-full", a)
}

func (r *Renderer) FeaturedBanner(v *BannerView) (template.HTML, error) {
	if v == nil {
		return "", nil
	}
	return r.fragment("featured-banner", v)
}

func (r *Renderer) EventDetail(e coterie.Event) (template.HTML, error) {
	return r.fragment("event-detail", e)
}

func (r *Renderer) AnnouncementDetail(a coterie.Announcement) (template.HTML, error) {
	return r.fragment("announcement-detail", a)
}

func (r *Renderer) Teaser(count int, noun string) (template.HTML, error) {
	return r.fragment("teaser", NewTeaser(count, noun))
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
