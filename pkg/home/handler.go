package home

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/neontemple/temple-site/internal/rest"
	"github.com/neontemple/temple-site/pkg/content"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/render"
	"github.com/neontemple/temple-site/pkg/video"
	log "github.com/sirupsen/logrus"
)

type VideoSource interface {
	Videos() []video.Video
}

type Page struct {
	Events        Section
	Announcements Section
	Videos        []video.Video
}

type HealthDTO struct {
	Status  string `json:"status"`
	Backend bool   `json:"backend"`
}

type FeedsDTO struct {
	Calendar string `json:"calendar"`
	RSS      string `json:"rss"`
}

type Handler struct {
	service  Service
	client   coterie.Client
	renderer *render.Renderer
	store    *content.Store
	videos   VideoSource
}

func NewHandler(service Service, client coterie.Client, renderer *render.Renderer, store *content.Store, videos VideoSource) *Handler {
	return &Handler{
		service:  service,
		client:   client,
		renderer: renderer,
		store:    store,
		videos:   videos,
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Events:        h.service.LoadHomeEvents(r.Context()),
		Announcements: h.service.LoadHomeAnnouncements(r.Context()),
	}
	if h.videos != nil {
		page.Videos = h.videos.Videos()
	}
	h.page(w, "home", render.PageData{Data: page, CSRFToken: csrf.Token(r)})
}

func (h *Handler) Announcements(w http.ResponseWriter, r *http.Request) {
	section := h.service.LoadAllAnnouncements(r.Context())
	h.page(w, "announcements", render.PageData{Title: "Announcements", Data: section, CSRFToken: csrf.Token(r)})
}

// EventDetail renders the detail fragment of a previously listed event.
// Unknown ids answer 204 with no body.
func (h *Handler) EventDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, err := h.store.Event(id)
	if errors.Is(err, content.ErrNotFound) || (err == nil && event.Private) {
		log.Tracef("no cached event %s", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.fragment(w, func() (template.HTML, error) { return h.renderer.EventDetail(event) })
}

func (h *Handler) AnnouncementDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	announcement, err := h.store.Announcement(id)
	if errors.Is(err, content.ErrNotFound) {
		log.Tracef("no cached announcement %s", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.fragment(w, func() (template.HTML, error) { return h.renderer.AnnouncementDetail(announcement) })
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, HealthDTO{Status: "ok", Backend: h.backendHealthy(r.Context())})
}

func (h *Handler) Feeds(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, FeedsDTO{
		Calendar: h.client.CalendarFeedURL(),
		RSS:      h.client.RSSFeedURL(),
	})
}

func (h *Handler) backendHealthy(ctx context.Context) bool {
	healthy := h.client.HealthCheck(ctx)
	if !healthy {
		log.Warn("membership backend is unreachable")
	}
	return healthy
}

func (h *Handler) page(w http.ResponseWriter, name string, data render.PageData) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, name, data); err != nil {
		log.Errorf("failed to render %s page: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	rest.WriteHTML(w, http.StatusOK, buf.String())
}

func (h *Handler) fragment(w http.ResponseWriter, build func() (template.HTML, error)) {
	html, err := build()
	if err != nil {
		log.Errorf("failed to render detail: %v", err)
		http.Error(w, "Failed to render detail", http.StatusInternalServerError)
		return
	}
	rest.WriteHTML(w, http.StatusOK, string(html))
}
