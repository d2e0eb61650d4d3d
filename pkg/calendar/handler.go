package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/internal/rest"
	"github.com/neontemple/temple-site/internal/utils"
	"github.com/neontemple/temple-site/pkg/content"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/render"
	log "github.com/sirupsen/logrus"
)

// Lookups of unknown events refetch the list at most this often.
const MissRefetchInterval = time.Minute

type HandlerConfig struct {
	Location *time.Location
	Limit    int
	SiteURL  string
}

type Handler struct {
	client    coterie.Client
	renderer  *render.Renderer
	store     *content.Store
	publisher event_bus.Publisher
	clock     utils.Clock
	cfg       HandlerConfig

	refetchMu   sync.Mutex
	lastRefetch time.Time
}

func NewHandler(client coterie.Client, renderer *render.Renderer, store *content.Store, publisher event_bus.Publisher, clock utils.Clock, cfg HandlerConfig) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Handler{
		client:    client,
		renderer:  renderer,
		store:     store,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// Page renders the calendar for the state carried in the query string.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	vm, err := h.viewModel(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar state", err.Error())
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Page(&buf, "calendar", render.PageData{Title: vm.MonthLabel, Data: vm, CSRFToken: csrf.Token(r)})
	if err != nil {
		log.Errorf("failed to render calendar page: %v", err)
		http.Error(w, "Failed to render calendar", http.StatusInternalServerError)
		return
	}
	rest.WriteHTML(w, http.StatusOK, buf.String())
}

// API returns the same view model as JSON.
func (h *Handler) API(w http.ResponseWriter, r *http.Request) {
	vm, err := h.viewModel(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar state", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, vm)
}

// EventICS serves one event as an .ics download. Events not seen yet are
// looked up with a fresh fetch, throttled to one per MissRefetchInterval.
func (h *Handler) EventICS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, err := h.store.Event(id)
	if errors.Is(err, content.ErrNotFound) && h.refetch(r) {
		event, err = h.store.Event(id)
	}
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
		return
	}

	doc, err := EventICS(event, h.cfg.SiteURL, h.clock.Now())
	if errors.Is(err, ErrPrivateEvent) {
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	if err != nil {
		log.Errorf("failed to build calendar file for %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, sanitizeFilename(id)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Errorf("failed to write calendar file: %v", err)
	}
}

func (h *Handler) viewModel(r *http.Request) (ViewModel, error) {
	q := r.URL.Query()

	cal := New(h.clock, h.cfg.Location, !isMobile(r.UserAgent()))
	cal.SetLimit(h.cfg.Limit)
	if err := cal.Restore(q); err != nil {
		return ViewModel{}, err
	}

	if err := cal.Load(r.Context(), h.client); err != nil {
		log.Warnf("calendar: %v", err)
	} else {
		h.publish(r, cal.Events())
	}

	if id := GoToParam(q); id != "" && !cal.GoToEventID(id) {
		log.Debugf("calendar: event %s not in loaded set", id)
	}
	return BuildViewModel(cal, h.client.ImageURL), nil
}

// refetch reloads the event list into the store. It reports false when the
// last refetch is too recent or the fetch failed. Concurrent misses wait for
// the one in flight instead of fetching again.
func (h *Handler) refetch(r *http.Request) bool {
	h.refetchMu.Lock()
	defer h.refetchMu.Unlock()

	now := h.clock.Now()
	if !h.lastRefetch.IsZero() && now.Sub(h.lastRefetch) < MissRefetchInterval {
		return false
	}
	h.lastRefetch = now

	log.Debug("calendar: unknown event, refetching events")
	events, err := h.client.GetEvents(r.Context(), coterie.ListParams{Limit: h.cfg.Limit})
	if err != nil {
		log.Warnf("calendar: refetch failed: %v", err)
		return false
	}
	if h.publisher == nil {
		h.store.PutEvents(events...)
	} else {
		h.publish(r, events)
	}
	return true
}

func (h *Handler) publish(r *http.Request, events []coterie.Event) {
	if h.publisher == nil {
		return
	}
	err := h.publisher.Publish(event_bus.NewEvent(r.Context(), event_bus.EventsLoadedType, event_bus.EventsLoaded{Events: events}))
	if err != nil {
		log.Warnf("calendar: failed to publish loaded events: %v", err)
	}
}

// isMobile stands in for the viewport width check: phones get the list view.
func isMobile(userAgent string) bool {
	return strings.Contains(userAgent, "Mobi") || strings.Contains(userAgent, "Android")
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
