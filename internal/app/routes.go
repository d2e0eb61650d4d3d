package app

import (
	"github.com/gorilla/mux"
	"github.com/neontemple/temple-site/internal/config"
)

// NewRouter builds the router with middleware and every route registered.
func NewRouter(deps *Dependencies, cfg config.Application) (*mux.Router, error) {
	r := mux.NewRouter()
	SetupMiddleware(r)
	if err := RegisterRoutes(r, deps, cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterRoutes registers all pages and API endpoints. Pages and the
// banner controls sit behind CSRF protection so every page carries a token.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) error {
	protect, err := CSRFMiddleware(cfg.CSRF)
	if err != nil {
		return err
	}
	site := r.NewRoute().Subrouter()
	site.Use(protect)

	// Pages
	site.HandleFunc("/", deps.HomeHandler.Home).Methods("GET")
	site.HandleFunc("/announcements", deps.HomeHandler.Announcements).Methods("GET")
	site.HandleFunc("/calendar", deps.CalendarHandler.Page).Methods("GET")
	site.HandleFunc("/join", deps.SignupHandler.Show).Methods("GET")
	site.HandleFunc("/join", deps.SignupHandler.Submit).Methods("POST")

	// Featured banner
	site.HandleFunc("/banner", deps.BannerHandler.Fragment).Methods("GET")
	site.HandleFunc("/banner/slide/{index}", deps.BannerHandler.Jump).Methods("POST")
	site.HandleFunc("/api/banner/slide/{index}", deps.BannerHandler.GoTo).Methods("POST")
	site.HandleFunc("/api/banner/pause", deps.BannerHandler.Pause).Methods("POST")
	site.HandleFunc("/api/banner/resume", deps.BannerHandler.Resume).Methods("POST")

	// Detail fragments; the .ics route must come before the generic event route
	r.HandleFunc("/events/{id}.ics", deps.CalendarHandler.EventICS).Methods("GET")
	r.HandleFunc("/events/{id}", deps.HomeHandler.EventDetail).Methods("GET")
	r.HandleFunc("/announcements/{id}", deps.HomeHandler.AnnouncementDetail).Methods("GET")

	// JSON
	r.HandleFunc("/api/banner", deps.BannerHandler.Get).Methods("GET")
	r.HandleFunc("/api/signup", deps.SignupHandler.API).Methods("POST")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.API).Methods("GET")
	r.HandleFunc("/api/videos", deps.VideoHandler.List).Methods("GET")
	r.HandleFunc("/api/feeds", deps.HomeHandler.Feeds).Methods("GET")

	// Operations
	r.HandleFunc("/health", deps.HomeHandler.Health).Methods("GET")
	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")

	return nil
}
