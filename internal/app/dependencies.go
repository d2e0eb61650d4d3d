package app

import (
	"net/http"
	"time"

	"github.com/neontemple/temple-site/internal/config"
	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/internal/metrics"
	"github.com/neontemple/temple-site/internal/utils"
	"github.com/neontemple/temple-site/pkg/banner"
	"github.com/neontemple/temple-site/pkg/calendar"
	"github.com/neontemple/temple-site/pkg/content"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/home"
	"github.com/neontemple/temple-site/pkg/render"
	"github.com/neontemple/temple-site/pkg/signup"
	"github.com/neontemple/temple-site/pkg/video"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	Location *time.Location
	EventBus *event_bus.EventBus
	Metrics  *metrics.Metrics

	CoterieClient coterie.Client
	ContentStore  *content.Store

	Classifier *render.AspectClassifier
	Renderer   *render.Renderer

	BannerController *banner.Controller
	BannerHandler    *banner.Handler

	CalendarHandler *calendar.Handler

	HomeService home.Service
	HomeHandler *home.Handler

	SignupHandler *signup.Handler

	VideoService *video.Service
	VideoHandler *video.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	m := metrics.NewMetrics()
	client := coterie.NewClient(cfg.API.URL, &http.Client{Timeout: cfg.API.Timeout}, m)
	return buildDependencies(cfg, client, m)
}

func buildDependencies(cfg config.Application, client coterie.Client, m *metrics.Metrics) (*Dependencies, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Clock:         &utils.SystemClock{},
		Location:      loc,
		EventBus:      event_bus.NewEventBus(),
		Metrics:       m,
		CoterieClient: client,
		ContentStore:  content.NewStore(),
	}
	deps.ContentStore.Subscribe(deps.EventBus)
	subscribeBannerMetrics(deps.EventBus, m)

	deps.BannerController = banner.NewController(banner.TickerScheduler{}, cfg.Banner.Interval, deps.EventBus)
	deps.BannerController.SetRotationCounter(m.BannerRotations)

	opts := render.Options{
		SiteName:        cfg.Site.Name,
		PortalURL:       cfg.Portal.URL,
		CalendarFeedURL: client.CalendarFeedURL(),
		RSSFeedURL:      client.RSSFeedURL(),
		ImageURL:        client.ImageURL,
		Location:        loc,
		Banner:          deps.BannerController.View,
	}
	if cfg.Images.Classify {
		deps.Classifier = render.NewAspectClassifier(&http.Client{Timeout: cfg.API.Timeout}, cfg.Images.Workers)
		opts.Classifier = deps.Classifier
	}
	deps.Renderer, err = render.New(opts)
	if err != nil {
		return nil, err
	}

	deps.BannerHandler = banner.NewHandler(deps.BannerController, deps.Renderer)

	deps.CalendarHandler = calendar.NewHandler(client, deps.Renderer, deps.ContentStore, deps.EventBus, deps.Clock, calendar.HandlerConfig{
		Location: loc,
		Limit:    cfg.Calendar.Limit,
		SiteURL:  cfg.Site.URL,
	})

	deps.VideoService = video.NewService(video.NewFetcher(nil, cfg.Video.RelayList(), cfg.Video.Limit), cfg.Video.PlaylistID)
	deps.VideoHandler = video.NewHandler(deps.VideoService)

	deps.HomeService = home.NewService(client, deps.EventBus)
	deps.HomeHandler = home.NewHandler(deps.HomeService, client, deps.Renderer, deps.ContentStore, deps.VideoService)

	deps.SignupHandler = signup.NewHandler(client, deps.Renderer)

	return deps, nil
}

func subscribeBannerMetrics(bus *event_bus.EventBus, m *metrics.Metrics) func() {
	return event_bus.SubscribeTyped(bus, event_bus.BannerRotatedType,
		func(e event_bus.EventT[event_bus.BannerRotated]) error {
			m.ObserveBanner(e.Data.Index, e.Data.Count)
			log.Tracef("banner: showing %s (%d/%d)", e.Data.AnnouncementID, e.Data.Index+1, e.Data.Count)
			return nil
		})
}
