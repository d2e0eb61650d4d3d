package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeStatus  = "status"
	OutcomeError   = "error"
	OutcomeDecode  = "decode"
)

// Recorder receives one observation per upstream request.
type Recorder interface {
	ObserveUpstream(endpoint string, outcome string, elapsed time.Duration)
}

// Metrics holds the Prometheus collectors for the site. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry         *prometheus.Registry
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	BannerRotations  prometheus.Counter
	BannerSlide      prometheus.Gauge
	BannerSlides     prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "temple",
				Name:      "upstream_requests_total",
				Help:      "Requests issued to the membership backend",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "temple",
				Name:      "upstream_request_duration_seconds",
				Help:      "Membership backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		BannerRotations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "temple",
				Name:      "banner_rotations_total",
				Help:      "Featured banner slide changes",
			},
		),
		BannerSlide: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "temple",
				Name:      "banner_slide",
				Help:      "Zero-based index of the featured slide on display",
			},
		),
		BannerSlides: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "temple",
				Name:      "banner_slides",
				Help:      "Number of featured announcements in rotation",
			},
		),
	}
}

func (m *Metrics) ObserveUpstream(endpoint string, outcome string, elapsed time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveBanner records the slide the banner moved to.
func (m *Metrics) ObserveBanner(index, count int) {
	m.BannerSlide.Set(float64(index))
	m.BannerSlides.Set(float64(count))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Noop discards observations.
type Noop struct{}

func (Noop) ObserveUpstream(string, string, time.Duration) {}
