package frontend

import (
	"net/http"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/search"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the frontend collectors on their own registry.
type Metrics struct {
	registry    *prometheus.Registry
	searches    *prometheus.CounterVec
	audioErrors *prometheus.CounterVec
}

func NewMetrics(cache *audio.Cache) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sermon_search_requests_total",
				Help: "Searches forwarded to the backend by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		audioErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sermon_audio_fetch_errors_total",
				Help: "Audio items that could not be fetched, by action",
			},
			[]string{"action"},
		),
	}
	m.registry.MustRegister(m.searches, m.audioErrors)

	if cache != nil {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "sermon_audio_cache_hits_total",
				Help: "Audio cache hits",
			}, func() float64 { return float64(cache.Stats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "sermon_audio_cache_misses_total",
				Help: "Audio cache misses",
			}, func() float64 { return float64(cache.Stats().Misses) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "sermon_audio_cache_evictions_total",
				Help: "Audio cache evictions",
			}, func() float64 { return float64(cache.Stats().Evictions) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "sermon_audio_cache_bytes",
				Help: "Bytes currently held by the audio cache",
			}, func() float64 { return float64(cache.Stats().Bytes) }),
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) recordSearch(mode search.Mode, outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(string(mode), outcome).Inc()
}

func (m *Metrics) recordAudioError(action string) {
	if m == nil {
		return
	}
	m.audioErrors.WithLabelValues(action).Inc()
}
