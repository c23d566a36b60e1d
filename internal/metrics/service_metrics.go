// Package metrics keeps in-process request, render and session counters.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramonehamilton/deckbuilder/internal/events"
)

// ServiceMetrics collects counters and latency histograms for the API.
type ServiceMetrics struct {
	RequestLatency     *Histogram
	FilterLatency      *Histogram
	RenderLatency      *Histogram
	CatalogLoadLatency *Histogram

	Requests       atomic.Uint64
	ServerErrors   atomic.Uint64
	SessionsOpened atomic.Uint64
	DeckDeltas     atomic.Uint64
	FilterUpdates  atomic.Uint64
	Imports        atomic.Uint64
	ImportFailures atomic.Uint64
	DecksSaved     atomic.Uint64
	DecksLoaded    atomic.Uint64
	Renders        atomic.Uint64
	RenderFailures atomic.Uint64
	CatalogReloads atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// New creates an empty collector.
func New() *ServiceMetrics {
	return &ServiceMetrics{
		RequestLatency:     NewHistogram(defaultHistogramSize),
		FilterLatency:      NewHistogram(defaultHistogramSize),
		RenderLatency:      NewHistogram(1000),
		CatalogLoadLatency: NewHistogram(100),
		startTime:          time.Now(),
	}
}

// Middleware counts requests, 5xx responses and request latency.
func (m *ServiceMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		m.Requests.Add(1)
		if ww.Status() >= http.StatusInternalServerError {
			m.ServerErrors.Add(1)
		}
		m.RequestLatency.Time(start)
	})
}

// OnEvent counts session and catalog events.
func (m *ServiceMetrics) OnEvent(event events.Event) error {
	switch event.Type {
	case events.TypeSessionCreated:
		m.SessionsOpened.Add(1)
	case events.TypeSessionUpdated:
		payload, ok := events.GetTypedData[events.SessionUpdatedEvent](event)
		if !ok {
			return nil
		}
		switch payload.Reason {
		case events.ReasonDelta:
			m.DeckDeltas.Add(1)
		case events.ReasonFilter:
			m.FilterUpdates.Add(1)
		case events.ReasonImport:
			m.Imports.Add(1)
		case events.ReasonLoad:
			m.DecksLoaded.Add(1)
		}
	case events.TypeDeckSaved:
		m.DecksSaved.Add(1)
	case events.TypeCatalogReloaded:
		m.CatalogReloads.Add(1)
	}
	return nil
}

// GetName returns the observer name.
func (m *ServiceMetrics) GetName() string {
	return "MetricsObserver"
}

// ShouldHandle accepts every event type.
func (m *ServiceMetrics) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*ServiceMetrics)(nil)

// Stats is a point-in-time copy of the metrics.
type Stats struct {
	RequestLatency     LatencyStats `json:"request_latency"`
	FilterLatency      LatencyStats `json:"filter_latency"`
	RenderLatency      LatencyStats `json:"render_latency"`
	CatalogLoadLatency LatencyStats `json:"catalog_load_latency"`

	Requests          uint64  `json:"requests"`
	ServerErrors      uint64  `json:"server_errors"`
	SessionsOpened    uint64  `json:"sessions_opened"`
	DeckDeltas        uint64  `json:"deck_deltas"`
	FilterUpdates     uint64  `json:"filter_updates"`
	Imports           uint64  `json:"imports"`
	ImportFailures    uint64  `json:"import_failures"`
	DecksSaved        uint64  `json:"decks_saved"`
	DecksLoaded       uint64  `json:"decks_loaded"`
	Renders           uint64  `json:"renders"`
	RenderFailures    uint64  `json:"render_failures"`
	CatalogReloads    uint64  `json:"catalog_reloads"`
	RequestErrorRate  float64 `json:"request_error_rate"`  // percentage
	RenderSuccessRate float64 `json:"render_success_rate"` // percentage

	Uptime string `json:"uptime"`
}

// GetStats returns a snapshot.
func (m *ServiceMetrics) GetStats() *Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := m.Requests.Load()
	serverErrors := m.ServerErrors.Load()
	renders := m.Renders.Load()
	renderFailures := m.RenderFailures.Load()

	errorRate := 0.0
	if requests > 0 {
		errorRate = float64(serverErrors) / float64(requests) * 100
	}
	renderRate := 0.0
	if renders > 0 {
		renderRate = float64(renders-renderFailures) / float64(renders) * 100
	}

	return &Stats{
		RequestLatency:     m.RequestLatency.Stats(),
		FilterLatency:      m.FilterLatency.Stats(),
		RenderLatency:      m.RenderLatency.Stats(),
		CatalogLoadLatency: m.CatalogLoadLatency.Stats(),
		Requests:           requests,
		ServerErrors:       serverErrors,
		SessionsOpened:     m.SessionsOpened.Load(),
		DeckDeltas:         m.DeckDeltas.Load(),
		FilterUpdates:      m.FilterUpdates.Load(),
		Imports:            m.Imports.Load(),
		ImportFailures:     m.ImportFailures.Load(),
		DecksSaved:         m.DecksSaved.Load(),
		DecksLoaded:        m.DecksLoaded.Load(),
		Renders:            renders,
		RenderFailures:     renderFailures,
		CatalogReloads:     m.CatalogReloads.Load(),
		RequestErrorRate:   errorRate,
		RenderSuccessRate:  renderRate,
		Uptime:             time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears every counter and histogram.
func (m *ServiceMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range []*Histogram{m.RequestLatency, m.FilterLatency, m.RenderLatency, m.CatalogLoadLatency} {
		h.Reset()
	}
	for _, c := range []*atomic.Uint64{
		&m.Requests, &m.ServerErrors, &m.SessionsOpened, &m.DeckDeltas, &m.FilterUpdates,
		&m.Imports, &m.ImportFailures, &m.DecksSaved, &m.DecksLoaded,
		&m.Renders, &m.RenderFailures, &m.CatalogReloads,
	} {
		c.Store(0)
	}
	m.startTime = time.Now()
}
