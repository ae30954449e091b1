package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks vendor sync runs.
type SyncMetrics struct {
	runDuration    *prometheus.HistogramVec
	runsByStatus   *prometheus.CounterVec
	vehicles       *prometheus.CounterVec
	imageFallbacks *prometheus.CounterVec
}

// NewSyncMetrics registers sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendor_sync_duration_seconds",
		Help:    "Duration of vendor sync runs in seconds.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"vendor"})
	runsByStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_sync_runs_total",
		Help: "Vendor sync runs by terminal status.",
	}, []string{"vendor", "status"})
	vehicles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_sync_vehicles_total",
		Help: "Vehicles processed by sync runs, by diff classification.",
	}, []string{"vendor", "classification"})
	imageFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_sync_image_fallbacks_total",
		Help: "Image slots that fell back to the source URL.",
	}, []string{"vendor"})
	reg.MustRegister(runDuration, runsByStatus, vehicles, imageFallbacks)
	return &SyncMetrics{
		runDuration:    runDuration,
		runsByStatus:   runsByStatus,
		vehicles:       vehicles,
		imageFallbacks: imageFallbacks,
	}
}

// ObserveRun records one completed run.
func (s *SyncMetrics) ObserveRun(vendor, status string, duration time.Duration) {
	if s == nil || s.runDuration == nil {
		return
	}
	s.runDuration.WithLabelValues(normalizeLabel(vendor)).Observe(duration.Seconds())
	s.runsByStatus.WithLabelValues(normalizeLabel(vendor), normalizeLabel(status)).Inc()
}

// AddVehicles adds to the per-classification vehicle counter.
func (s *SyncMetrics) AddVehicles(vendor, classification string, n int) {
	if s == nil || s.vehicles == nil || n <= 0 {
		return
	}
	s.vehicles.WithLabelValues(normalizeLabel(vendor), normalizeLabel(classification)).Add(float64(n))
}

// AddImageFallbacks counts image slots that kept their source URL.
func (s *SyncMetrics) AddImageFallbacks(vendor string, n int) {
	if s == nil || s.imageFallbacks == nil || n <= 0 {
		return
	}
	s.imageFallbacks.WithLabelValues(normalizeLabel(vendor)).Add(float64(n))
}
