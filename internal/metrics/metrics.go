// Package metrics exposes prometheus counters for the offramp core.
// All metrics are labeled by component name so multiple services in
// one process stay distinguishable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offramp_items_recorded_total",
			Help: "Total items accepted by Record, by component",
		},
		[]string{"component"},
	)

	itemsFlushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offramp_items_flushed_total",
			Help: "Total items delivered by flushes, by component and path",
		},
		[]string{"component", "path"},
	)

	itemsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offramp_items_dropped_total",
			Help: "Total items dropped under local storage exhaustion, by component",
		},
		[]string{"component"},
	)

	flushErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offramp_flush_errors_total",
			Help: "Total failed delivery attempts, by component and path",
		},
		[]string{"component", "path"},
	)

	modeDowngrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offramp_mode_downgrades_total",
			Help: "Permanent remote-to-local transitions, by component (at most 1 per instance)",
		},
		[]string{"component"},
	)
)

// RecordItem counts one accepted item.
func RecordItem(component string) {
	itemsRecorded.WithLabelValues(component).Inc()
}

// RecordFlush counts delivered items for one flush.
func RecordFlush(component, path string, delivered int) {
	if delivered > 0 {
		itemsFlushed.WithLabelValues(component, path).Add(float64(delivered))
	}
}

// RecordDrop counts items lost to buffer overflow.
func RecordDrop(component string, dropped int) {
	if dropped > 0 {
		itemsDropped.WithLabelValues(component).Add(float64(dropped))
	}
}

// RecordFlushError counts one failed delivery attempt.
func RecordFlushError(component, path string) {
	flushErrors.WithLabelValues(component, path).Inc()
}

// RecordDowngrade counts the one-way mode transition.
func RecordDowngrade(component string) {
	modeDowngrades.WithLabelValues(component).Inc()
}
