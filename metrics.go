package portalauth

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics system.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure
	// MetricLoginSuperseded counts login results discarded because a newer
	// session-mutating call was initiated while they were in flight.
	MetricLoginSuperseded
	// MetricLogout counts logouts, explicit and 401-triggered.
	MetricLogout
	// MetricRestoreSuccess counts sessions restored from persistence.
	MetricRestoreSuccess
	// MetricRestoreRejected counts restores rejected due to missing,
	// corrupt, or expired persisted entries.
	MetricRestoreRejected
	// MetricSessionExpired counts sessions cleared by an HTTP 401.
	MetricSessionExpired
	// MetricProfileUpdated counts accepted profile updates.
	MetricProfileUpdated

	metricIDCount
)

// Cache-line padding keeps adjacent counters from false sharing.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Metrics holds atomic counters for session activity. When disabled, all
// operations are no-ops.
type Metrics struct {
	enabled  bool
	counters []paddedCounter
}

// NewMetrics creates a Metrics instance configured by the given
// MetricsConfig.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:  cfg.Enabled,
		counters: make([]paddedCounter, metricIDCount),
	}
}

// Inc increments one counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Value returns the current count for one metric.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].value.Load()
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}
	return snap
}
