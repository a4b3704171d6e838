package observability

import (
	"sync"
	"time"
)

// Metrics is a small in-process registry. Counters are keyed by label
// string; Snapshot serves them over the admin endpoint as JSON.
type Metrics struct {
	mu sync.Mutex

	aggregateOps     map[string]int64
	aggregateLatency map[string]time.Duration
	conflicts        map[string]int64
	retries          map[string]int64
	httpRequests     map[string]int64
	syncApplied      map[string]int64
	syncSkipped      map[string]int64
	published        map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		aggregateOps:     map[string]int64{},
		aggregateLatency: map[string]time.Duration{},
		conflicts:        map[string]int64{},
		retries:          map[string]int64{},
		httpRequests:     map[string]int64{},
		syncApplied:      map[string]int64{},
		syncSkipped:      map[string]int64{},
		published:        map[string]int64{},
	}
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + "|" + status
	m.aggregateOps[key]++
	m.aggregateLatency[key] += dur
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[op]++
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries[op]++
}

func (m *Metrics) IncHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpRequests[method+" "+route+" "+statusBucket(status)]++
}

func (m *Metrics) IncSyncApplied(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncApplied[kind]++
}

func (m *Metrics) IncSyncSkipped(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncSkipped[kind]++
}

func (m *Metrics) IncPublished(channel string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[channel]++
}

// Snapshot flattens every series into sorted name→value pairs.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	add := func(prefix string, series map[string]int64) {
		for k, v := range series {
			out[prefix+"{"+k+"}"] = v
		}
	}
	add("aggregate_operations_total", m.aggregateOps)
	add("aggregate_conflicts_total", m.conflicts)
	add("aggregate_retries_total", m.retries)
	add("http_requests_total", m.httpRequests)
	add("sync_events_applied_total", m.syncApplied)
	add("sync_events_skipped_total", m.syncSkipped)
	add("outbox_published_total", m.published)
	for k, v := range m.aggregateLatency {
		out["aggregate_operation_millis_total{"+k+"}"] = v.Milliseconds()
	}
	return out
}

func statusBucket(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
