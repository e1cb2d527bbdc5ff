package llm

import (
	"context"
	"sync"
)

// activeFrameKey is the context key used to attribute an in-flight
// provider call to the frame that issued it, so MetricsCollector.Record
// can fill in RequestMetrics.FrameName without threading it through every
// call signature.
type activeFrameKey struct{}

// WithActiveFrame returns a context carrying frameName, consulted by
// MetricsCollector.Record via FrameFromContext.
func WithActiveFrame(ctx context.Context, frameName string) context.Context {
	return context.WithValue(ctx, activeFrameKey{}, frameName)
}

// FrameFromContext extracts the active frame name set by WithActiveFrame,
// or "" if none was set (e.g. a call made outside frame execution).
func FrameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(activeFrameKey{}).(string)
	return name
}

// AggregateMetrics summarizes every RequestMetrics recorded so far,
// grouped by provider and by tier.
type AggregateMetrics struct {
	TotalCalls       int
	SuccessfulCalls  int
	FailedCalls      int
	TotalInputTokens int
	TotalOutputTokens int
	ByProvider       map[string]int
	ByTier           map[Tier]int
}

// MetricsCollector is the process-wide sink for per-call
// RequestMetrics, mirroring the teacher's OverallMetrics aggregation
// style (accumulate a slice, derive summary counters on demand) but kept
// live/append-only since calls arrive throughout a scan rather than as a
// single batch.
type MetricsCollector struct {
	mu      sync.Mutex
	records []RequestMetrics
}

// NewMetricsCollector builds an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// Record appends one call's metrics.
func (m *MetricsCollector) Record(rm RequestMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rm)
}

// All returns a copy of every recorded metric, in recording order.
func (m *MetricsCollector) All() []RequestMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RequestMetrics, len(m.records))
	copy(out, m.records)
	return out
}

// Aggregate computes AggregateMetrics across every call recorded so far.
func (m *MetricsCollector) Aggregate() AggregateMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := AggregateMetrics{
		ByProvider: make(map[string]int),
		ByTier:     make(map[Tier]int),
	}
	for _, rm := range m.records {
		agg.TotalCalls++
		if rm.Success {
			agg.SuccessfulCalls++
		} else {
			agg.FailedCalls++
		}
		agg.TotalInputTokens += rm.InputTokens
		agg.TotalOutputTokens += rm.OutputTokens
		agg.ByProvider[rm.Provider]++
		agg.ByTier[rm.Tier]++
	}
	return agg
}
