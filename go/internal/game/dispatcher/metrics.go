package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

// MetricsCollector defines the interface for collecting dispatcher metrics
type MetricsCollector interface {
	RecordRequest(endpoint string, success bool, duration time.Duration)
	RecordRejection(kind catalog.ActionKind, code gameerrors.Code)
	RecordRecovery(kind catalog.ActionKind, recovery gameerrors.Recovery)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordRequest(endpoint string, success bool, duration time.Duration)  {}
func (n *NoOpMetricsCollector) RecordRejection(kind catalog.ActionKind, code gameerrors.Code)        {}
func (n *NoOpMetricsCollector) RecordRecovery(kind catalog.ActionKind, recovery gameerrors.Recovery) {}

// MetricTransport wraps a Transport with metrics collection
type MetricTransport struct {
	transport Transport
	metrics   MetricsCollector
}

func NewMetricTransport(transport Transport, metrics MetricsCollector) *MetricTransport {
	return &MetricTransport{
		transport: transport,
		metrics:   metrics,
	}
}

func (t *MetricTransport) Send(ctx context.Context, endpoint string, body any, requestID string) error {
	start := time.Now()

	err := t.transport.Send(ctx, endpoint, body, requestID)

	t.metrics.RecordRequest(endpoint, err == nil, time.Since(start))
	return err
}

// MetricsSnapshot is a copy of the counters kept by MemoryMetrics.
type MetricsSnapshot struct {
	Requests       uint64                         `json:"requests"`
	Failures       uint64                         `json:"failures"`
	TotalLatency   time.Duration                  `json:"total_latency"`
	Rejections     map[gameerrors.Code]uint64     `json:"rejections"`
	Recoveries     map[gameerrors.Recovery]uint64 `json:"recoveries"`
	LastRequestAt  time.Time                      `json:"last_request_at"`
	LastEndpoint   string                         `json:"last_endpoint,omitempty"`
	RejectionKinds map[catalog.ActionKind]uint64  `json:"rejection_kinds"`
}

// MemoryMetrics keeps counters in memory for the inspector.
type MemoryMetrics struct {
	mu   sync.Mutex
	snap MetricsSnapshot
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{snap: MetricsSnapshot{
		Rejections:     make(map[gameerrors.Code]uint64),
		Recoveries:     make(map[gameerrors.Recovery]uint64),
		RejectionKinds: make(map[catalog.ActionKind]uint64),
	}}
}

func (m *MemoryMetrics) RecordRequest(endpoint string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Requests++
	if !success {
		m.snap.Failures++
	}
	m.snap.TotalLatency += duration
	m.snap.LastRequestAt = time.Now()
	m.snap.LastEndpoint = endpoint
}

func (m *MemoryMetrics) RecordRejection(kind catalog.ActionKind, code gameerrors.Code) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Rejections[code]++
	m.snap.RejectionKinds[kind]++
}

func (m *MemoryMetrics) RecordRecovery(kind catalog.ActionKind, recovery gameerrors.Recovery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Recoveries[recovery]++
}

// Snapshot returns a copy of the counters.
func (m *MemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.snap
	out.Rejections = make(map[gameerrors.Code]uint64, len(m.snap.Rejections))
	for k, v := range m.snap.Rejections {
		out.Rejections[k] = v
	}
	out.Recoveries = make(map[gameerrors.Recovery]uint64, len(m.snap.Recoveries))
	for k, v := range m.snap.Recoveries {
		out.Recoveries[k] = v
	}
	out.RejectionKinds = make(map[catalog.ActionKind]uint64, len(m.snap.RejectionKinds))
	for k, v := range m.snap.RejectionKinds {
		out.RejectionKinds[k] = v
	}
	return out
}
