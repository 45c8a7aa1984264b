package app

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks pipeline throughput and handling latency.
type Metrics struct {
	// Messages
	received       atomic.Uint64
	decoded        atomic.Uint64
	decodeFailures atomic.Uint64
	duplicates     atomic.Uint64
	written        atomic.Uint64
	sinkFailures   atomic.Uint64
	scriptFailures atomic.Uint64

	// Handling time from receipt to sink
	handleCount   atomic.Uint64
	handleTotalNs atomic.Int64
	handleMinNs   atomic.Int64
	handleMaxNs   atomic.Int64

	mu      sync.Mutex
	byGroup map[string]uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		byGroup:   make(map[string]uint64),
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first sample is smaller
	m.handleMinNs.Store(1<<63 - 1)
	return m
}

// RecordReceived counts an incoming message.
func (m *Metrics) RecordReceived() { m.received.Add(1) }

// RecordDecoded counts a decoded event under its registry tag.
func (m *Metrics) RecordDecoded(tag string) {
	m.decoded.Add(1)
	m.mu.Lock()
	m.byGroup[tag]++
	m.mu.Unlock()
}

// RecordDecodeFailure counts a message that did not decode.
func (m *Metrics) RecordDecodeFailure() { m.decodeFailures.Add(1) }

// RecordDuplicate counts a suppressed repeat.
func (m *Metrics) RecordDuplicate() { m.duplicates.Add(1) }

// RecordWritten counts a record written to the sink.
func (m *Metrics) RecordWritten() { m.written.Add(1) }

// RecordSinkFailure counts a failed sink write.
func (m *Metrics) RecordSinkFailure() { m.sinkFailures.Add(1) }

// RecordScriptFailure counts a filter script error.
func (m *Metrics) RecordScriptFailure() { m.scriptFailures.Add(1) }

// RecordHandle records the time spent handling one message.
func (m *Metrics) RecordHandle(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.handleCount.Add(1)
	m.handleTotalNs.Add(ns)

	// Update min (atomic compare-and-swap loop)
	for {
		old := m.handleMinNs.Load()
		if ns >= old || m.handleMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.handleMaxNs.Load()
		if ns <= old || m.handleMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.handleCount.Load()
	total := m.handleTotalNs.Load()

	var avg int64
	if count > 0 {
		avg = total / int64(count)
	}

	minNs := m.handleMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	m.mu.Lock()
	byGroup := make(map[string]uint64, len(m.byGroup))
	for k, v := range m.byGroup {
		byGroup[k] = v
	}
	m.mu.Unlock()

	return MetricsSnapshot{
		Received:       m.received.Load(),
		Decoded:        m.decoded.Load(),
		DecodeFailures: m.decodeFailures.Load(),
		Duplicates:     m.duplicates.Load(),
		Written:        m.written.Load(),
		SinkFailures:   m.sinkFailures.Load(),
		ScriptFailures: m.scriptFailures.Load(),
		ByGroup:        byGroup,
		HandleCount:    count,
		AvgHandleNs:    avg,
		MinHandleNs:    minNs,
		MaxHandleNs:    m.handleMaxNs.Load(),
		Uptime:         time.Since(m.startTime),
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Received       uint64
	Decoded        uint64
	DecodeFailures uint64
	Duplicates     uint64
	Written        uint64
	SinkFailures   uint64
	ScriptFailures uint64

	// ByGroup counts decoded events per registry tag.
	ByGroup map[string]uint64

	HandleCount uint64
	AvgHandleNs int64
	MinHandleNs int64
	MaxHandleNs int64

	Uptime time.Duration
}

// Rate returns decoded events per second of uptime.
func (s MetricsSnapshot) Rate() float64 {
	if s.Uptime <= 0 {
		return 0
	}
	return float64(s.Decoded) / s.Uptime.Seconds()
}

// FailureRate returns the share of received messages that failed to decode.
func (s MetricsSnapshot) FailureRate() float64 {
	if s.Received == 0 {
		return 0
	}
	return float64(s.DecodeFailures) / float64(s.Received)
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer starts a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
