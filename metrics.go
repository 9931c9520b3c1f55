package fqsim

import (
	"sort"
	"sync"
	"time"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

type Metrics struct {
	mu            sync.RWMutex
	WorkerCount   int
	PassCount     int64
	ChunkCount    int64
	ChunkFailures int64
	TotalJobTime  time.Duration

	AverageJobLatency time.Duration
	P95JobLatency     time.Duration
	P99JobLatency     time.Duration
	JobSuccessRate    float64

	Measurements  int64
	DriftWarnings int64

	latencyWindows []timeWindow
	windowSize     int
}

// NewMetrics keeps a window of the last 1000 chunk latencies.
func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000), // Store last 1000 measurements
		windowSize:     1000,
	}
}

func (m *Metrics) recordPass() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PassCount++
}

func (m *Metrics) recordMeasurement(drifted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Measurements++
	if drifted {
		m.DriftWarnings++
	}
}

func (m *Metrics) recordChunk(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.ChunkCount++
	if !success {
		m.ChunkFailures++
	}
	m.JobSuccessRate = float64(m.ChunkCount-m.ChunkFailures) / float64(m.ChunkCount)

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = (m.AverageJobLatency*time.Duration(m.ChunkCount-1) + duration) / time.Duration(m.ChunkCount)

	m.latencyWindows = append(m.latencyWindows, timeWindow{
		duration: duration,
		count:    1,
	})

	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.P95JobLatency = sorted[p95Index]
		m.P99JobLatency = sorted[p99Index]
	}
}

// Snapshot returns a copy of the counters that is safe to read.
func (m *Metrics) Snapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Metrics{
		WorkerCount:       m.WorkerCount,
		PassCount:         m.PassCount,
		ChunkCount:        m.ChunkCount,
		ChunkFailures:     m.ChunkFailures,
		TotalJobTime:      m.TotalJobTime,
		AverageJobLatency: m.AverageJobLatency,
		P95JobLatency:     m.P95JobLatency,
		P99JobLatency:     m.P99JobLatency,
		JobSuccessRate:    m.JobSuccessRate,
		Measurements:      m.Measurements,
		DriftWarnings:     m.DriftWarnings,
	}
}

/*
ExportMetrics flattens the counters into a map for logging. Latencies are
reported in microseconds.
*/
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"worker_count":   m.WorkerCount,
		"passes":         m.PassCount,
		"chunks":         m.ChunkCount,
		"success_rate":   m.JobSuccessRate,
		"avg_latency":    m.AverageJobLatency.Microseconds(),
		"p95_latency":    m.P95JobLatency.Microseconds(),
		"p99_latency":    m.P99JobLatency.Microseconds(),
		"measurements":   m.Measurements,
		"drift_warnings": m.DriftWarnings,
	}
}
