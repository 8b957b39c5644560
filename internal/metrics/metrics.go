package metrics

import (
	"maps"
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	selections    map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	healthStatus  map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                      `json:"total_requests"`
	Uptime        time.Duration              `json:"uptime"`
	Instances     map[string]InstanceMetrics `json:"instances"`
}

type InstanceMetrics struct {
	Requests    int64         `json:"requests"`
	Selections  int64         `json:"selections"`
	Healthy     bool          `json:"healthy"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		selections:    make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests(instance string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[instance]++
}

func (m *Metrics) RecordSelection(instance string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.selections[instance]++
}

func (m *Metrics) RecordResponse(instance string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes[instance] = append(m.responseTimes[instance], duration)

	// Keep a bounded window so snapshots stay cheap.
	if len(m.responseTimes[instance]) > 1000 {
		m.responseTimes[instance] = m.responseTimes[instance][1:]
	}

	if m.statusCodes[instance] == nil {
		m.statusCodes[instance] = make(map[int]int64)
	}
	m.statusCodes[instance][statusCode]++
}

func (m *Metrics) UpdateHealthStatus(instance string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthStatus[instance] = healthy
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Instances: make(map[string]InstanceMetrics),
	}

	allInstances := make(map[string]bool)
	for instance := range m.requests {
		allInstances[instance] = true
	}
	for instance := range m.selections {
		allInstances[instance] = true
	}
	for instance := range m.responseTimes {
		allInstances[instance] = true
	}
	for instance := range m.healthStatus {
		allInstances[instance] = true
	}

	for instance := range allInstances {
		snap.TotalRequests += m.requests[instance]

		im := InstanceMetrics{
			Requests:   m.requests[instance],
			Selections: m.selections[instance],
			Healthy:    m.healthStatus[instance],
			// Copied so the snapshot stays safe to encode after the
			// lock is released while recording continues.
			StatusCodes: maps.Clone(m.statusCodes[instance]),
		}

		durations := m.responseTimes[instance]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			im.AvgResponse = average(sorted)
			im.P50Response = percentile(sorted, 0.50)
			im.P95Response = percentile(sorted, 0.95)
			im.P99Response = percentile(sorted, 0.99)
		}

		snap.Instances[instance] = im
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
