package bench

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// Latencies are recorded in microseconds between 1us and 60s.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects results from concurrent workers.
type Metrics struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     int64
	failed    int64
	statuses  map[int]int64
	kinds     map[string]int64
	start     time.Time
	end       time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses:  make(map[int]int64),
		kinds:     make(map[string]int64),
	}
}

func (m *Metrics) Start() { m.start = time.Now() }

func (m *Metrics) Stop() { m.end = time.Now() }

// Record stores one result. status is ignored when err is non-nil; failures
// are counted under their error kind.
func (m *Metrics) Record(duration time.Duration, status int, err error) {
	us := duration.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	_ = m.histogram.RecordValue(us)
	if err != nil {
		m.failed++
		kind, _ := reqerr.KindOf(err)
		m.kinds[kind.String()]++
		return
	}
	m.statuses[status]++
}

// Summary is the aggregated result of a run.
type Summary struct {
	Duration    time.Duration    `json:"duration"`
	Total       int64            `json:"total"`
	Success     int64            `json:"success"`
	Errors      int64            `json:"errors"`
	RPS         float64          `json:"rps"`
	ErrorRate   float64          `json:"errorRate"`
	P50         time.Duration    `json:"p50"`
	P95         time.Duration    `json:"p95"`
	P99         time.Duration    `json:"p99"`
	Min         time.Duration    `json:"min"`
	Max         time.Duration    `json:"max"`
	Mean        time.Duration    `json:"mean"`
	StatusCodes map[int]int64    `json:"statusCodes"`
	ErrorKinds  map[string]int64 `json:"errorKinds,omitempty"`
}

func (m *Metrics) Summary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.end.Sub(m.start)
	if m.end.IsZero() {
		duration = time.Since(m.start)
	}

	s := &Summary{
		Duration:    duration,
		Total:       m.total,
		Success:     m.total - m.failed,
		Errors:      m.failed,
		StatusCodes: make(map[int]int64, len(m.statuses)),
		ErrorKinds:  make(map[string]int64, len(m.kinds)),
	}
	for k, v := range m.statuses {
		s.StatusCodes[k] = v
	}
	for k, v := range m.kinds {
		s.ErrorKinds[k] = v
	}
	if duration > 0 {
		s.RPS = float64(m.total) / duration.Seconds()
	}
	if m.total > 0 {
		s.ErrorRate = float64(m.failed) / float64(m.total)
		s.P50 = micros(m.histogram.ValueAtQuantile(50))
		s.P95 = micros(m.histogram.ValueAtQuantile(95))
		s.P99 = micros(m.histogram.ValueAtQuantile(99))
		s.Min = micros(m.histogram.Min())
		s.Max = micros(m.histogram.Max())
		s.Mean = time.Duration(m.histogram.Mean() * float64(time.Microsecond))
	}
	return s
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// Evaluate checks the summary against t. Only thresholds that are set
// produce a result.
func (s *Summary) Evaluate(t Thresholds) []ThresholdResult {
	var results []ThresholdResult
	latency := func(name string, limit, actual time.Duration) {
		if limit > 0 {
			results = append(results, ThresholdResult{
				Name:     name,
				Passed:   actual <= limit,
				Expected: "<= " + limit.String(),
				Actual:   actual.String(),
			})
		}
	}
	latency("p50", t.P50, s.P50)
	latency("p95", t.P95, s.P95)
	latency("p99", t.P99, s.P99)
	latency("max latency", t.MaxLatency, s.Max)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   s.ErrorRate <= t.ErrorRate,
			Expected: "<= " + formatPercent(t.ErrorRate),
			Actual:   formatPercent(s.ErrorRate),
		})
	}
	if t.MinRPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min RPS",
			Passed:   s.RPS >= t.MinRPS,
			Expected: ">= " + formatFloat(t.MinRPS),
			Actual:   formatFloat(s.RPS),
		})
	}
	return results
}

// SortedStatuses returns the status codes seen, ascending.
func (s *Summary) SortedStatuses() []int {
	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
