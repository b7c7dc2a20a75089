package monitoring

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics accumulates in-process request counters. There is no external
// metrics backend in this deployment; the snapshot is served on
// /api/metrics.
type Metrics struct {
	mu              sync.RWMutex
	requestCount    int64
	activeRequests  int64
	errorCount      int64
	statusCodes     map[string]int64
	endpoints       map[string]int64
	startTime       time.Time
	lastRequest     time.Time
	avgRequestMicro int64
	totalDuration   time.Duration
}

// Snapshot is a point-in-time copy of the counters, safe to serialize
// while requests keep flowing.
type Snapshot struct {
	RequestCount    int64            `json:"request_count"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
	AvgRequestMicro int64            `json:"avg_request_duration_us"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := statusClass(c.Writer.Status())
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.activeRequests--
		m.requestCount++
		m.totalDuration += duration
		m.avgRequestMicro = m.totalDuration.Microseconds() / m.requestCount
		m.statusCodes[status]++
		m.endpoints[endpoint]++
		m.lastRequest = time.Now()
		if c.Writer.Status() >= 500 {
			m.errorCount++
		}
		m.mu.Unlock()
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		RequestCount:    m.requestCount,
		ActiveRequests:  m.activeRequests,
		ErrorCount:      m.errorCount,
		StartTime:       m.startTime,
		LastRequest:     m.lastRequest,
		AvgRequestMicro: m.avgRequestMicro,
		StatusCodes:     make(map[string]int64, len(m.statusCodes)),
		Endpoints:       make(map[string]int64, len(m.endpoints)),
	}
	for k, v := range m.statusCodes {
		snap.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		snap.Endpoints[k] = v
	}
	return snap
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, m.Snapshot())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
