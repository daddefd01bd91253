package scraper

import (
	"sync"
	"time"
)

// HealthMonitor tracks fetch outcomes per source so the API health
// endpoint can report scraper condition.
type HealthMonitor struct {
	mu      sync.RWMutex
	sources map[string]*sourceHealth

	maxRecentFailures    int
	failureThreshold     float64
	consecutiveThreshold int
}

type sourceHealth struct {
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	consecutiveFailures int
	lastFailureTime     time.Time
	lastSuccessTime     time.Time
	recentFailures      []FailureRecord
}

// FailureRecord represents a single failed fetch
type FailureRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Error     string    `json:"error"`
	URL       string    `json:"url,omitempty"`
}

// HealthStatus reports one source's current condition
type HealthStatus struct {
	Source              string          `json:"source"`
	IsHealthy           bool            `json:"is_healthy"`
	TotalRequests       int64           `json:"total_requests"`
	SuccessfulRequests  int64           `json:"successful_requests"`
	FailedRequests      int64           `json:"failed_requests"`
	SuccessRate         float64         `json:"success_rate"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	LastFailureTime     *time.Time      `json:"last_failure_time,omitempty"`
	LastSuccessTime     *time.Time      `json:"last_success_time,omitempty"`
	RecentFailures      []FailureRecord `json:"recent_failures,omitempty"`
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		sources:              make(map[string]*sourceHealth),
		maxRecentFailures:    50,
		failureThreshold:     0.2,
		consecutiveThreshold: 5,
	}
}

// RecordSuccess records a successful fetch for a source
func (h *HealthMonitor) RecordSuccess(source string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.source(source)
	s.totalRequests++
	s.successfulRequests++
	s.consecutiveFailures = 0
	s.lastSuccessTime = time.Now()
}

// RecordFailure records a failed fetch for a source
func (h *HealthMonitor) RecordFailure(source, errorMsg, url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.source(source)
	s.totalRequests++
	s.failedRequests++
	s.consecutiveFailures++
	s.lastFailureTime = time.Now()

	s.recentFailures = append(s.recentFailures, FailureRecord{
		Timestamp: time.Now(),
		Source:    source,
		Error:     errorMsg,
		URL:       url,
	})
	if len(s.recentFailures) > h.maxRecentFailures {
		s.recentFailures = s.recentFailures[1:]
	}
}

// Status returns the current condition of every tracked source
func (h *HealthMonitor) Status() []HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []HealthStatus
	for name, s := range h.sources {
		status := HealthStatus{
			Source:              name,
			TotalRequests:       s.totalRequests,
			SuccessfulRequests:  s.successfulRequests,
			FailedRequests:      s.failedRequests,
			ConsecutiveFailures: s.consecutiveFailures,
			RecentFailures:      append([]FailureRecord(nil), s.recentFailures...),
		}
		if s.totalRequests > 0 {
			status.SuccessRate = float64(s.successfulRequests) / float64(s.totalRequests)
		}
		if !s.lastFailureTime.IsZero() {
			t := s.lastFailureTime
			status.LastFailureTime = &t
		}
		if !s.lastSuccessTime.IsZero() {
			t := s.lastSuccessTime
			status.LastSuccessTime = &t
		}
		status.IsHealthy = s.consecutiveFailures < h.consecutiveThreshold &&
			(s.totalRequests == 0 || 1-status.SuccessRate <= h.failureThreshold)
		out = append(out, status)
	}
	return out
}

func (h *HealthMonitor) source(name string) *sourceHealth {
	s, ok := h.sources[name]
	if !ok {
		s = &sourceHealth{}
		h.sources[name] = s
	}
	return s
}
