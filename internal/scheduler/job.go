package scheduler

import (
	"context"
	"sync"
	"time"
)

// historySize bounds the results kept per job
const historySize = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job; ctx is cancelled when the scheduler stops
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds first
	// Examples: "0 0 18 * * MON-FRI" (weekdays at 6 PM)
	//           "@daily", "@every 1h"
	Schedule() string
}

// JobResult is one execution of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
}

// History keeps the most recent results of one job, oldest first.
// Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	results []JobResult
	size    int
}

func newHistory(size int) *History {
	return &History{size: size}
}

// Add records r, dropping the oldest result once full
func (h *History) Add(r JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, r)
	if over := len(h.results) - h.size; over > 0 {
		h.results = append(h.results[:0:0], h.results[over:]...)
	}
}

// Latest returns a copy of the newest n results, oldest first.
// n <= 0 returns everything.
func (h *History) Latest(n int) []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.results) {
		n = len(h.results)
	}
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// Last returns the newest result
func (h *History) Last() (JobResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return JobResult{}, false
	}
	return h.results[len(h.results)-1], true
}

// Counts returns total and failed runs
func (h *History) Counts() (total, failed int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.results {
		if !r.Success {
			failed++
		}
	}
	return len(h.results), failed
}

// SuccessRate returns the share of successful runs (0.0 - 1.0)
func (h *History) SuccessRate() float64 {
	total, failed := h.Counts()
	if total == 0 {
		return 0
	}
	return float64(total-failed) / float64(total)
}
