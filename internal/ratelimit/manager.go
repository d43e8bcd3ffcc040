package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config holds pacing configuration for model attempts
type Config struct {
	AttemptPause time.Duration // Fixed pause inserted after a failed attempt
}

// DefaultConfig returns the pacing used when nothing is configured
func DefaultConfig() Config {
	return Config{
		AttemptPause: 2 * time.Second,
	}
}

// Manager paces consecutive model attempts and keeps attempt statistics.
// The pause is fixed; it does not grow with repeated failures.
type Manager struct {
	config Config
	mu     sync.RWMutex

	totalAttempts    int64
	totalFailures    int64
	totalRateLimited int64
	lastFailureTime  time.Time

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager creates a new rate limit manager
func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		sleep:  sleepContext,
	}
}

// GetConfig returns the current pacing configuration
func (m *Manager) GetConfig() Config {
	return m.config
}

// WaitBeforeRetry blocks for the configured pause or until ctx is done
func (m *Manager) WaitBeforeRetry(ctx context.Context) error {
	if m.config.AttemptPause <= 0 {
		return ctx.Err()
	}
	return m.sleep(ctx, m.config.AttemptPause)
}

// RecordSuccess records a successful attempt
func (m *Manager) RecordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalAttempts++
}

// RecordFailure records a failed attempt; rateLimited marks quota errors
func (m *Manager) RecordFailure(rateLimited bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalAttempts++
	m.totalFailures++
	if rateLimited {
		m.totalRateLimited++
	}
	m.lastFailureTime = time.Now()
}

// Statistics contains attempt counters
type Statistics struct {
	TotalAttempts    int64
	TotalFailures    int64
	TotalRateLimited int64
	LastFailureTime  time.Time
}

// GetStatistics returns current attempt statistics
func (m *Manager) GetStatistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Statistics{
		TotalAttempts:    m.totalAttempts,
		TotalFailures:    m.totalFailures,
		TotalRateLimited: m.totalRateLimited,
		LastFailureTime:  m.lastFailureTime,
	}
}

// Reset clears all counters (useful for testing)
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalAttempts = 0
	m.totalFailures = 0
	m.totalRateLimited = 0
	m.lastFailureTime = time.Time{}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
