// Package ratelimit tracks the upstream request budget of the collection API
// and gates outgoing requests. It monitors the X-RateLimit-Remaining and
// X-RateLimit-Reset headers so all client instances back off before the API
// starts rejecting them.
package ratelimit

import (
	"time"
)

// Redis keys for budget state storage.
const (
	RedisKeyRemaining      = "records:rate_limit:remaining"
	RedisKeyResetTimestamp = "records:rate_limit:reset_timestamp"
	RedisKeyLastUpdate     = "records:rate_limit:last_update"
)

// Thresholds for budget decisions.
const (
	// BudgetThresholdCritical blocks all requests when the remaining budget
	// falls below this value, leaving headroom for in-flight requests.
	BudgetThresholdCritical = 3

	// BudgetThresholdWarning applies throttling when the remaining budget
	// falls below this value.
	BudgetThresholdWarning = 10

	// BudgetThresholdHealthy indicates normal operation.
	// At or above this value no restrictions apply.
	BudgetThresholdHealthy = 25
)

// BudgetState represents the upstream request budget as last reported by the
// collection API. The state is shared across all client instances via Redis.
type BudgetState struct {
	// Remaining is the number of requests left in the current window.
	// Extracted from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the budget window resets.
	// Calculated from the X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last written.
	// Used to detect stale state.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= BudgetThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than the given duration.
func (s *BudgetState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked until the
// window resets.
func (s *BudgetState) NeedsCriticalBlock() bool {
	return s.Remaining < BudgetThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *BudgetState) NeedsThrottling() bool {
	return s.Remaining < BudgetThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the budget window resets.
// Returns 0 if the reset time has already passed.
func (s *BudgetState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth recomputes IsHealthy from the current Remaining value.
func (s *BudgetState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= BudgetThresholdHealthy
}
