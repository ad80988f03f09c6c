// Package ratelimit observes the Unsplash request quota.
// It reads the X-Ratelimit-Limit and X-Ratelimit-Remaining headers of every
// response and keeps the latest values for reporting. It never blocks or
// delays requests.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyLimit      = "unsplash:rate_limit:limit"
	RedisKeyRemaining  = "unsplash:rate_limit:remaining"
	RedisKeyLastUpdate = "unsplash:rate_limit:last_update"
)

// Response headers carrying the quota.
const (
	HeaderLimit     = "X-Ratelimit-Limit"
	HeaderRemaining = "X-Ratelimit-Remaining"
)

// WarningThreshold is the remaining count below which the quota is reported
// as unhealthy.
const WarningThreshold = 10

// State is the last observed request quota.
type State struct {
	// Limit is the number of requests allowed per hour.
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current hour.
	Remaining int `json:"remaining"`

	// LastUpdate is when the headers were observed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true while Remaining >= WarningThreshold.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// IsExhausted reports whether no requests are left.
func (s *State) IsExhausted() bool {
	return s.Remaining <= 0
}

// ResetAt returns the start of the next hour after LastUpdate, when the
// quota is refilled.
func (s *State) ResetAt() time.Time {
	return s.LastUpdate.Truncate(time.Hour).Add(time.Hour)
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt())
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on Remaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= WarningThreshold
}
