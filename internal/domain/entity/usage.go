package entity

import "time"

// ClientUsageRecord is the per-client state the rate limiter keeps.
type ClientUsageRecord struct {
	ClientID    string    `json:"client_id"`
	DailyCount  int       `json:"daily_count"`
	LastRequest time.Time `json:"last_request"`
	DailyReset  time.Time `json:"daily_reset"`
}

type DenialReason string

const (
	ReasonDailyLimit DenialReason = "daily_limit_exceeded"
	ReasonCooldown   DenialReason = "cooldown_active"
)

// Decision is the outcome of an admission check. NextReset is set for daily
// limit denials and NextAllowed for cooldown denials. Remaining is the wait
// until the denial lifts, in both cases.
type Decision struct {
	Admitted    bool
	Reason      DenialReason
	NextReset   time.Time
	NextAllowed time.Time
	Remaining   time.Duration
}

type UsageSnapshot struct {
	DailyCount  int       `json:"dailyCount"`
	DailyLimit  int       `json:"dailyLimit"`
	Remaining   int       `json:"remaining"`
	NextReset   time.Time `json:"nextReset"`
	NextAllowed time.Time `json:"nextAllowed"`
}
