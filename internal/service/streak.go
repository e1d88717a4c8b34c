package service

import "time"

// StreakOutcome describes how a streak evaluation changed the counter.
type StreakOutcome int

const (
	// StreakUnchanged means the login fell inside the same-day window.
	StreakUnchanged StreakOutcome = iota
	// StreakStarted means this is the first recorded login.
	StreakStarted
	// StreakExtended means the login landed in the daily window and the
	// counter advanced.
	StreakExtended
	// StreakReset means the daily window was missed and the counter
	// restarted at one.
	StreakReset
)

// StreakPolicy implements the rolling-window daily streak rule: a login
// between MinGap and MaxGap (inclusive) after the previous one extends the
// streak, a later login resets it, an earlier one leaves it alone. The
// window tolerates timezone drift and slightly early or late daily logins.
type StreakPolicy struct {
	MinGap time.Duration
	MaxGap time.Duration
}

// DefaultStreakPolicy returns the 20-28 hour window used across the API.
func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{MinGap: 20 * time.Hour, MaxGap: 28 * time.Hour}
}

// Apply evaluates a login at now against the previous login and returns the
// new streak value together with what happened.
func (p StreakPolicy) Apply(streak int, lastLogin *time.Time, now time.Time) (int, StreakOutcome) {
	if lastLogin == nil {
		return 1, StreakStarted
	}

	gap := now.Sub(*lastLogin)
	switch {
	case gap < p.MinGap:
		return streak, StreakUnchanged
	case gap <= p.MaxGap:
		return streak + 1, StreakExtended
	default:
		return 1, StreakReset
	}
}
