package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze the run date via
// SetClock. Production code uses the real clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for run-date derivation. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time in UTC from the injected clock.
func Now() time.Time {
	return clock.Now().UTC()
}

// RunDate returns the forecast cycle date for the current run, truncated to
// midnight UTC. Input and output artifact names embed this date as YYYYMMDD.
func RunDate() time.Time {
	now := clock.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
