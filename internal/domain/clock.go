package domain

import "github.com/jonboulle/clockwork"

// clock stamps observation dates, ledger entries and archived events.
var clock = clockwork.NewRealClock()

// SetClock replaces the clock behind observation dates and event timestamps.
// nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
