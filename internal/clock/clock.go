// Package clock provides the periodic tick source that drives workout sessions.
//
// Production code uses [Real]. Tests use [Manual], which only moves when told to and delivers ticks
// synchronously so that engine transitions can be asserted without wall-clock waits.
package clock

import "time"

// Clock reports the current time and schedules periodic callbacks.
// Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time
	// Every calls onTick once per interval until the returned Ticker is stopped. Calls of one Ticker never
	// overlap, and intervals that elapse while onTick is still running are dropped rather than caught up.
	Every(interval time.Duration, onTick func()) Ticker
}

// Ticker is a handle to a periodic callback started with [Clock.Every].
type Ticker interface {
	// Stop cancels the ticker. It does not wait for an in-flight onTick and may be called from within onTick.
	// Calling Stop more than once is a no-op.
	Stop()
}
