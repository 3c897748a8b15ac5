// Package button implements the bind-button debounce/edge-detect state
// machine of §4.6: a short press-and-release requests bind, a long hold
// requests ISP/recovery entry.
package button

import "github.com/hk310/rc-receiver/internal/timebase"

// Reader samples the physical bind button, already translated from the
// platform's raw active level to a logical "held down" bool.
type Reader interface {
	Pressed() bool
}

// Event is what happened on the latest Sample call.
type Event int

const (
	// EventNone means nothing actionable happened this tick.
	EventNone Event = iota
	// EventBindRequested fires on the RELEASED edge of a short press.
	EventBindRequested
	// EventIspTimeout fires once the button has been held continuously
	// for at least the ISP timeout. The caller must invoke the external
	// ISP entry hook; it never returns.
	EventIspTimeout
)

// Button is a two-edge detector over a single sampled input, ticked once
// per system tick.
type Button struct {
	timer       timebase.Countdown
	ispActive   bool
	prevPressed bool
}

// DecrementTimer ticks the internal ISP countdown. Call this once per
// system tick, before Sample, matching §5's fixed tick→button ordering.
func (b *Button) DecrementTimer() {
	b.timer.Tick()
}

// Sample reports the debounced edge event for the newly-read button
// level. pressed is the logical "button held down" state, already
// translated from the platform's raw active level.
func (b *Button) Sample(pressed bool) Event {
	if b.ispActive && b.timer.Expired() {
		return EventIspTimeout
	}

	if pressed == b.prevPressed {
		return EventNone
	}
	b.prevPressed = pressed

	if pressed {
		b.timer.Reload(timebase.IspTimeoutTicks)
		b.ispActive = true
		return EventNone
	}

	b.ispActive = false
	return EventBindRequested
}
