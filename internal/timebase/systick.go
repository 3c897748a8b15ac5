package timebase

import (
	"sync/atomic"
	"time"
)

// SysTick is the periodic tick flag set by the platform's system timer
// ISR and read-and-cleared by the foreground, same contract as the radio
// IRQ flag.
type SysTick struct {
	flag atomic.Bool
}

// Fire sets the tick flag. Called from the periodic timer goroutine (the
// host-side stand-in for a hardware systick ISR), or directly by tests.
func (s *SysTick) Fire() { s.flag.Store(true) }

// TestAndClear reports whether a tick arrived since the last call and
// clears the flag.
func (s *SysTick) TestAndClear() bool { return s.flag.Swap(false) }

// Run drives Fire every SysTickMillis until stop is closed. It is the
// host-side analogue of a hardware systick interrupt; embedded builds
// call Fire directly from their own ISR instead of using Run.
func (s *SysTick) Run(stop <-chan struct{}) {
	t := time.NewTicker(SysTickMillis * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Fire()
		case <-stop:
			return
		}
	}
}

// Countdown is a software timer decremented by tick, as described in the
// Timers entity of §3: zero is the "expired" sentinel and stays at zero
// until reloaded. Owned exclusively by the foreground; never touched by
// an ISR.
type Countdown struct {
	remaining uint32
}

// Reload arms the countdown to start at ticks.
func (c *Countdown) Reload(ticks uint32) { c.remaining = ticks }

// Tick decrements the countdown by one tick, if not already expired.
func (c *Countdown) Tick() {
	if c.remaining > 0 {
		c.remaining--
	}
}

// Expired reports whether the countdown has reached zero.
func (c *Countdown) Expired() bool { return c.remaining == 0 }

// Remaining returns the number of ticks left.
func (c *Countdown) Remaining() uint32 { return c.remaining }
