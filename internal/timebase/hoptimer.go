package timebase

import (
	"sync"
	"sync/atomic"
)

// HopTimer is the one-shot-then-periodic hop timer of §4.1: after
// Restart, the first expiration happens FirstHopTime later, and every
// expiration after that happens HopTime later, until Stop or the next
// Restart. Each expiration sets the "perform hop" flag, read and cleared
// by the foreground with TestAndClear — the same set-wins, read-and-clear
// contract as the radio-IRQ and systick flags (spec §5).
type HopTimer struct {
	clock Clock

	mu         sync.Mutex
	timer      StopResetter
	generation uint64

	requested atomic.Bool
}

// NewHopTimer returns a stopped HopTimer driven by clock.
func NewHopTimer(clock Clock) *HopTimer {
	return &HopTimer{clock: clock}
}

// Restart re-arms the timer: the next expiration fires after FirstHopTime,
// and every one after that fires every HopTime. Any pending "perform hop"
// request is cleared.
func (h *HopTimer) Restart() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.generation++
	gen := h.generation
	if h.timer != nil {
		h.timer.Stop()
	}
	h.requested.Store(false)
	h.timer = h.clock.AfterFunc(FirstHopTime, func() { h.fire(gen) })
}

func (h *HopTimer) fire(gen uint64) {
	h.mu.Lock()
	if gen != h.generation {
		h.mu.Unlock()
		return
	}
	h.timer = h.clock.AfterFunc(HopTime, func() { h.fire(gen) })
	h.mu.Unlock()

	h.requested.Store(true)
}

// Stop halts expirations and clears any pending "perform hop" request.
func (h *HopTimer) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.generation++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.requested.Store(false)
}

// TestAndClear reports whether the timer has expired since the last call
// and clears the flag.
func (h *HopTimer) TestAndClear() bool {
	return h.requested.Swap(false)
}
