package timebase

import (
	"testing"
	"time"
)

// fakeClock lets tests fire scheduled callbacks deterministically instead
// of sleeping on the real wall clock.
type fakeClock struct {
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool                 { t.stopped = true; return true }
func (t *fakeTimer) Reset(d time.Duration) bool { t.d = d; t.stopped = false; return true }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) StopResetter {
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// fireOldest invokes and removes the earliest-scheduled non-stopped timer.
func (c *fakeClock) fireOldest() {
	for i, t := range c.pending {
		if t.stopped {
			continue
		}
		c.pending = append(c.pending[:i], c.pending[i+1:]...)
		t.f()
		return
	}
}

func TestHopTimerRestartThenFires(t *testing.T) {
	clock := &fakeClock{}
	ht := NewHopTimer(clock)

	ht.Restart()
	if ht.TestAndClear() {
		t.Fatal("should not have fired yet")
	}

	clock.fireOldest() // first expiration, at FirstHopTime
	if !ht.TestAndClear() {
		t.Fatal("expected hop requested after first expiration")
	}
	if ht.TestAndClear() {
		t.Fatal("TestAndClear should clear the flag")
	}

	clock.fireOldest() // second expiration, at HopTime
	if !ht.TestAndClear() {
		t.Fatal("expected hop requested after second expiration")
	}
}

func TestHopTimerStopSuppressesPendingFire(t *testing.T) {
	clock := &fakeClock{}
	ht := NewHopTimer(clock)

	ht.Restart()
	ht.Stop()

	// A timer that already fired concurrently with Stop must not set the
	// flag: its generation no longer matches.
	if len(clock.pending) != 1 {
		t.Fatalf("expected one scheduled timer, got %d", len(clock.pending))
	}
	clock.pending[0].f()
	if ht.TestAndClear() {
		t.Fatal("stale timer fire must not set the flag after Stop")
	}
}

func TestHopTimerRestartInvalidatesPriorChain(t *testing.T) {
	clock := &fakeClock{}
	ht := NewHopTimer(clock)

	ht.Restart()
	stale := clock.pending[0]

	ht.Restart()
	stale.f() // simulate the old timer's callback racing with the restart

	if ht.TestAndClear() {
		t.Fatal("stale generation's fire must not set the flag")
	}
}

func TestCountdownExpiresAndStaysAtZero(t *testing.T) {
	var c Countdown
	c.Reload(3)

	for i := 0; i < 3; i++ {
		if c.Expired() {
			t.Fatalf("expired too early at tick %d", i)
		}
		c.Tick()
	}
	if !c.Expired() {
		t.Fatal("expected expired after 3 ticks")
	}
	c.Tick()
	if !c.Expired() {
		t.Fatal("countdown must remain expired until reloaded")
	}
}

func TestSysTickFireAndClear(t *testing.T) {
	var s SysTick
	if s.TestAndClear() {
		t.Fatal("should start clear")
	}
	s.Fire()
	if !s.TestAndClear() {
		t.Fatal("expected tick to be set")
	}
	if s.TestAndClear() {
		t.Fatal("TestAndClear should clear the flag")
	}
}
