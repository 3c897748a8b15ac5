package timebase

import "time"

// StopResetter is the subset of *time.Timer's API the hop timer needs.
type StopResetter interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Clock abstracts timer creation so the hop timer and system tick can be
// driven deterministically in tests, the same way internal/nrf24 takes a
// Pin/SPI interface instead of talking to periph.io directly.
type Clock interface {
	AfterFunc(d time.Duration, f func()) StopResetter
}

// RealClock schedules callbacks on the real wall clock via time.AfterFunc.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) StopResetter {
	return realTimer{time.AfterFunc(d, f)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool                   { return r.t.Stop() }
func (r realTimer) Reset(d time.Duration) bool   { return r.t.Reset(d) }
