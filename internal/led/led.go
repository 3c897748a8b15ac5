// Package led implements the four-mode status LED driver of §4.6.
package led

import "github.com/hk310/rc-receiver/internal/timebase"

// Mode is one of the four LED indication modes (§3's LedState entity).
type Mode int

const (
	Idle Mode = iota
	Receiving
	Failsafe
	Binding
)

// Output drives the physical LED. Toggling is expressed as a Set call
// with the inverted level, tracked by the Driver rather than delegated to
// the platform, keeping Output a pure sink like servo.Sink.
type Output interface {
	Set(on bool)
}

// Driver tracks the current LED mode and blink cadence. A mode change
// always re-initializes the blink timer (§3 invariant), so switching into
// Binding or back to Idle/Failsafe always gets a full blink period before
// its first toggle.
type Driver struct {
	out Output

	timer       timebase.Countdown
	mode        Mode
	modeLatched bool
	blinking    bool
	reload      uint32
	on          bool
}

// New returns a Driver that writes to out.
func New(out Output) *Driver {
	return &Driver{out: out}
}

// SetMode switches the LED indication mode. A no-op if mode already
// matches the current mode.
func (d *Driver) SetMode(mode Mode) {
	if d.modeLatched && mode == d.mode {
		return
	}
	d.modeLatched = true
	d.mode = mode

	d.on = false
	d.out.Set(false)

	switch mode {
	case Receiving:
		d.blinking = false
		d.on = true
		d.out.Set(true)
	case Binding:
		d.reload = timebase.BlinkTimeBindingTicks
		d.blinking = true
		d.timer.Reload(d.reload)
	default: // Idle, Failsafe
		d.reload = timebase.BlinkTimeFailsafeTicks
		d.blinking = true
		d.timer.Reload(d.reload)
	}
}

// Mode reports the currently selected LED indication mode.
func (d *Driver) Mode() Mode { return d.mode }

// Tick advances the blink timer by one system tick, toggling the LED and
// reloading the timer on expiry while in a blinking mode.
func (d *Driver) Tick() {
	if !d.blinking {
		return
	}
	d.timer.Tick()
	if d.timer.Expired() {
		d.timer.Reload(d.reload)
		d.on = !d.on
		d.out.Set(d.on)
	}
}
