package timebase

import "time"

// SysTickMillis is the period of the periodic tick signal that drives all
// software countdown timers. A design constant (the spec's
// __SYSTICK_IN_MS), typically 1 ms.
const SysTickMillis = 1

// Tick-unit countdown constants, §4.1.
const (
	FailsafeTimeoutTicks   = 640 / SysTickMillis
	BindTimeoutTicks       = 5000 / SysTickMillis
	IspTimeoutTicks        = 3000 / SysTickMillis
	BlinkTimeFailsafeTicks = 320 / SysTickMillis
	BlinkTimeBindingTicks  = 50 / SysTickMillis
)

// Hop-timer intervals, §4.1. The first expiration after a successful
// packet is shorter than subsequent ones, centering the receive window
// around the transmitter's next burst.
const (
	FirstHopTime = 2500 * time.Microsecond
	HopTime      = 5000 * time.Microsecond
)

// MaxHopWithoutPacket is the number of consecutive missed hops tolerated
// before a full resync is forced.
const MaxHopWithoutPacket = 15

// NumberOfHopChannels is the length of the stored hop table.
const NumberOfHopChannels = 20
