package receiver

import "github.com/hk310/rc-receiver/internal/servo"

// servoPulseCenterUs is the default failsafe pulse width applied to every
// channel until a transmitter-supplied failsafe payload defines otherwise,
// matching
// original_source's SERVO_PULSE_CENTER.
const servoPulseCenterUs = 1500

// Config collects the Engine's tunables. Every field has a documented
// default applied by NewEngine, the same field-level defaulting pattern
// as nrf24.RadioConfig.
type Config struct {
	// FailsafeMicroseconds seeds the per-channel failsafe pulse width
	// used until a transmitter-supplied failsafe payload overrides it.
	// Defaults to servoPulseCenterUs on every channel.
	FailsafeMicroseconds [servo.NumberOfChannels]uint16
}

func defaultConfig() Config {
	var c Config
	for i := range c.FailsafeMicroseconds {
		c.FailsafeMicroseconds[i] = servoPulseCenterUs
	}
	return c
}

// withDefaults fills any zero-valued field of c with its documented
// default, mirroring nrf24.NewWithHardware's defaulting pass.
func withDefaults(c Config) Config {
	def := defaultConfig()
	zero := true
	for _, v := range c.FailsafeMicroseconds {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		c.FailsafeMicroseconds = def.FailsafeMicroseconds
	}
	return c
}
