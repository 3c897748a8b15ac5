// Package servo converts decoded stick data into microsecond pulse widths
// and publishes them to three output slots in a fixed order, §4.5.
package servo

import "github.com/hk310/rc-receiver/logx"

const (
	pulseMinUs = 900
	pulseMaxUs = 2100
	stickMin   = 1210
	stickMax   = 2750
)

// NumberOfChannels is the fixed number of servo output slots (§3's
// Channels entity). Only channels 0..2 are ever decoded from the air;
// channel 3 is reserved (§4.4, Design Notes open question) and stays
// unused unless extension support is added.
const NumberOfChannels = 4

// ToMicroseconds maps a raw little-endian stick value to a pulse width in
// microseconds, via the STM32 firmware's linear-map formula (Design Notes
// §9: the newer formula, not the LPC variant's `*3/4` shortcut). The
// arithmetic is carried out exactly as the original 32-bit unsigned
// computation and truncated to 16 bits, reproducing the original
// protocol's behavior bit-for-bit rather than clamping out-of-range input.
func ToMicroseconds(stickdata uint16) uint16 {
	ms := uint32(0xffff) - uint32(stickdata)
	scaled := uint32(pulseMaxUs-pulseMinUs)*ms/uint32(stickMax-stickMin) + pulseMinUs
	offset := uint32(pulseMaxUs-pulseMinUs) * uint32(stickMin) / uint32(stickMax-stickMin)
	return uint16((scaled - offset) & 0xffff)
}

// DecodeLE16 reads a little-endian 16-bit value from payload at the given
// byte offset, as channel data is encoded on the wire (§4.4).
func DecodeLE16(payload []byte, offset int) uint16 {
	return uint16(payload[offset]) | uint16(payload[offset+1])<<8
}

// Sink is the platform boundary for applying a decoded channel value; the
// actual PWM compare-register binding is external per §1. Sink only
// applies a value, it never reads hardware state back.
type Sink interface {
	// SetPulse publishes a pulse width in microseconds for the given
	// channel index (0..2).
	SetPulse(channel int, microseconds uint16)
}

// LoggingSink is a Sink that only logs, used by cmd/rcreceiversim and by
// tests that only care about the decoded values, not real PWM hardware.
type LoggingSink struct {
	Last [NumberOfChannels]uint16
}

func (s *LoggingSink) SetPulse(channel int, microseconds uint16) {
	if channel < 0 || channel >= NumberOfChannels {
		return
	}
	s.Last[channel] = microseconds
	logx.Get().Debug("servo: pulse updated")
}
