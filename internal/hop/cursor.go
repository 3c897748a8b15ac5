// Package hop tracks the frequency-hopping cursor over a 20-channel hop
// table: which channel is current, and how many hop periods have elapsed
// without a packet arriving (§4.4).
package hop

import "github.com/hk310/rc-receiver/internal/timebase"

// Cursor is the HopCursor entity of §3: a position in a fixed-size hop
// table plus a consecutive-miss counter. A received packet never moves
// the channel by itself (the transmitter keeps retransmitting on the
// current channel within a hop window); only a hop-timer expiration
// without a packet advances it, mirroring original_source's
// process_receiving: hop_index only changes in the perform_hop_requested
// branch, never on a successful payload.
type Cursor struct {
	table     [timebase.NumberOfHopChannels]byte
	index     int
	missCount int
}

// Reset loads a new hop table (typically from a freshly committed
// storage.BindRecord) and rewinds to channel 0 with a clean miss count.
func (c *Cursor) Reset(table [timebase.NumberOfHopChannels]byte) {
	c.table = table
	c.Rewind()
}

// Rewind returns to channel 0 with a clean miss count without changing
// the table, as restart_packet_receiving does on every resync.
func (c *Cursor) Rewind() {
	c.index = 0
	c.missCount = 0
}

// Channel returns the hop-table entry the cursor currently points at.
func (c *Cursor) Channel() byte { return c.table[c.index] }

// ResetMissCount clears the consecutive-miss count without moving the
// channel. Call this when a packet is received on the current channel,
// matching restart_hop_timer's `hops_without_packet = 0`.
func (c *Cursor) ResetMissCount() { c.missCount = 0 }

// Miss records one hop period elapsing without a packet and reports
// whether the miss count now exceeds MaxHopWithoutPacket, meaning the
// caller must perform a full resync rather than a single hop.
func (c *Cursor) Miss() (exceeded bool) {
	c.missCount++
	return c.missCount > timebase.MaxHopWithoutPacket
}

// Hop moves to the next channel in the table, wrapping modulo its size.
// Call this on a hop-timer expiration that did not exceed the miss
// threshold.
func (c *Cursor) Hop() {
	c.index = (c.index + 1) % len(c.table)
}

// MissCount reports the current consecutive-miss count, for tests and
// diagnostics.
func (c *Cursor) MissCount() int { return c.missCount }
