// Package bind implements the 4-phase bind state machine of §4.3: the
// engine listens on a fixed well-known channel/address for a transmitter
// announcing a model address and hop table, validates a rolling checksum,
// and commits the result to persistent storage. Each phase's predicate
// holds the phase unchanged on a mismatch (Design Notes §9) rather than
// regressing or aborting.
package bind

import (
	"context"

	"github.com/hk310/rc-receiver/internal/timebase"
	"github.com/hk310/rc-receiver/logx"
	"github.com/hk310/rc-receiver/radio"
	"github.com/hk310/rc-receiver/storage"
)

// BindChannel and BindAddress are the fixed, well-known channel/address the
// transmitter announces bind packets on (§4.3, §6).
const BindChannel = 0x51

var BindAddress = [5]byte{0x12, 0x23, 0x23, 0x45, 0x78}

type phase int

const (
	phase0 phase = iota
	phase1
	phase2
	phase3
)

// Outcome reports what Process did on this call.
type Outcome int

const (
	// OutcomeNone means bind state did not change in an externally
	// visible way this call.
	OutcomeNone Outcome = iota
	// OutcomeStarted means bind was just entered: the caller should set
	// the LED to Binding mode.
	OutcomeStarted
	// OutcomeCommitted means a full bind record was validated and saved;
	// the caller should resume normal reception on the new record.
	OutcomeCommitted
	// OutcomeTimedOut means the bind timer expired before phase 3
	// committed; the caller should resume normal reception on whatever
	// record was previously in effect, unchanged.
	OutcomeTimedOut
)

// Machine is the bind state machine. It is owned exclusively by the
// foreground; receive processing is a no-op while it is Active.
type Machine struct {
	facade radio.Facade
	store  storage.Storage

	timer     timebase.Countdown
	active    bool
	requested bool

	phase    phase
	checksum uint16
	scratch  [storage.RecordSize]byte
	payload  [10]byte
}

// NewMachine returns a Machine driving facade and committing to store.
func NewMachine(facade radio.Facade, store storage.Storage) *Machine {
	return &Machine{facade: facade, store: store}
}

// RequestBind marks that the operator asked to (re)bind; takes effect on
// the next Process call.
func (m *Machine) RequestBind() { m.requested = true }

// DecrementTimer ticks the bind timeout countdown. Call once per system
// tick, before Process.
func (m *Machine) DecrementTimer() { m.timer.Tick() }

// Active reports whether a bind session is in progress.
func (m *Machine) Active() bool { return m.active }

// Process advances the bind state machine by one foreground iteration.
// irqFired reports whether the radio IRQ flag was set (already
// test-and-cleared by the caller) before this call.
func (m *Machine) Process(ctx context.Context, irqFired bool) (Outcome, storage.BindRecord) {
	if !m.active {
		if !m.requested {
			return OutcomeNone, storage.BindRecord{}
		}
		m.requested = false
		m.active = true
		m.phase = phase0
		m.timer.Reload(timebase.BindTimeoutTicks)

		m.facade.ClearCE()
		m.facade.SetRxAddress(BindAddress)
		m.facade.SetChannel(BindChannel)
		m.facade.SetCE()
		return OutcomeStarted, storage.BindRecord{}
	}

	if m.timer.Expired() {
		m.active = false
		return OutcomeTimedOut, storage.BindRecord{}
	}

	if !irqFired {
		return OutcomeNone, storage.BindRecord{}
	}

	if !drainLastPayload(m.facade, m.payload[:]) {
		return OutcomeNone, storage.BindRecord{}
	}

	switch m.phase {
	case phase0:
		if m.payload[0] == 0xFF && m.payload[1] == 0xAA && m.payload[2] == 0x55 {
			var sum uint16
			for i := 0; i < 5; i++ {
				b := m.payload[3+i]
				m.scratch[i] = b
				sum += uint16(b)
			}
			m.checksum = sum
			m.phase = phase1
		}

	case phase1:
		if m.payload[0] == byte(m.checksum) && m.payload[1] == byte(m.checksum>>8) && m.payload[2] == 0x00 {
			copy(m.scratch[5:12], m.payload[3:10])
			m.phase = phase2
		}

	case phase2:
		if m.payload[0] == byte(m.checksum) && m.payload[1] == byte(m.checksum>>8) && m.payload[2] == 0x01 {
			copy(m.scratch[12:19], m.payload[3:10])
			m.phase = phase3
		}

	case phase3:
		if m.payload[0] == byte(m.checksum) && m.payload[1] == byte(m.checksum>>8) && m.payload[2] == 0x02 {
			copy(m.scratch[19:25], m.payload[3:9])

			rec := storage.ParseBindRecord(m.scratch)
			if err := m.store.Save(ctx, rec); err != nil {
				logx.Get().Error("bind: failed to save bind record, leaving phase latched")
				return OutcomeNone, storage.BindRecord{}
			}

			m.active = false
			return OutcomeCommitted, rec
		}
	}

	return OutcomeNone, storage.BindRecord{}
}

// drainLastPayload reads every payload currently buffered in the radio's
// FIFO into buf, keeping only the last one, then clears the IRQ. The IRQ
// must be cleared only after the FIFO has been fully drained (§5).
func drainLastPayload(facade radio.Facade, buf []byte) bool {
	read := false
	for !facade.IsRXFIFOEmpty() {
		if facade.ReadFIFO(buf) {
			read = true
		}
	}
	facade.ClearIRQ()
	return read
}
