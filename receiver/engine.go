// Package receiver is the top-level orchestrator: it ties timebase, radio,
// bind, hop, servo and operator-I/O together into the fixed
// tick→button→bind→receive→led foreground loop of original_source's
// process_receiver, the direct Go analogue of the firmware's main loop.
package receiver

import (
	"context"
	"sync/atomic"

	"github.com/hk310/rc-receiver/internal/bind"
	"github.com/hk310/rc-receiver/internal/button"
	"github.com/hk310/rc-receiver/internal/hop"
	"github.com/hk310/rc-receiver/internal/led"
	"github.com/hk310/rc-receiver/internal/servo"
	"github.com/hk310/rc-receiver/internal/timebase"
	"github.com/hk310/rc-receiver/logx"
	"github.com/hk310/rc-receiver/radio"
	"github.com/hk310/rc-receiver/storage"
)

const payloadSize = 10

// Option configures optional Engine behavior beyond Config, following the
// functional-options pattern used elsewhere in the pack for optional,
// rarely-set collaborators.
type Option func(*Engine)

// WithAuxDecoder installs a hook invoked with payload bytes 6 and 9 of
// every decoded stick-data packet. It exercises original_source's
// commented-out "hijack channel 3" extension point without enabling any
// decoding by default: no hook means the bytes are read off the air and
// discarded, exactly as today's firmware does.
func WithAuxDecoder(fn func(byte6, byte9 byte)) Option {
	return func(e *Engine) { e.auxDecoder = fn }
}

// WithISPHook installs the callback invoked when the bind button is held
// past the ISP timeout. The original firmware calls invoke_ISP() and never
// returns; the hook is given the same "never returns" contract, so a nil
// hook (the default) simply does nothing and reception continues.
func WithISPHook(fn func()) Option {
	return func(e *Engine) { e.ispHook = fn }
}

// Engine is the consolidated receive/hop/bind/operator-I/O orchestrator
// (Design Notes §9: "consolidate into one owned Receiver value" rather
// than scattering global state the way original_source does).
type Engine struct {
	facade radio.Facade
	store  storage.Storage
	sink   servo.Sink
	button button.Reader
	ledOut led.Output

	cfg Config

	bind      *bind.Machine
	hop       hop.Cursor
	hopTimer  *timebase.HopTimer
	led       *led.Driver
	buttonFSM button.Button

	irq     atomic.Bool
	sysTick timebase.SysTick

	failsafeTimer timebase.Countdown
	failsafe      [servo.NumberOfChannels]uint16
	channels      [servo.NumberOfChannels]uint16

	modelAddress        [5]byte
	successfulStickData bool

	payload [payloadSize]byte

	auxDecoder func(byte6, byte9 byte)
	ispHook    func()
}

// NewEngine wires facade, store, sink, buttonReader and ledOut into a
// ready-to-run Engine, loading any previously bound record from store and
// resuming reception on it, exactly as init_receiver loads persistent
// storage before the first process_receiver call.
func NewEngine(ctx context.Context, facade radio.Facade, store storage.Storage, sink servo.Sink, buttonReader button.Reader, ledOut led.Output, clock timebase.Clock, cfg Config, opts ...Option) (*Engine, error) {
	if facade == nil || store == nil || sink == nil || buttonReader == nil || ledOut == nil {
		return nil, ErrNotConfigured
	}

	e := &Engine{
		facade:   facade,
		store:    store,
		sink:     sink,
		button:   buttonReader,
		ledOut:   ledOut,
		cfg:      withDefaults(cfg),
		bind:     bind.NewMachine(facade, store),
		hopTimer: timebase.NewHopTimer(clock),
		led:      led.New(ledOut),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.initializeFailsafe()

	rec, present, err := store.Load(ctx)
	if err != nil {
		logx.Get().Error("receiver: failed to load bind record, starting unbound")
	}
	if present {
		e.modelAddress = rec.Address
		e.hop.Reset(rec.HopTable)
	}

	e.restartPacketReceiving()
	e.led.SetMode(led.Idle)

	return e, nil
}

func (e *Engine) initializeFailsafe() {
	e.failsafe = e.cfg.FailsafeMicroseconds
	e.failsafeTimer.Reload(timebase.FailsafeTimeoutTicks)
}

// NotifyIRQ marks that the radio's RX-data-ready interrupt fired. Called
// from an IRQ-watcher goroutine (or a hardware ISR callback on embedded
// builds); coalesced, set-wins, like every other foreground flag (§5).
func (e *Engine) NotifyIRQ() { e.irq.Store(true) }

// NotifySysTick marks that one system-tick period elapsed. Called from a
// periodic timer goroutine or a hardware systick ISR.
func (e *Engine) NotifySysTick() { e.sysTick.Fire() }

// RequestBind marks that the operator asked to (re)bind, bypassing the
// physical button sampling.
func (e *Engine) RequestBind() { e.bind.RequestBind() }

// Tick runs one foreground iteration in the fixed order tick → button →
// bind → receive → led, the direct analogue of process_receiver.
func (e *Engine) Tick(ctx context.Context) {
	ticked := e.sysTick.TestAndClear()
	if ticked {
		e.failsafeTimer.Tick()
		e.bind.DecrementTimer()
		e.buttonFSM.DecrementTimer()
	}

	switch e.buttonFSM.Sample(e.button.Pressed()) {
	case button.EventBindRequested:
		e.bind.RequestBind()
	case button.EventIspTimeout:
		if e.ispHook != nil {
			e.ispHook()
		}
	}

	irqFired := e.irq.Swap(false)

	outcome, rec := e.bind.Process(ctx, irqFired)
	switch outcome {
	case bind.OutcomeStarted:
		// Binding just started: the outgoing owner of irqFired (this
		// tick's bind.Process call) never inspected it, so a pending
		// interrupt must be put back for the next tick's bind.Process to
		// see, matching process_binding's early-return shape, which never
		// touches rf_int_fired on the "just requested" branch.
		if irqFired {
			e.irq.Store(true)
		}
		e.led.SetMode(led.Binding)
	case bind.OutcomeCommitted:
		e.modelAddress = rec.Address
		e.hop.Reset(rec.HopTable)
		e.failsafeTimer.Reload(timebase.FailsafeTimeoutTicks)
		e.restartPacketReceiving()
		e.led.SetMode(led.Idle)
		irqFired = false
	case bind.OutcomeTimedOut:
		e.failsafeTimer.Reload(timebase.FailsafeTimeoutTicks)
		e.restartPacketReceiving()
		e.led.SetMode(led.Idle)
		irqFired = false
	}

	e.processReceiving(irqFired)

	if ticked {
		e.led.Tick()
	}
}

// processReceiving is the direct analogue of original_source's
// process_receiving: failsafe substitution, hop-timer handling, then
// payload dispatch. A no-op while binding owns the radio.
func (e *Engine) processReceiving(irqFired bool) {
	if e.bind.Active() {
		return
	}

	if e.successfulStickData && e.failsafeTimer.Expired() {
		e.channels = e.failsafe
		e.publishChannels()
		e.led.SetMode(led.Failsafe)
	}

	if e.hopTimer.TestAndClear() {
		if e.hop.Miss() {
			e.restartPacketReceiving()
		} else {
			e.facade.ClearCE()
			e.hop.Hop()
			e.facade.SetChannel(e.hop.Channel())
			e.facade.SetCE()
		}
	}

	if !irqFired {
		return
	}

	// A spurious IRQ with nothing in the FIFO stops here instead of
	// unconditionally restarting the hop timer and re-dispatching the
	// stale payload byte, a deliberate divergence from the original C.
	if !drainLastPayload(e.facade, e.payload[:]) {
		return
	}

	e.hopTimer.Restart()
	e.hop.ResetMissCount()

	switch e.payload[7] {
	case 0x55:
		e.handleStickData()
	case 0xaa:
		e.handleFailsafeData()
	}
}

// handleStickData decodes the three live channels and publishes them,
// matching the payload[7] == 0x55 branch of process_receiving.
func (e *Engine) handleStickData() {
	e.channels[0] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 0))
	e.channels[1] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 2))
	e.channels[2] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 4))
	e.publishChannels()

	if e.auxDecoder != nil {
		e.auxDecoder(e.payload[6], e.payload[9])
	}

	// The hop timer is already armed by the unconditional Restart above;
	// original_source's own "start the timer if this is the first packet"
	// branch is redundant with its unconditional restart_hop_timer call
	// just before this switch, so it is not replicated here.
	e.successfulStickData = true

	e.failsafeTimer.Reload(timebase.FailsafeTimeoutTicks)
	e.led.SetMode(led.Receiving)
}

// handleFailsafeData updates the failsafe substitution values the
// transmitter wants applied on link loss, matching the payload[7] == 0xaa
// branch.
func (e *Engine) handleFailsafeData() {
	switch e.payload[8] {
	case 0x5a:
		e.failsafe[0] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 0))
		e.failsafe[1] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 2))
		e.failsafe[2] = servo.ToMicroseconds(servo.DecodeLE16(e.payload[:], 4))
	default:
		e.initializeFailsafe()
	}
}

// publishChannels writes channels 0..2 to the sink; the reserved channel 3
// is never published.
func (e *Engine) publishChannels() {
	for i, us := range e.channels[:3] {
		e.sink.SetPulse(i, us)
	}
}

// restartPacketReceiving retunes the radio back to the model's bound
// channel/address and rewinds the hop cursor, the direct analogue of
// original_source's restart_packet_receiving.
func (e *Engine) restartPacketReceiving() {
	e.hopTimer.Stop()
	e.facade.ClearCE()
	e.hop.Rewind()
	e.facade.SetRxAddress(e.modelAddress)
	e.facade.SetChannel(e.hop.Channel())
	e.facade.FlushRXFIFO()
	e.facade.ClearIRQ()
	e.irq.Store(false)
	e.facade.SetCE()
}

// drainLastPayload reads every payload currently buffered in the radio's
// FIFO into buf, keeping only the last one, then clears the IRQ. Shared
// shape with internal/bind's helper of the same name: the IRQ must be
// cleared only after the FIFO has been fully drained (§5).
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
