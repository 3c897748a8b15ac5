// Command rcreceiversim replays a scripted transmitter packet stream
// through the rc-receiver core entirely in software, for exercising the
// receive/hop/bind/failsafe behavior without any radio hardware.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/hk310/rc-receiver/internal/servo"
	"github.com/hk310/rc-receiver/internal/timebase"
	"github.com/hk310/rc-receiver/logx"
	"github.com/hk310/rc-receiver/radio"
	"github.com/hk310/rc-receiver/receiver"
	"github.com/hk310/rc-receiver/storage"
)

// stickFrame is one simulated transmitter packet: a decoded channel triple
// delivered at system tick number delayTicks, counted from the start of
// the simulation.
type stickFrame struct {
	delayTicks int
	channels   [3]uint16
}

func main() {
	ticks := flag.Int("ticks", 4000, "number of system ticks to simulate")
	dropAfter := flag.Int("drop-after", 0, "stop delivering packets after this many ticks, to exercise failsafe/resync (0 disables)")
	flag.Parse()

	logx.Set(logx.NewStd())

	facade := &radio.FakeFacade{}
	store := storage.NewMemStore()
	store.Seed(storage.BindRecord{
		Address:  [5]byte{0xE7, 0xE7, 0xE7, 0xE7, 0xE7},
		HopTable: sampleHopTable(),
	})
	sink := &servo.LoggingSink{}
	btn := &simButton{}
	ledOut := &simLED{}

	ctx := context.Background()
	engine, err := receiver.NewEngine(ctx, facade, store, sink, btn, ledOut, timebase.RealClock{}, receiver.Config{})
	if err != nil {
		fmt.Println("rcreceiversim: engine init failed:", err)
		return
	}

	script := buildScript()
	nextFrame := 0

	for tick := 0; tick < *ticks; tick++ {
		if *dropAfter > 0 && tick >= *dropAfter {
			engine.NotifySysTick()
			engine.Tick(ctx)
			continue
		}

		for nextFrame < len(script) && script[nextFrame].delayTicks == tick {
			frame := script[nextFrame]
			facade.Deliver(encodeStickPayload(frame.channels))
			engine.NotifyIRQ()
			nextFrame++
		}

		engine.NotifySysTick()
		engine.Tick(ctx)

		if tick%200 == 0 {
			fmt.Printf("tick %4d: ch0=%4d ch1=%4d ch2=%4d led_on=%v\n",
				tick, sink.Last[0], sink.Last[1], sink.Last[2], ledOut.on)
		}
	}
}

func sampleHopTable() [storage.HopTableSize]byte {
	var t [storage.HopTableSize]byte
	for i := range t {
		t[i] = byte(2 + i)
	}
	return t
}

func buildScript() []stickFrame {
	var script []stickFrame
	// 0xF844 decodes to ~1500us, the centered-stick value; 0xF200 would
	// decode to ~2750us instead.
	for t := 0; t < 2000; t += 10 {
		script = append(script, stickFrame{delayTicks: t, channels: [3]uint16{0xF844, 0xF844, 0xF844}})
	}
	return script
}

func encodeStickPayload(ch [3]uint16) []byte {
	buf := make([]byte, 10)
	buf[0], buf[1] = byte(ch[0]), byte(ch[0]>>8)
	buf[2], buf[3] = byte(ch[1]), byte(ch[1]>>8)
	buf[4], buf[5] = byte(ch[2]), byte(ch[2]>>8)
	buf[7] = 0x55
	return buf
}

type simButton struct{}

func (simButton) Pressed() bool { return false }

// simLED only tracks the last commanded level; the sim has no way to read
// back the engine's Mode, so it reports on/off instead of the LED's
// semantic mode.
type simLED struct{ on bool }

func (l *simLED) Set(on bool) { l.on = on }
