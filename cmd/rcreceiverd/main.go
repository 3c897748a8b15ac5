// Command rcreceiverd runs the rc-receiver core against real nRF24L01+
// hardware over periph.io SPI/GPIO, the host daemon counterpart of the
// embedded firmware's main loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/hk310/rc-receiver/internal/servo"
	"github.com/hk310/rc-receiver/internal/timebase"
	"github.com/hk310/rc-receiver/logx"
	"github.com/hk310/rc-receiver/radio/nrf24adapter"
	"github.com/hk310/rc-receiver/receiver"
	"github.com/hk310/rc-receiver/storage"
)

func main() {
	cePin := flag.Int("ce-pin", 25, "BCM GPIO number for the radio's Chip Enable pin")
	irqPin := flag.Int("irq-pin", 24, "BCM GPIO number for the radio's IRQ pin (0 disables interrupt-driven receive)")
	buttonPin := flag.Int("button-pin", 17, "BCM GPIO number for the bind button")
	ledPin := flag.Int("led-pin", 27, "BCM GPIO number for the status LED")
	spiBus := flag.String("spi-bus", "/dev/spidev0.0", "SPI bus device path")
	startChannel := flag.Int("start-channel", 2, "initial hop channel used before a bind record is loaded")
	storePath := flag.String("store", "/var/lib/rcreceiverd/bind.dat", "path to the bind record file")
	flag.Parse()

	logx.Set(logx.NewStd())
	log.SetFlags(0)

	facade, err := nrf24adapter.NewLinux(*cePin, *irqPin, *spiBus, byte(*startChannel), [5]byte{0xE7, 0xE7, 0xE7, 0xE7, 0xE7})
	if err != nil {
		log.Fatalf("rcreceiverd: radio init: %v", err)
	}

	button, err := openButton(*buttonPin)
	if err != nil {
		log.Fatalf("rcreceiverd: %v", err)
	}
	led, err := openLED(*ledPin)
	if err != nil {
		log.Fatalf("rcreceiverd: %v", err)
	}

	store := storage.NewFileStore(*storePath)
	sink := &servo.LoggingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("rcreceiverd: shutting down")
		cancel()
	}()

	engine, err := receiver.NewEngine(ctx, facade, store, sink, button, led, timebase.RealClock{}, receiver.Config{})
	if err != nil {
		log.Fatalf("rcreceiverd: engine init: %v", err)
	}
	defer facade.Close()

	if facade.HasIRQ() {
		go watchIRQ(ctx, facade, engine)
	} else {
		go pollIRQ(ctx, facade, engine)
	}

	fmt.Println("rcreceiverd: running")
	systick := time.NewTicker(timebase.SysTickMillis * time.Millisecond)
	defer systick.Stop()
	for {
		select {
		case <-systick.C:
			engine.NotifySysTick()
			engine.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// watchIRQ blocks on the radio's IRQ pin and notifies the engine on every
// falling edge, the interrupt-driven counterpart of pollIRQ.
func watchIRQ(ctx context.Context, facade interface {
	WaitForInterrupt(ctx context.Context) error
}, engine *receiver.Engine) {
	for {
		if err := facade.WaitForInterrupt(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		engine.NotifyIRQ()
	}
}

// pollIRQ is the software fallback for boards without the IRQ pin wired:
// it checks IsRXFIFOEmpty once a millisecond.
func pollIRQ(ctx context.Context, facade interface {
	IsRXFIFOEmpty() bool
}, engine *receiver.Engine) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if !facade.IsRXFIFOEmpty() {
				engine.NotifyIRQ()
			}
		case <-ctx.Done():
			return
		}
	}
}
