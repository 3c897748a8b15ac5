// Package nrf24adapter adapts the internal nRF24L01+ driver to the
// rc-receiver core's radio.Facade, applying the one-time configuration
// §4.2 of the specification requires: 2-byte CRC, 250 kbps, pipe 0 only,
// no auto-ack, 5-byte addresses, 10-byte fixed payloads.
package nrf24adapter

import (
	"context"
	"fmt"

	"github.com/hk310/rc-receiver/internal/nrf24"
	"github.com/hk310/rc-receiver/radio"
)

const (
	payloadSize  = 10
	addressWidth = 5
)

// Adapter wires an *nrf24.Device into the radio.Facade interface.
type Adapter struct {
	dev *nrf24.Device
}

var _ radio.Facade = (*Adapter)(nil)

// NewLinux opens an nRF24L01+ over periph.io (SPI + GPIO) on a Linux host,
// configured exactly the way the rc-receiver core requires. Auto-ack and
// retransmission are never enabled: the driver always writes EN_AA as
// zero.
func NewLinux(cePin, irqPin int, spiBusPath string, channel byte, addr [5]byte) (*Adapter, error) {
	dev, err := nrf24.NewLinux(nrf24.LinuxConfig{
		RadioConfig: nrf24.RadioConfig{
			ChannelNumber:   channel,
			RxAddr:          nrf24.Address(addr),
			PayloadSize:     payloadSize,
			DataRate250kbps: true,
			AddressWidth:    addressWidth,
			CRCLength:       nrf24.CRCLength16,
		},
		CEPin:      cePin,
		IRQPin:     irqPin,
		SpiBusPath: spiBusPath,
	})
	if err != nil {
		return nil, fmt.Errorf("nrf24adapter: %w", err)
	}
	return &Adapter{dev: dev}, nil
}

func (a *Adapter) SetChannel(channel byte) error { return a.dev.SetChannel(channel) }

func (a *Adapter) SetRxAddress(addr [5]byte) { a.dev.SetRxAddress(nrf24.Address(addr), addressWidth) }

func (a *Adapter) ClearCE() { a.dev.SetCE(false) }
func (a *Adapter) SetCE()   { a.dev.SetCE(true) }

func (a *Adapter) FlushRXFIFO()        { a.dev.FlushRXFIFO() }
func (a *Adapter) IsRXFIFOEmpty() bool { return a.dev.IsRXFIFOEmpty() }
func (a *Adapter) ReadFIFO(buf []byte) bool {
	return a.dev.ReadFIFO(buf)
}
func (a *Adapter) ClearIRQ() { a.dev.ClearIRQ() }

// WaitForInterrupt blocks until the radio IRQ fires or ctx is done. It
// falls back to reporting "not configured" when no IRQ pin is wired; the
// caller (receiver.Engine's host loop) is expected to poll instead.
func (a *Adapter) WaitForInterrupt(ctx context.Context) error {
	return a.dev.WaitForInterrupt(ctx)
}

// HasIRQ reports whether interrupt-driven reception is available.
func (a *Adapter) HasIRQ() bool { return a.dev.HasIRQ() }

// Close releases the underlying hardware resources.
func (a *Adapter) Close() error { return a.dev.Close() }
