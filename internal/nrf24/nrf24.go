package nrf24

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hk310/rc-receiver/logx"
)

var (
	ErrPkg     = errors.New("nrf24")
	ErrTimeout = errors.New("timeout waiting for device")
)

type Address [5]byte

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4])
}

type CRCLength byte

const (
	CRCLengthDisabled CRCLength = iota
	CRCLength8
	CRCLength16
)

// --- NRF24L01 Registers/Commands/Bits ---

const (
	_CONFIG     = 0x00
	_EN_AA      = 0x01
	_EN_RXADDR  = 0x02
	_SETUP_AW   = 0x03
	_RF_CH      = 0x05
	_RF_SETUP   = 0x06
	_STATUS     = 0x07
	_RX_ADDR_P0 = 0x0A
	_RX_PW_P0   = 0x11

	_W_REGISTER   = 0x20
	_R_RX_PAYLOAD = 0x61
	_FLUSH_RX     = 0xE2
	_NOP          = 0xFF
)

const (
	_PWR_UP  = 1 << 1
	_PRIM_RX = 1 << 0
	_RX_DR   = 1 << 6
	_TX_DS   = 1 << 5
	_MAX_RT  = 1 << 4
	_EN_CRC  = 1 << 3
	_CRCO    = 1 << 2
)

// RadioConfig holds the fixed, receiver-only configuration of the radio.
type RadioConfig struct {
	// ChannelNumber determines the radio frequency within the 2.4 GHz ISM
	// band. Range: 0 to 124.
	ChannelNumber byte
	// RxAddr is the address of pipe 0 used to receive messages.
	RxAddr Address
	// PayloadSize is the fixed payload size in bytes. Range: 1 to 32.
	// Defaults to 32 if not provided.
	PayloadSize byte
	// DataRate250kbps selects the 250 kbps air data rate when true,
	// otherwise 1 Mbps is used. The rc-receiver core always sets this true.
	DataRate250kbps bool
	// AddressWidth sets the address width. Range: 3 to 5. Defaults to 5.
	AddressWidth byte
	// CRCLength sets the CRC length. Defaults to CRCLength16.
	CRCLength CRCLength
}

type HardwareConfig struct {
	RadioConfig
	// CE is the Chip Enable pin interface.
	CE Pin
	// IRQ is the Interrupt Request pin interface.
	// Optional. If not provided, polling is used.
	IRQ Pin
}

type Device struct {
	config  HardwareConfig
	conn    SPI
	irqChan chan struct{}
	nrfPort io.Closer
	mu      sync.Mutex
	scratch [33]byte // max payload (32) + 1 status byte
}

// NewWithHardware creates and initializes a new NRF24L01 driver, configured
// for single-pipe, fixed-payload, no-auto-ack reception only: there is no
// transmit path, since the rc-receiver core never sends anything on air.
func NewWithHardware(c HardwareConfig, conn SPI) (*Device, error) {
	if c.PayloadSize == 0 || c.PayloadSize > 32 {
		c.PayloadSize = 32
	}
	if c.AddressWidth == 0 {
		c.AddressWidth = 5
	}
	if c.AddressWidth < 3 || c.AddressWidth > 5 {
		return nil, fmt.Errorf("%w: AddressWidth must be 3, 4, or 5", ErrPkg)
	}
	if c.CRCLength == 0 {
		c.CRCLength = CRCLength16
	}
	if c.CE == nil {
		return nil, fmt.Errorf("%w: CE pin not configured", ErrPkg)
	}
	if c.ChannelNumber > 124 {
		return nil, fmt.Errorf("%w: channel number must be between 0 and 124", ErrPkg)
	}

	dev := &Device{
		config: c,
		conn:   conn,
	}

	logx.Get().Info("nrf24: initializing SPI communication")

	dev.config.CE.Out(Low)

	if dev.config.IRQ != nil {
		dev.config.IRQ.In(PullUp)
		dev.irqChan = make(chan struct{}, 1)
		err := dev.config.IRQ.Watch(FallingEdge, func() {
			select {
			case dev.irqChan <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to watch IRQ pin: %w", ErrPkg, err)
		}
	}

	dev.setCE(false)
	dev.writeRegister(_CONFIG, 0)
	dev.clearStatus()
	dev.flushRX()

	var configValue byte = _PWR_UP | _PRIM_RX
	switch dev.config.CRCLength {
	case CRCLength8:
		configValue |= _EN_CRC
	case CRCLength16:
		configValue |= _EN_CRC | _CRCO
	}
	dev.writeRegister(_CONFIG, configValue)
	time.Sleep(5 * time.Millisecond)

	dev.writeRegister(_RF_CH, dev.config.ChannelNumber)
	dev.writeRegister(_SETUP_AW, dev.config.AddressWidth-2)

	var rfSetup byte
	if dev.config.DataRate250kbps {
		rfSetup |= 1 << 5
	}
	rfSetup |= 3 << 1 // PA max
	dev.writeRegister(_RF_SETUP, rfSetup)

	// No auto-ack, pipe 0 only.
	dev.writeRegister(_EN_AA, 0)
	dev.writeRegister(_EN_RXADDR, 1<<0)

	dev.writeRegisterN(_RX_ADDR_P0, dev.config.RxAddr[:dev.config.AddressWidth])
	dev.writeRegister(_RX_PW_P0, dev.config.PayloadSize)

	readChannel := dev.readRegister(_RF_CH)
	if readChannel != dev.config.ChannelNumber {
		dev.Close()
		return nil, fmt.Errorf("%w: failed to verify connection: check wiring/power", ErrPkg)
	}

	logx.Get().Info("nrf24: initialized and powered up")

	dev.setCE(true)

	return dev, nil
}

func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fmt.Sprintf("NRF24L01(Channel=%d, RxAddr=%s, PayloadSize=%d)",
		d.config.ChannelNumber, d.config.RxAddr, d.config.PayloadSize)
}

// Close powers down the radio, closes the SPI connection, and releases the
// GPIO pins. Concurrent safe.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writeRegister(_CONFIG, d.readRegister(_CONFIG)&^byte(_PWR_UP))
	logx.Get().Info("nrf24: powered down")

	if d.nrfPort != nil {
		if err := d.nrfPort.Close(); err != nil {
			logx.Get().Warn("nrf24: failed to close SPI port")
		}
	}

	if d.config.IRQ != nil {
		d.config.IRQ.Unwatch()
	}

	return nil
}

// --- Core SPI transaction helpers ---

func (d *Device) spiTransfer(n int) (status byte, response []byte) {
	slice := d.scratch[:n]
	if err := d.conn.Tx(slice, slice); err != nil {
		logx.Get().Error("nrf24: SPI transfer error")
		return 0, nil
	}
	if n > 0 {
		return d.scratch[0], d.scratch[1:n]
	}
	return 0, nil
}

func (d *Device) writeRegister(reg, val byte) {
	d.scratch[0] = _W_REGISTER | reg
	d.scratch[1] = val
	d.spiTransfer(2)
}

func (d *Device) readRegister(reg byte) byte {
	d.scratch[0] = reg
	d.scratch[1] = _NOP
	_, data := d.spiTransfer(2)
	if len(data) > 0 {
		return data[0]
	}
	return 0
}

func (d *Device) writeRegisterN(reg byte, data []byte) {
	d.scratch[0] = _W_REGISTER | reg
	copy(d.scratch[1:], data)
	d.spiTransfer(1 + len(data))
}

func (d *Device) flushRX() {
	d.scratch[0] = _FLUSH_RX
	d.spiTransfer(1)
}

func (d *Device) clearStatus() {
	d.writeRegister(_STATUS, _RX_DR|_TX_DS|_MAX_RT)
}

func (d *Device) setCE(level bool) {
	if level {
		d.config.CE.Out(High)
	} else {
		d.config.CE.Out(Low)
	}
}

// --- Facade-level operations used by the rc-receiver core ---

// SetChannel retunes the radio to the given channel (0-124). Concurrent safe.
func (d *Device) SetChannel(channel byte) error {
	if channel > 124 {
		return fmt.Errorf("%w: channel number must be between 0 and 124", ErrPkg)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writeRegister(_RF_CH, channel)
	d.config.ChannelNumber = channel
	return nil
}

// SetRxAddress rewrites the pipe-0 receive address, width bytes wide.
// Concurrent safe.
func (d *Device) SetRxAddress(addr Address, width byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeRegisterN(_RX_ADDR_P0, addr[:width])
}

// SetCE drives the CE pin. Concurrent safe.
func (d *Device) SetCE(level bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setCE(level)
}

// FlushRXFIFO clears the receive FIFO. Concurrent safe.
func (d *Device) FlushRXFIFO() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushRX()
}

// ClearIRQ clears the RX_DR/TX_DS/MAX_RT status bits. Concurrent safe.
func (d *Device) ClearIRQ() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearStatus()
}

// IsRXFIFOEmpty reports whether the receive FIFO has no pending payloads.
// Concurrent safe.
func (d *Device) IsRXFIFOEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ((d.readRegister(_STATUS) >> 1) & 0x07) == 7
}

// ReadFIFO reads exactly one fixed-size payload from the RX FIFO into buf,
// which must be at least PayloadSize bytes. Returns false if the FIFO had
// nothing to read. Concurrent safe.
func (d *Device) ReadFIFO(buf []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ((d.readRegister(_STATUS) >> 1) & 0x07) == 7 {
		return false
	}

	size := int(d.config.PayloadSize)
	d.scratch[0] = _R_RX_PAYLOAD
	for i := 1; i <= size; i++ {
		d.scratch[i] = _NOP
	}
	_, data := d.spiTransfer(size + 1)
	copy(buf, data)
	return true
}

// EnableReceiver powers the radio up into PRIM_RX mode and raises CE.
// Concurrent safe.
func (d *Device) EnableReceiver() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.setCE(false)
	d.writeRegister(_CONFIG, d.readRegister(_CONFIG)|_PWR_UP|_PRIM_RX)
	d.setCE(true)
	time.Sleep(130 * time.Microsecond)
	d.clearStatus()
	d.flushRX()
}

// WaitForInterrupt blocks until the IRQ pin goes low (active) or ctx is
// done. If no IRQ pin was configured, it returns an error immediately;
// callers should fall back to polling IsRXFIFOEmpty/ReadFIFO instead.
// Concurrent safe.
func (d *Device) WaitForInterrupt(ctx context.Context) error {
	if d.config.IRQ == nil {
		return fmt.Errorf("%w: IRQ pin not configured", ErrPkg)
	}

	if d.config.IRQ.Read() == Low {
		return nil
	}

	select {
	case <-d.irqChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HasIRQ reports whether an IRQ pin was configured for interrupt-driven
// reception.
func (d *Device) HasIRQ() bool {
	return d.config.IRQ != nil
}
