package nrf24

import (
	"bytes"
	"testing"
)

// --- Mocks ---

type mockPin struct {
	mode  string
	level Level
}

func (m *mockPin) Out(l Level) error {
	m.mode = "output"
	m.level = l
	return nil
}

func (m *mockPin) In(pull Pull) error {
	m.mode = "input"
	return nil
}

func (m *mockPin) Read() Level { return m.level }

func (m *mockPin) Watch(edge Edge, handler func()) error { return nil }
func (m *mockPin) Unwatch() error                        { return nil }

type mockSPI struct {
	tx      []byte
	rxQueue [][]byte
	regs    map[byte][]byte
}

func (m *mockSPI) Tx(w, r []byte) error {
	m.tx = append(m.tx, w...)

	if len(m.rxQueue) > 0 {
		next := m.rxQueue[0]
		m.rxQueue = m.rxQueue[1:]
		n := len(r)
		if len(next) < n {
			n = len(next)
		}
		copy(r, next[:n])
		return nil
	}

	// With nothing queued, act as a register file: a register read returns
	// the last value written to that register, so the init-time RF_CH
	// readback matches.
	if len(w) >= 2 {
		if w[0]&0xE0 == _W_REGISTER {
			if m.regs == nil {
				m.regs = make(map[byte][]byte)
			}
			m.regs[w[0]&0x1F] = append([]byte(nil), w[1:]...)
		} else if w[0] < _W_REGISTER {
			copy(r[1:], m.regs[w[0]])
		}
	}
	return nil
}

func (m *mockSPI) queueRx(data []byte) {
	m.rxQueue = append(m.rxQueue, data)
}

// --- Tests ---

func TestNewWithHardwareInitializesRadio(t *testing.T) {
	spi := &mockSPI{}
	ce := &mockPin{}

	cfg := HardwareConfig{
		RadioConfig: RadioConfig{
			ChannelNumber:   76,
			RxAddr:          Address{0xE7, 0xE7, 0xE7, 0xE7, 0xE7},
			PayloadSize:     10,
			DataRate250kbps: true,
		},
		CE: ce,
	}

	dev, err := NewWithHardware(cfg, spi)
	if err != nil {
		t.Fatalf("NewWithHardware failed: %v", err)
	}

	if ce.mode != "output" {
		t.Errorf("expected CE pin to be output, got %s", ce.mode)
	}

	expectedChannelWrite := []byte{0x20 | _RF_CH, 76}
	if !bytes.Contains(spi.tx, expectedChannelWrite) {
		t.Errorf("expected SPI write to RF_CH, got trace %X", spi.tx)
	}

	if ce.level != High {
		t.Errorf("expected CE high (listening) after init, got %v", ce.level)
	}

	dev.Close()
}

func TestNewWithHardwareRejectsMissingCE(t *testing.T) {
	spi := &mockSPI{}
	_, err := NewWithHardware(HardwareConfig{}, spi)
	if err == nil {
		t.Fatal("expected error for missing CE pin")
	}
}

func TestSetChannelValidatesRange(t *testing.T) {
	spi := &mockSPI{}
	ce := &mockPin{}
	dev, err := NewWithHardware(HardwareConfig{
		RadioConfig: RadioConfig{ChannelNumber: 1, RxAddr: Address{1, 2, 3, 4, 5}, PayloadSize: 10},
		CE:          ce,
	}, spi)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := dev.SetChannel(125); err == nil {
		t.Fatal("expected error for out-of-range channel")
	}
	if err := dev.SetChannel(40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadFIFOReturnsFalseWhenEmpty(t *testing.T) {
	spi := &mockSPI{}
	ce := &mockPin{}
	dev, _ := NewWithHardware(HardwareConfig{
		RadioConfig: RadioConfig{ChannelNumber: 1, RxAddr: Address{1, 2, 3, 4, 5}, PayloadSize: 10},
		CE:          ce,
	}, spi)

	// STATUS register with RX_P_NO == 111 (empty FIFO sentinel).
	spi.queueRx([]byte{0, 0x0E})

	buf := make([]byte, 10)
	if dev.ReadFIFO(buf) {
		t.Fatal("expected ReadFIFO to report empty FIFO")
	}
}
