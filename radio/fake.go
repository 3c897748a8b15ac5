package radio

// FakeFacade is an in-memory Facade used by tests and by
// cmd/rcreceiversim, following the mock-pin/mock-SPI style the nrf24
// driver's own tests use rather than a mocking framework.
type FakeFacade struct {
	Channel byte
	Address [5]byte
	CE      bool

	fifo [][]byte
}

// Deliver queues a raw payload as if it had arrived over the air.
func (f *FakeFacade) Deliver(payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.fifo = append(f.fifo, cp)
}

func (f *FakeFacade) SetChannel(channel byte) error {
	f.Channel = channel
	return nil
}

func (f *FakeFacade) SetRxAddress(addr [5]byte) { f.Address = addr }
func (f *FakeFacade) ClearCE()                  { f.CE = false }
func (f *FakeFacade) SetCE()                    { f.CE = true }
func (f *FakeFacade) FlushRXFIFO()              { f.fifo = nil }

func (f *FakeFacade) IsRXFIFOEmpty() bool { return len(f.fifo) == 0 }

func (f *FakeFacade) ReadFIFO(buf []byte) bool {
	if len(f.fifo) == 0 {
		return false
	}
	copy(buf, f.fifo[0])
	f.fifo = f.fifo[1:]
	return true
}

func (f *FakeFacade) ClearIRQ() {}
