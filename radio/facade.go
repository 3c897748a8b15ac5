// Package radio defines the narrow radio interface the receive/hop engine
// and bind state machine need, insulating them from the register-level
// nRF24L01+ driver the way nrf24.Device insulates callers from raw SPI
// commands.
package radio

// Facade is the subset of radio primitives the rc-receiver core drives:
// set channel, set RX address, enable/disable the receiver, flush the
// FIFO, read one fixed-size payload, clear the IRQ, and query "FIFO
// empty". Auto-ack, retransmission and transmit are never used — every
// received packet is unilateral.
type Facade interface {
	// SetChannel retunes the radio to the given hop channel.
	SetChannel(channel byte) error
	// SetRxAddress rewrites the pipe-0 receive address.
	SetRxAddress(addr [5]byte)
	// ClearCE drops the chip-enable line, halting reception while the
	// channel or address is being changed.
	ClearCE()
	// SetCE raises chip-enable, resuming reception.
	SetCE()
	// FlushRXFIFO discards any buffered payloads.
	FlushRXFIFO()
	// IsRXFIFOEmpty reports whether there is nothing left to read.
	IsRXFIFOEmpty() bool
	// ReadFIFO reads exactly one fixed-size payload into buf. Returns
	// false if the FIFO had nothing to read.
	ReadFIFO(buf []byte) bool
	// ClearIRQ acknowledges the RX-data-ready interrupt. Must be called
	// only after the FIFO has been fully drained.
	ClearIRQ()
}
