// Package storage defines the persistent bind-record contract (§6 of the
// specification) and two implementations: an atomic-rename file backing
// store for real hosts, and an in-memory store for tests.
package storage

import "context"

// AddressWidth and HopTableSize size the 25-byte bind record: a 5-byte
// model address plus a 20-entry hop table of channel numbers (§3).
const (
	AddressWidth = 5
	HopTableSize = 20
	RecordSize   = AddressWidth + HopTableSize
)

// BindRecord is the address + hop table committed by a successful bind.
// It is never partially valid: either Storage.Load reports none was
// present, or it reports a fully-formed record.
type BindRecord struct {
	Address  [AddressWidth]byte
	HopTable [HopTableSize]byte
}

// Bytes serializes the record into the 25-byte wire/storage form used by
// the bind state machine's scratch buffer.
func (r BindRecord) Bytes() [RecordSize]byte {
	var buf [RecordSize]byte
	copy(buf[:AddressWidth], r.Address[:])
	copy(buf[AddressWidth:], r.HopTable[:])
	return buf
}

// ParseBindRecord parses a 25-byte scratch buffer into a BindRecord.
func ParseBindRecord(buf [RecordSize]byte) BindRecord {
	var r BindRecord
	copy(r.Address[:], buf[:AddressWidth])
	copy(r.HopTable[:], buf[AddressWidth:])
	return r
}

// Storage is the persistent bind-record backing store (§6, §9's "expose it
// via a trait/interface" Design Note). Save must be atomic: success or
// no-op, surviving power loss mid-write without corrupting a prior record.
type Storage interface {
	// Load reads the stored bind record, if any. The bool reports whether
	// a well-formed record was present; a false bool with a nil error
	// means "nothing has been bound yet", not a failure.
	Load(ctx context.Context) (BindRecord, bool, error)
	// Save commits rec atomically.
	Save(ctx context.Context, rec BindRecord) error
}
