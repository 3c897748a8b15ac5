package bind

import (
	"context"
	"testing"

	"github.com/hk310/rc-receiver/internal/timebase"
	"github.com/hk310/rc-receiver/radio"
	"github.com/hk310/rc-receiver/storage"
)

func phase0Packet(addr [5]byte) []byte {
	return []byte{0xFF, 0xAA, 0x55, addr[0], addr[1], addr[2], addr[3], addr[4], 0x00, 0x00}
}

func phasePacket(checksum uint16, idx byte, data [7]byte) []byte {
	p := []byte{byte(checksum), byte(checksum >> 8), idx}
	return append(p, data[:]...)
}

// TestBindHappyPath exercises S4: four bind packets in order commit a new
// record and return the engine to normal reception.
func TestBindHappyPath(t *testing.T) {
	facade := &radio.FakeFacade{}
	store := storage.NewMemStore()
	m := NewMachine(facade, store)

	m.RequestBind()
	outcome, _ := m.Process(context.Background(), false)
	if outcome != OutcomeStarted {
		t.Fatalf("expected OutcomeStarted, got %v", outcome)
	}
	if facade.Channel != BindChannel || facade.Address != BindAddress {
		t.Fatalf("expected radio retuned to bind channel/address, got channel=%d addr=%v", facade.Channel, facade.Address)
	}

	addr := [5]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	// checksum = 0xAA+0xBB+0xCC+0xDD+0xEE = 0x03FC, the plain 16-bit sum.
	var checksum uint16
	for _, b := range addr {
		checksum += uint16(b)
	}
	if checksum != 0x03FC {
		t.Fatalf("test fixture checksum wrong: got %#x", checksum)
	}

	hop := make([]byte, 20)
	for i := range hop {
		hop[i] = byte(i + 1)
	}

	facade.Deliver(phase0Packet(addr))
	outcome, _ = m.Process(context.Background(), true)
	if outcome != OutcomeNone {
		t.Fatalf("phase0: got %v, want OutcomeNone", outcome)
	}

	facade.Deliver(phasePacket(checksum, 0x00, [7]byte(hop[0:7])))
	outcome, _ = m.Process(context.Background(), true)
	if outcome != OutcomeNone {
		t.Fatalf("phase1: got %v, want OutcomeNone", outcome)
	}

	facade.Deliver(phasePacket(checksum, 0x01, [7]byte(hop[7:14])))
	outcome, _ = m.Process(context.Background(), true)
	if outcome != OutcomeNone {
		t.Fatalf("phase2: got %v, want OutcomeNone", outcome)
	}

	var last [7]byte
	copy(last[:6], hop[14:20])
	facade.Deliver(phasePacket(checksum, 0x02, last))
	outcome, rec := m.Process(context.Background(), true)
	if outcome != OutcomeCommitted {
		t.Fatalf("phase3: got %v, want OutcomeCommitted", outcome)
	}
	if m.Active() {
		t.Fatal("machine must not be active after commit")
	}
	if rec.Address != addr {
		t.Fatalf("committed address mismatch: got %v want %v", rec.Address, addr)
	}
	if rec.HopTable[:20][0] != hop[0] {
		t.Fatal("committed hop table mismatch")
	}

	got, present, err := store.Load(context.Background())
	if err != nil || !present {
		t.Fatalf("expected committed record in storage: present=%v err=%v", present, err)
	}
	if got != rec {
		t.Fatal("stored record does not match returned record")
	}
}

// TestBindTimeoutPreservesPriorRecord exercises S5: a bind session that
// never reaches phase 3 must not mutate a prior BindRecord (invariant 3).
func TestBindTimeoutPreservesPriorRecord(t *testing.T) {
	facade := &radio.FakeFacade{}
	store := storage.NewMemStore()
	prior := storage.BindRecord{Address: [5]byte{1, 2, 3, 4, 5}}
	store.Seed(prior)

	m := NewMachine(facade, store)
	m.RequestBind()
	m.Process(context.Background(), false)

	for i := 0; i < timebase.BindTimeoutTicks-1; i++ {
		m.DecrementTimer()
		if outcome, _ := m.Process(context.Background(), false); outcome != OutcomeNone {
			t.Fatalf("tick %d: expected OutcomeNone before timeout, got %v", i, outcome)
		}
	}

	m.DecrementTimer()
	outcome, _ := m.Process(context.Background(), false)
	if outcome != OutcomeTimedOut {
		t.Fatalf("expected OutcomeTimedOut, got %v", outcome)
	}
	if m.Active() {
		t.Fatal("machine must not be active after timeout")
	}

	got, present, err := store.Load(context.Background())
	if err != nil || !present {
		t.Fatalf("prior record must remain present: present=%v err=%v", present, err)
	}
	if got != prior {
		t.Fatalf("prior record must be unchanged: got %+v want %+v", got, prior)
	}
}

// TestBindHoldsPhaseOnMismatch asserts a malformed packet at phase 0 does
// not advance the phase, matching the "hold phase on mismatch" rule.
func TestBindHoldsPhaseOnMismatch(t *testing.T) {
	facade := &radio.FakeFacade{}
	store := storage.NewMemStore()
	m := NewMachine(facade, store)

	m.RequestBind()
	m.Process(context.Background(), false)

	facade.Deliver([]byte{0x00, 0x00, 0x00, 0, 0, 0, 0, 0, 0, 0})
	outcome, _ := m.Process(context.Background(), true)
	if outcome != OutcomeNone {
		t.Fatalf("mismatched packet must not change outcome, got %v", outcome)
	}
	if m.phase != phase0 {
		t.Fatalf("mismatched packet must hold phase, got %v", m.phase)
	}
}
