package led

import (
	"testing"

	"github.com/hk310/rc-receiver/internal/timebase"
)

type fakeOutput struct {
	on     bool
	setLog []bool
}

func (f *fakeOutput) Set(on bool) {
	f.on = on
	f.setLog = append(f.setLog, on)
}

func TestReceivingIsSolidOn(t *testing.T) {
	out := &fakeOutput{}
	d := New(out)
	d.SetMode(Receiving)

	if !out.on {
		t.Fatal("expected LED on in Receiving mode")
	}
	for i := 0; i < timebase.BlinkTimeFailsafeTicks*2; i++ {
		d.Tick()
	}
	if !out.on {
		t.Fatal("LED must stay on in Receiving mode regardless of ticks")
	}
}

func TestBindingBlinksAtBindingPeriod(t *testing.T) {
	out := &fakeOutput{}
	d := New(out)
	d.SetMode(Binding)

	toggles := 0
	for i := 0; i < timebase.BlinkTimeBindingTicks*4; i++ {
		before := out.on
		d.Tick()
		if out.on != before {
			toggles++
		}
	}
	if toggles < 3 {
		t.Fatalf("expected several toggles over 4 blink periods, got %d", toggles)
	}
}

func TestModeChangeResetsBlinkTimer(t *testing.T) {
	out := &fakeOutput{}
	d := New(out)
	d.SetMode(Idle)

	// Run partway through a blink period.
	for i := 0; i < timebase.BlinkTimeFailsafeTicks-1; i++ {
		d.Tick()
	}

	// Switching to Binding must restart the timer at the new period
	// rather than toggling almost immediately on the leftover count.
	d.SetMode(Binding)
	togglesImmediately := 0
	for i := 0; i < timebase.BlinkTimeBindingTicks-1; i++ {
		before := out.on
		d.Tick()
		if out.on != before {
			togglesImmediately++
		}
	}
	if togglesImmediately != 0 {
		t.Fatalf("mode change must re-initialize the blink timer, got %d early toggles", togglesImmediately)
	}
}

func TestSameModeIsNoOp(t *testing.T) {
	out := &fakeOutput{}
	d := New(out)
	d.SetMode(Idle)
	calls := len(out.setLog)
	d.SetMode(Idle)
	if len(out.setLog) != calls {
		t.Fatal("re-setting the same mode must not touch the output")
	}
}
