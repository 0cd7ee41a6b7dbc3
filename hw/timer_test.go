package hw

import (
	"testing"
)

func TestTimerBasicCount(t *testing.T) {
	ts := NewTimers(NewInterruptCtrl())
	tm := &ts.Timer[0]

	tm.CNTL.Write16(0x0000)  // reload
	tm.CNTH.Write16(0x0080)  // enable, prescaler 1
	ts.Step(100)
	if got := tm.Counter(); got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
}

func TestTimerReadbackIsCounter(t *testing.T) {
	ts := NewTimers(NewInterruptCtrl())
	tm := &ts.Timer[0]

	tm.CNTL.Write16(0x1234) // write sets the reload, not the counter
	if got := tm.CNTL.Read16(); got != 0 {
		t.Errorf("counter readback = %#x, want 0 before enable", got)
	}
	tm.CNTH.Write16(0x0080) // enabling loads the reload
	if got := tm.CNTL.Read16(); got != 0x1234 {
		t.Errorf("counter readback = %#x, want 0x1234 after enable", got)
	}
}

func TestTimerPrescaler(t *testing.T) {
	ts := NewTimers(NewInterruptCtrl())
	tm := &ts.Timer[0]

	tm.CNTH.Write16(0x0081) // enable, 64 cycles per tick
	ts.Step(64 * 3)
	if got := tm.Counter(); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}

	// Fractional cycles accumulate across steps.
	ts.Step(32)
	ts.Step(32)
	if got := tm.Counter(); got != 4 {
		t.Errorf("counter = %d, want 4 after split tick", got)
	}
}

func TestTimerOverflowReloadsAndInterrupts(t *testing.T) {
	irq := NewInterruptCtrl()
	ts := NewTimers(irq)
	tm := &ts.Timer[0]

	tm.CNTL.Write16(0xFFF0)
	tm.CNTH.Write16(0x00C0) // enable, irq
	ts.Step(0x10)
	if got := tm.Counter(); got != 0xFFF0 {
		t.Errorf("counter = %#x, want reload 0xfff0 after overflow", got)
	}
	if irq.IF.Value&uint16(IRQTimer0) == 0 {
		t.Error("overflow interrupt not requested")
	}
}

func TestTimerOverflowWithoutIRQBit(t *testing.T) {
	irq := NewInterruptCtrl()
	ts := NewTimers(irq)
	tm := &ts.Timer[0]

	tm.CNTL.Write16(0xFFFF)
	tm.CNTH.Write16(0x0080) // enable, no irq
	ts.Step(1)
	if irq.IF.Value != 0 {
		t.Errorf("IF = %#x, want 0", irq.IF.Value)
	}
}

func TestTimerCascade(t *testing.T) {
	irq := NewInterruptCtrl()
	ts := NewTimers(irq)

	// Timer 0 overflows every cycle; timer 1 counts those overflows.
	ts.Timer[0].CNTL.Write16(0xFFFF)
	ts.Timer[0].CNTH.Write16(0x0080)
	ts.Timer[1].CNTL.Write16(0x0000)
	ts.Timer[1].CNTH.Write16(0x0084) // enable, count-up

	ts.Step(5)
	if got := ts.Timer[1].Counter(); got != 5 {
		t.Errorf("cascade counter = %d, want 5", got)
	}
	// A count-up timer must ignore raw cycles.
	ts.Timer[0].CNTH.Write16(0x0000) // disable the driver
	ts.Step(1000)
	if got := ts.Timer[1].Counter(); got != 5 {
		t.Errorf("cascade counter moved on raw cycles: %d", got)
	}
}

func TestTimerCascadeChainInterrupt(t *testing.T) {
	irq := NewInterruptCtrl()
	ts := NewTimers(irq)

	ts.Timer[0].CNTL.Write16(0xFFFF)
	ts.Timer[0].CNTH.Write16(0x0080)
	ts.Timer[1].CNTL.Write16(0xFFFF)
	ts.Timer[1].CNTH.Write16(0x00C4) // count-up, irq

	ts.Step(1)
	if irq.IF.Value&uint16(IRQTimer1) == 0 {
		t.Error("cascaded overflow interrupt not requested")
	}
}

func TestTimerDisabled(t *testing.T) {
	ts := NewTimers(NewInterruptCtrl())
	ts.Step(1000)
	if got := ts.Timer[0].Counter(); got != 0 {
		t.Errorf("disabled timer moved: %d", got)
	}
}
