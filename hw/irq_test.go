package hw

import (
	"testing"

	"advance/hw/hwio"
)

func newTestIOBank(q *InterruptCtrl) *hwio.Bank {
	io := hwio.NewBank("io", 0x400)
	q.InitBus(io)
	return io
}

func TestIRQPendingGating(t *testing.T) {
	q := NewInterruptCtrl()

	q.Request(IRQVBlank)
	if _, ok := q.Pending(); ok {
		t.Fatal("pending with IME clear and IE empty")
	}

	q.IE.Value = uint16(IRQVBlank)
	if _, ok := q.Pending(); ok {
		t.Fatal("pending with IME clear")
	}

	q.IME.Value = 1
	flag, ok := q.Pending()
	if !ok || flag != IRQVBlank {
		t.Fatalf("Pending() = (%#x, %t), want (IRQVBlank, true)", flag, ok)
	}
}

func TestIRQPriority(t *testing.T) {
	q := NewInterruptCtrl()
	q.IME.Value = 1
	q.IE.Value = uint16(IRQVBlank | IRQTimer1 | IRQKeypad)
	q.Request(IRQKeypad)
	q.Request(IRQTimer1)

	// Lowest-numbered request wins.
	if flag, _ := q.Pending(); flag != IRQTimer1 {
		t.Errorf("Pending() = %#x, want IRQTimer1", flag)
	}

	q.Request(IRQVBlank)
	if flag, _ := q.Pending(); flag != IRQVBlank {
		t.Errorf("Pending() = %#x, want IRQVBlank", flag)
	}
}

func TestIRQDisabledSourceStaysPending(t *testing.T) {
	q := NewInterruptCtrl()
	q.IME.Value = 1
	q.Request(IRQSerial)

	if _, ok := q.Pending(); ok {
		t.Fatal("disabled source reported pending")
	}
	// Enabling later delivers the stored request.
	q.IE.Value = uint16(IRQSerial)
	if flag, ok := q.Pending(); !ok || flag != IRQSerial {
		t.Errorf("Pending() = (%#x, %t), want (IRQSerial, true)", flag, ok)
	}
}

func TestIRQWriteOneToClear(t *testing.T) {
	q := NewInterruptCtrl()
	io := newTestIOBank(q)

	q.Request(IRQVBlank | IRQHBlank | IRQTimer0)

	// Acknowledge HBlank only.
	io.Write16(AddrIF, uint16(IRQHBlank))
	if got := q.IF.Value; got != uint16(IRQVBlank|IRQTimer0) {
		t.Errorf("IF = %#x, want VBlank|Timer0", got)
	}

	// A byte-lane acknowledge must not clear bits of the other lane.
	q.Request(IRQKeypad) // bit 12, upper byte
	io.Write8(AddrIF, uint8(IRQVBlank))
	if got := q.IF.Value; got != uint16(IRQTimer0|IRQKeypad) {
		t.Errorf("IF after byte ack = %#x, want Timer0|Keypad", got)
	}
}

func TestIRQEnterExit(t *testing.T) {
	q := NewInterruptCtrl()
	q.IME.Value = 1
	q.IE.Value = uint16(IRQVBlank | IRQHBlank)
	q.Request(IRQVBlank)
	q.Request(IRQHBlank)

	q.Enter(IRQVBlank)
	if q.IF.Value&uint16(IRQVBlank) != 0 {
		t.Error("taken flag not cleared on Enter")
	}
	if q.IF.Value&uint16(IRQHBlank) == 0 {
		t.Error("other request cleared on Enter")
	}
	if _, ok := q.Pending(); ok {
		t.Error("pending while in handler")
	}

	q.Exit()
	if flag, ok := q.Pending(); !ok || flag != IRQHBlank {
		t.Errorf("Pending() after Exit = (%#x, %t), want (IRQHBlank, true)", flag, ok)
	}
}

func TestIRQIMEReadback(t *testing.T) {
	q := NewInterruptCtrl()
	io := newTestIOBank(q)

	// Only bit 0 of IME is writable.
	io.Write16(AddrIME, 0xFFFF)
	if got := io.Read16(AddrIME); got != 1 {
		t.Errorf("IME = %#x, want 1", got)
	}
}
