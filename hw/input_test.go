package hw

import (
	"testing"
)

func TestKeypadActiveLow(t *testing.T) {
	k := NewKeypad(NewInterruptCtrl())

	if got := k.KEYINPUT.Value; got != keyMask {
		t.Fatalf("KEYINPUT = %#x, want %#x (all released)", got, keyMask)
	}

	k.SetKey(KeyA, true)
	if !k.Pressed(KeyA) {
		t.Error("KeyA not pressed")
	}
	if got := k.KEYINPUT.Value; got != keyMask&^uint16(KeyA) {
		t.Errorf("KEYINPUT = %#x, want bit 0 clear", got)
	}

	k.SetKey(KeyA, false)
	if k.Pressed(KeyA) {
		t.Error("KeyA still pressed after release")
	}
}

func TestKeypadIRQOrMode(t *testing.T) {
	irq := NewInterruptCtrl()
	k := NewKeypad(irq)
	k.KEYCNT.Value = 0x4000 | uint16(KeyA|KeyB) // irq enable, any-of

	k.SetKey(KeyB, true)
	if irq.IF.Value&uint16(IRQKeypad) == 0 {
		t.Error("keypad interrupt not requested in OR mode")
	}
}

func TestKeypadIRQAndMode(t *testing.T) {
	irq := NewInterruptCtrl()
	k := NewKeypad(irq)
	k.KEYCNT.Value = 0xC000 | uint16(KeyA|KeyB) // irq enable, all-of

	k.SetKey(KeyA, true)
	if irq.IF.Value&uint16(IRQKeypad) != 0 {
		t.Fatal("interrupt raised before all selected keys down")
	}
	k.SetKey(KeyB, true)
	if irq.IF.Value&uint16(IRQKeypad) == 0 {
		t.Error("keypad interrupt not requested in AND mode")
	}
}
