package hw

import (
	"advance/hw/hwio"
)

// Key identifies one keypad button as its KEYINPUT bit.
type Key uint16

const (
	KeyA Key = 1 << iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

const keyMask = 0x03FF

// Keypad input register offsets.
const (
	AddrKEYINPUT = 0x130
	AddrKEYCNT   = 0x132
)

// Keypad is the input port: KEYINPUT reads the button state active-low
// (all released at power-up), KEYCNT configures the keypad interrupt.
type Keypad struct {
	Irq *InterruptCtrl

	KEYINPUT hwio.Reg16
	KEYCNT   hwio.Reg16
}

func NewKeypad(irq *InterruptCtrl) *Keypad {
	return &Keypad{
		Irq:      irq,
		KEYINPUT: hwio.Reg16{Name: "KEYINPUT", Value: keyMask, Flags: hwio.ReadOnlyFlag},
		KEYCNT:   hwio.Reg16{Name: "KEYCNT"},
	}
}

func (k *Keypad) InitBus(io *hwio.Bank) {
	io.MapReg16(AddrKEYINPUT, &k.KEYINPUT)
	io.MapReg16(AddrKEYCNT, &k.KEYCNT)
}

// SetKey presses or releases one button and re-evaluates the keypad
// interrupt condition.
func (k *Keypad) SetKey(key Key, pressed bool) {
	if pressed {
		k.KEYINPUT.Value &^= uint16(key)
	} else {
		k.KEYINPUT.Value |= uint16(key)
	}
	k.checkIRQ()
}

func (k *Keypad) Pressed(key Key) bool {
	return k.KEYINPUT.Value&uint16(key) == 0
}

// checkIRQ raises the keypad interrupt per KEYCNT: in AND mode all
// selected keys must be down, in OR mode any of them.
func (k *Keypad) checkIRQ() {
	if k.KEYCNT.Value&0x4000 == 0 {
		return
	}
	sel := k.KEYCNT.Value & keyMask
	down := ^k.KEYINPUT.Value & keyMask

	var hit bool
	if k.KEYCNT.Value&0x8000 != 0 {
		hit = sel != 0 && down&sel == sel
	} else {
		hit = down&sel != 0
	}
	if hit {
		k.Irq.Request(IRQKeypad)
	}
}

func (k *Keypad) Reset() {
	k.KEYINPUT.Value = keyMask
	k.KEYCNT.Value = 0
}
