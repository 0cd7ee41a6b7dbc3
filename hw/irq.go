package hw

import (
	"math/bits"

	"advance/emu/log"
	"advance/hw/hwio"
)

// IRQFlag identifies one interrupt source, as one bit of the IE/IF
// registers. Lower bits have higher priority.
type IRQFlag uint16

const (
	IRQVBlank IRQFlag = 1 << iota
	IRQHBlank
	IRQVCount
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQTimer3
	IRQSerial
	IRQDMA0
	IRQDMA1
	IRQDMA2
	IRQDMA3
	IRQKeypad
	IRQGamePak
)

// I/O block offsets of the interrupt registers.
const (
	AddrIE  = 0x200
	AddrIF  = 0x202
	AddrIME = 0x208
)

// InterruptCtrl is the interrupt controller: an enable mask (IE), a request
// mask (IF, write-1-to-clear from software) and the master enable (IME).
// Peripherals raise requests through Request; the CPU polls Pending before
// each instruction.
type InterruptCtrl struct {
	IE  hwio.Reg16
	IF  hwio.Reg16
	IME hwio.Reg16

	// Set between Enter and Exit so that a pending interrupt cannot
	// re-enter while the handler runs.
	inHandler bool
}

func NewInterruptCtrl() *InterruptCtrl {
	q := &InterruptCtrl{
		IE:  hwio.Reg16{Name: "IE"},
		IF:  hwio.Reg16{Name: "IF"},
		IME: hwio.Reg16{Name: "IME", RoMask: 0xFFFE},
	}
	q.IF.WriteCb = q.writeIF
	return q
}

// InitBus maps the controller registers into the I/O block.
func (q *InterruptCtrl) InitBus(io *hwio.Bank) {
	io.MapReg16(AddrIE, &q.IE)
	io.MapReg16(AddrIF, &q.IF)
	io.MapReg16(AddrIME, &q.IME)
}

// Software acknowledges interrupts by writing 1s to IF.
func (q *InterruptCtrl) writeIF(old, val uint16) {
	q.IF.Value = old &^ val
}

// Request raises the given interrupt request bits. Called by peripherals
// only; whether the CPU sees them depends on IE and IME.
func (q *InterruptCtrl) Request(flags IRQFlag) {
	if q.IF.Value&uint16(flags) != uint16(flags) {
		log.ModIrq.DebugZ("interrupt requested").
			Hex16("flags", uint16(flags)).
			Hex16("ie", q.IE.Value).
			End()
	}
	q.IF.Value |= uint16(flags)
}

// Pending returns the highest-priority (lowest-numbered) interrupt that is
// both enabled and requested. There is none while the master enable is
// clear or a handler is already running.
func (q *InterruptCtrl) Pending() (IRQFlag, bool) {
	if q.IME.Value&1 == 0 || q.inHandler {
		return 0, false
	}
	p := q.IE.Value & q.IF.Value
	if p == 0 {
		return 0, false
	}
	return IRQFlag(1) << bits.TrailingZeros16(p), true
}

// Enter performs the controller half of the interrupt entry handshake:
// the taken request bit is cleared, the master enable is dropped and the
// in-handler latch set.
func (q *InterruptCtrl) Enter(flag IRQFlag) {
	q.IF.Value &^= uint16(flag)
	q.IME.Value &^= 1
	q.inHandler = true
}

// InHandler reports whether an interrupt handler is currently running.
func (q *InterruptCtrl) InHandler() bool {
	return q.inHandler
}

// Exit restores the master enable when the CPU returns from the handler.
func (q *InterruptCtrl) Exit() {
	q.inHandler = false
	q.IME.Value |= 1
}

func (q *InterruptCtrl) Reset() {
	q.IE.Value = 0
	q.IF.Value = 0
	q.IME.Value = 0
	q.inHandler = false
}
