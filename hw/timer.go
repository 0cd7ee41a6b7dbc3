package hw

import (
	"advance/hw/hwio"
)

// Timer register block offset in I/O space; each timer owns 4 bytes.
const addrTimerBase = 0x100

// prescaler shift per the low two control bits: 1, 64, 256 or 1024 cycles
// per tick.
var timerShifts = [4]uint{0, 6, 8, 10}

// Timer is one of the four 16-bit hardware timers. The counter register
// reads back the live counter but writes to it set the reload value, which
// the counter restarts from on every overflow and when the timer is
// switched on.
type Timer struct {
	CNTL hwio.Reg16
	CNTH hwio.Reg16

	counter uint16
	reload  uint16

	// Unconsumed cycles below the prescaler threshold.
	frac uint32

	shift      uint
	enabled    bool
	countUp    bool
	irqEnabled bool
}

func (t *Timer) initRegs(name string) {
	t.CNTL = hwio.Reg16{Name: name + "CNT_L"}
	t.CNTL.ReadCb = func(uint16) uint16 { return t.counter }
	t.CNTL.WriteCb = func(_, val uint16) {
		t.reload = val
		t.CNTL.Value = val
	}
	t.CNTH = hwio.Reg16{Name: name + "CNT_H"}
	t.CNTH.WriteCb = t.writeControl
}

func (t *Timer) writeControl(old, val uint16) {
	t.CNTH.Value = val
	t.shift = timerShifts[val&3]
	t.countUp = val&0x04 != 0
	t.irqEnabled = val&0x40 != 0

	enable := val&0x80 != 0
	if enable && !t.enabled {
		// Switching on restarts from the reload value.
		t.counter = t.reload
		t.frac = 0
	}
	t.enabled = enable
}

// tick advances the counter by n ticks and returns how many times it
// overflowed, reloading on each overflow.
func (t *Timer) tick(n uint32) int {
	space := 0x10000 - uint32(t.counter)
	if n < space {
		t.counter += uint16(n)
		return 0
	}
	n -= space
	period := 0x10000 - uint32(t.reload)
	t.counter = t.reload + uint16(n%period)
	return 1 + int(n/period)
}

func (t *Timer) Counter() uint16 {
	return t.counter
}

func (t *Timer) reset() {
	t.CNTL.Value = 0
	t.CNTH.Value = 0
	t.counter = 0
	t.reload = 0
	t.frac = 0
	t.shift = 0
	t.enabled = false
	t.countUp = false
	t.irqEnabled = false
}

// Timers is the array of four timers with the cascade wiring: a timer in
// count-up mode ignores its own prescaler and ticks once per overflow of
// the timer below it.
type Timers struct {
	Irq   *InterruptCtrl
	Timer [4]Timer
}

func NewTimers(irq *InterruptCtrl) *Timers {
	ts := &Timers{Irq: irq}
	names := [4]string{"TM0", "TM1", "TM2", "TM3"}
	for i := range ts.Timer {
		ts.Timer[i].initRegs(names[i])
	}
	return ts
}

func (ts *Timers) InitBus(io *hwio.Bank) {
	for i := range ts.Timer {
		io.MapReg16(addrTimerBase+uint32(i)*4, &ts.Timer[i].CNTL)
		io.MapReg16(addrTimerBase+uint32(i)*4+2, &ts.Timer[i].CNTH)
	}
}

func (ts *Timers) Step(cycles int) {
	for i := range ts.Timer {
		t := &ts.Timer[i]
		if !t.enabled || t.countUp {
			continue
		}
		t.frac += uint32(cycles)
		ticks := t.frac >> t.shift
		t.frac &= 1<<t.shift - 1
		if ticks == 0 {
			continue
		}
		ts.overflow(i, t.tick(ticks))
	}
}

// overflow delivers n overflows of timer i: the overflow interrupt, then
// the cascade into a count-up timer above.
func (ts *Timers) overflow(i, n int) {
	if n == 0 {
		return
	}
	t := &ts.Timer[i]
	if t.irqEnabled {
		ts.Irq.Request(IRQTimer0 << i)
	}
	if i == 3 {
		return
	}
	next := &ts.Timer[i+1]
	if next.enabled && next.countUp {
		ts.overflow(i+1, next.tick(uint32(n)))
	}
}

func (ts *Timers) Reset() {
	for i := range ts.Timer {
		ts.Timer[i].reset()
	}
}
