package hw

import (
	"io"

	"advance/emu/log"
)

// Exception vector addresses.
const (
	VectorReset = uint32(0x00000000)
	VectorSWI   = uint32(0x00000008)
	VectorIRQ   = uint32(0x00000018)
)

// Power-up values (the state the BIOS hands over to a cartridge).
const (
	ResetPC = uint32(0x08000000)
	ResetSP = uint32(0x03007F00)
)

// CPU is the ARM7TDMI core: sixteen general registers with per-mode
// banking, the status register, and the two instruction decoders.
//
// r[15] holds the look-ahead program counter while an instruction executes
// (instruction address + 8 in ARM state, + 4 in Thumb state); the
// architectural address of the next instruction lives in pc. PC-relative
// operations read r15 and get the prefetch-adjusted value the silicon
// would produce.
type CPU struct {
	Bus *Bus
	Irq *InterruptCtrl

	r     [16]uint32
	cpsr  PSR
	banks RegisterBanks

	pc       uint32
	branched bool
	halted   bool

	Cycles int64

	// Policy for software-interrupt numbers with no built-in handler
	// when no BIOS image is loaded.
	SWIFallback SWIFallback

	tracer *tracer
}

func NewCPU(bus *Bus, irq *InterruptCtrl) *CPU {
	c := &CPU{
		Bus: bus,
		Irq: irq,
	}
	c.Reset()
	return c
}

// Reset puts the core into the post-BIOS power-up state: System mode, ARM
// state, all general registers and banks cleared, stack at the top of
// IWRAM and execution starting at the cartridge entry point.
func (c *CPU) Reset() {
	c.r = [16]uint32{}
	c.banks.reset()
	c.cpsr = PSR(ModeSystem) | FlagF
	c.r[13] = ResetSP
	c.r[14] = ResetPC
	c.pc = ResetPC
	c.branched = false
	c.halted = false
	c.Cycles = 0
}

// fetch width of the current instruction set, in bytes.
func (c *CPU) isize() uint32 {
	if c.cpsr.Thumb() {
		return 2
	}
	return 4
}

// Step executes exactly one instruction and returns its cycle count.
// A pending enabled interrupt is taken first, before decode; it also wakes
// the core from halt.
func (c *CPU) Step() int {
	if flag, ok := c.Irq.Pending(); ok {
		if !c.cpsr.I() {
			c.halted = false
			c.TakeInterrupt(flag)
		}
	}
	if c.halted {
		return 1
	}

	isize := c.isize()
	instrAddr := c.pc &^ (isize - 1)
	c.r[15] = instrAddr + 2*isize
	c.branched = false

	var cycles int
	if c.cpsr.Thumb() {
		cycles = c.stepThumb(instrAddr)
	} else {
		cycles = c.stepARM(instrAddr)
	}

	if !c.branched {
		c.pc = instrAddr + isize
	}
	c.Cycles += int64(cycles)
	return cycles
}

// TakeInterrupt runs the hardware interrupt entry sequence: CPSR is saved
// into the IRQ bank, the core switches to IRQ mode and ARM state with
// further IRQs masked, the link register receives the look-ahead PC minus
// 4, and execution resumes at the interrupt vector. The controller clears
// the taken request and drops the master enable until the handler returns.
func (c *CPU) TakeInterrupt(flag IRQFlag) {
	lr := c.pc + 2*c.isize() - 4
	c.enterException(ModeIRQ, VectorIRQ, lr)
	c.Irq.Enter(flag)

	log.ModCPU.DebugZ("interrupt taken").
		Hex16("flag", uint16(flag)).
		Hex32("lr", lr).
		End()
}

func (c *CPU) enterException(mode CPUMode, vector, lr uint32) {
	old := c.cpsr
	c.setMode(mode)
	c.banks.SPSR[mode.bank()] = old
	c.r[14] = lr
	c.cpsr.SetI(true)
	c.cpsr.SetThumb(false)
	c.writePC(vector)
}

// setMode switches the processor mode, swapping the banked registers.
// The flag and control bits of the CPSR are unaffected.
func (c *CPU) setMode(mode CPUMode) {
	old := c.cpsr.Mode()
	if old == mode {
		return
	}
	c.banks.swap(&c.r, old, mode)
	c.cpsr.SetMode(mode)
}

// setCPSR performs a full status register write, including a possible mode
// change. Leaving IRQ mode this way is the return-from-handler idiom and
// completes the controller handshake.
func (c *CPU) setCPSR(v PSR) {
	old := c.cpsr.Mode()
	mode := ModeFromBits(uint32(v))
	c.banks.swap(&c.r, old, mode)
	c.cpsr = v
	c.cpsr.SetMode(mode)

	if old == ModeIRQ && mode != ModeIRQ {
		c.Irq.Exit()
	}
}

// restoreCPSR implements exception return: the current mode's SPSR becomes
// the CPSR.
func (c *CPU) restoreCPSR() {
	c.setCPSR(c.spsr())
}

// spsr returns the current mode's saved status register. User and System
// own none; the live CPSR is returned as a safe fallback.
func (c *CPU) spsr() PSR {
	m := c.cpsr.Mode()
	if !m.Exception() {
		return c.cpsr
	}
	return c.banks.SPSR[m.bank()]
}

func (c *CPU) setSPSR(v PSR) {
	m := c.cpsr.Mode()
	if m.Exception() {
		c.banks.SPSR[m.bank()] = v
	}
}

// writePC redirects execution, aligning the target to the width of the
// current instruction set.
func (c *CPU) writePC(v uint32) {
	if c.cpsr.Thumb() {
		c.pc = v &^ 1
	} else {
		c.pc = v &^ 3
	}
	c.branched = true
}

func (c *CPU) reg(n uint32) uint32 {
	return c.r[n&0xF]
}

func (c *CPU) setReg(n, v uint32) {
	n &= 0xF
	if n == 15 {
		c.writePC(v)
		return
	}
	c.r[n] = v
}

func (c *CPU) halt() {
	c.halted = true
}

func (c *CPU) Halted() bool {
	return c.halted
}

/* condition codes */

// checkCond evaluates one of the 15 condition encodings against the
// current flags. Encoding 0xF is reserved and never passes.
func (c *CPU) checkCond(cond uint32) bool {
	p := c.cpsr
	switch cond {
	case 0x0: // EQ
		return p.Z()
	case 0x1: // NE
		return !p.Z()
	case 0x2: // CS
		return p.C()
	case 0x3: // CC
		return !p.C()
	case 0x4: // MI
		return p.N()
	case 0x5: // PL
		return !p.N()
	case 0x6: // VS
		return p.V()
	case 0x7: // VC
		return !p.V()
	case 0x8: // HI
		return p.C() && !p.Z()
	case 0x9: // LS
		return !p.C() || p.Z()
	case 0xA: // GE
		return p.N() == p.V()
	case 0xB: // LT
		return p.N() != p.V()
	case 0xC: // GT
		return !p.Z() && p.N() == p.V()
	case 0xD: // LE
		return p.Z() || p.N() != p.V()
	case 0xE: // AL
		return true
	}
	return false
}

/* arithmetic and the barrel shifter */

func (c *CPU) carryIn() uint32 {
	if c.cpsr.C() {
		return 1
	}
	return 0
}

// addFlags computes a + b + carry. When set is true the flags follow the
// additive rules: C is the unsigned carry-out, V the signed overflow.
// Subtraction goes through here as a + ^b + 1, which makes C the inverted
// borrow and V the overflow of the equivalent addition.
func (c *CPU) addFlags(a, b, carry uint32, set bool) uint32 {
	sum := uint64(a) + uint64(b) + uint64(carry)
	res := uint32(sum)
	if set {
		c.cpsr.setNZ(res)
		c.cpsr.SetC(sum>>32 != 0)
		c.cpsr.SetV((^(a^b)&(a^res))>>31 != 0)
	}
	return res
}

func (c *CPU) subFlags(a, b uint32, set bool) uint32 {
	return c.addFlags(a, ^b, 1, set)
}

const (
	shiftLSL = 0
	shiftLSR = 1
	shiftASR = 2
	shiftROR = 3
)

// barrelShift applies one of the four shift types and returns the result
// together with the shifter carry-out. immForm selects the immediate-amount
// encoding quirks: LSR/ASR #0 mean #32 and ROR #0 is rotate-right-extended
// through the carry. Register-specified amounts of zero leave both the
// value and the carry untouched.
func (c *CPU) barrelShift(val, typ, amount uint32, immForm bool) (uint32, bool) {
	carry := c.cpsr.C()

	switch typ {
	case shiftLSL:
		switch {
		case amount == 0:
			return val, carry
		case amount < 32:
			return val << amount, val>>(32-amount)&1 != 0
		case amount == 32:
			return 0, val&1 != 0
		}
		return 0, false

	case shiftLSR:
		if amount == 0 {
			if !immForm {
				return val, carry
			}
			amount = 32
		}
		switch {
		case amount < 32:
			return val >> amount, val>>(amount-1)&1 != 0
		case amount == 32:
			return 0, val>>31 != 0
		}
		return 0, false

	case shiftASR:
		if amount == 0 {
			if !immForm {
				return val, carry
			}
			amount = 32
		}
		if amount >= 32 {
			if val>>31 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(val) >> amount), int32(val)>>(amount-1)&1 != 0

	case shiftROR:
		if amount == 0 {
			if !immForm {
				return val, carry
			}
			// RRX: one-bit rotate through the carry flag.
			return val>>1 | c.carryIn()<<31, val&1 != 0
		}
		amount &= 31
		if amount == 0 {
			return val, val>>31 != 0
		}
		res := val>>amount | val<<(32-amount)
		return res, res>>31 != 0
	}
	return val, carry
}

/* inspection surface */

// Reg returns the architectural value of register n. R15 reads as the
// address of the next instruction; the look-ahead value exists only while
// a step runs.
func (c *CPU) Reg(n int) uint32 {
	if n == 15 {
		return c.pc
	}
	return c.r[n&0xF]
}

func (c *CPU) SetReg(n int, v uint32) {
	if n == 15 {
		c.SetPC(v)
		return
	}
	c.r[n&0xF] = v
}

func (c *CPU) SP() uint32     { return c.r[13] }
func (c *CPU) SetSP(v uint32) { c.r[13] = v }
func (c *CPU) LR() uint32     { return c.r[14] }
func (c *CPU) SetLR(v uint32) { c.r[14] = v }
func (c *CPU) PC() uint32     { return c.pc }

func (c *CPU) SetPC(v uint32) {
	c.pc = v &^ (c.isize() - 1)
}

func (c *CPU) CPSR() PSR { return c.cpsr }

// SetCPSR is the public full status write; mode field changes switch
// register banks exactly as the MSR instruction would.
func (c *CPU) SetCPSR(v PSR) { c.setCPSR(v) }

// SetFlag sets or clears a single CPSR bit (FlagN..FlagV, FlagT, FlagI).
func (c *CPU) SetFlag(flag PSR, v bool) { c.cpsr.set(flag, v) }

func (c *CPU) Mode() CPUMode { return c.cpsr.Mode() }

// SetMode switches the processor mode, swapping banked registers.
func (c *CPU) SetMode(m CPUMode) { c.setMode(m) }

// SPSR returns the current mode's saved status register (the live CPSR in
// User/System).
func (c *CPU) SPSR() PSR { return c.spsr() }

// SetTraceOutput enables per-instruction execution tracing to w.
func (c *CPU) SetTraceOutput(w io.Writer) {
	c.tracer = newTracer(w)
}
