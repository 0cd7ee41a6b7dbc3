package hw

import (
	"fmt"

	"advance/emu/log"
)

// SWIFallback selects what happens on a software-interrupt number with no
// built-in handler when no BIOS image is loaded.
type SWIFallback uint8

const (
	// SWIIgnore logs the call and acts as an immediate return.
	SWIIgnore SWIFallback = iota
	// SWIHalt logs the call and stops the core.
	SWIHalt
)

func (f SWIFallback) String() string {
	if f == SWIHalt {
		return "halt"
	}
	return "ignore"
}

func ParseSWIFallback(s string) (SWIFallback, error) {
	switch s {
	case "", "ignore":
		return SWIIgnore, nil
	case "halt":
		return SWIHalt, nil
	}
	return 0, fmt.Errorf("invalid swi fallback policy: %q", s)
}

// softwareInterrupt services a BIOS call. A small set of function numbers
// is interpreted directly, so that cartridges run without a BIOS image.
// Anything else traps into a loaded BIOS at the SWI vector; without one,
// the configured fallback policy applies.
func (c *CPU) softwareInterrupt(fn uint32) {
	switch fn {
	case 0x00:
		c.softReset()

	case 0x01, 0x02, 0x03, 0x04, 0x05:
		// RegisterRamReset, Halt, Stop, IntrWait, VBlankIntrWait.
		// True waiting needs a scheduler this core does not have;
		// these return immediately.

	case 0x06, 0x08:
		// Unsigned 32-bit division: R0/R1 -> quotient R0, remainder R3.
		num, den := c.r[0], c.r[1]
		if den == 0 {
			c.r[0] = 0xFFFFFFFF
			c.r[3] = num
			break
		}
		c.r[0] = num / den
		c.r[3] = num % den

	case 0x0E:
		c.r[0] = isqrt(c.r[0])

	default:
		if c.Bus.HasBIOS() {
			c.enterException(ModeSupervisor, VectorSWI, c.r[15]-c.isize())
			break
		}
		log.ModCPU.WarnZ("unhandled bios call").
			Hex8("fn", uint8(fn)).
			String("policy", c.SWIFallback.String()).
			End()
		if c.SWIFallback == SWIHalt {
			c.halt()
		}
	}
}

// softReset clears the BIOS scratch area at the top of IWRAM and restarts
// execution at the cartridge entry point in ARM state.
func (c *CPU) softReset() {
	for addr := uint32(0x03007E00); addr < 0x03008000; addr += 4 {
		c.Bus.Write32(addr, 0)
	}
	c.setMode(ModeSystem)
	c.r[13] = ResetSP
	c.r[14] = ResetPC
	c.cpsr.SetThumb(false)
	c.writePC(ResetPC)
}

// isqrt is the BIOS integer square root: the largest r with r*r <= v.
func isqrt(v uint32) uint32 {
	var r uint32
	bit := uint32(1) << 30
	for bit > v {
		bit >>= 2
	}
	for bit != 0 {
		if v >= r+bit {
			v -= r + bit
			r = r>>1 + bit
		} else {
			r >>= 1
		}
		bit >>= 2
	}
	return r
}
