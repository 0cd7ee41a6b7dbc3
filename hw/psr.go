package hw

import "fmt"

// PSR is an ARM program status register (CPSR or SPSR): condition flags in
// the top nibble, control bits (IRQ/FIQ disable, Thumb state) and the 5-bit
// mode field at the bottom.
type PSR uint32

const (
	FlagT PSR = 1 << 5 // Thumb state
	FlagF PSR = 1 << 6 // FIQ disable
	FlagI PSR = 1 << 7 // IRQ disable
	FlagV PSR = 1 << 28
	FlagC PSR = 1 << 29
	FlagZ PSR = 1 << 30
	FlagN PSR = 1 << 31
)

const psrModeMask PSR = 0x1F

func (p PSR) N() bool     { return p&FlagN != 0 }
func (p PSR) Z() bool     { return p&FlagZ != 0 }
func (p PSR) C() bool     { return p&FlagC != 0 }
func (p PSR) V() bool     { return p&FlagV != 0 }
func (p PSR) Thumb() bool { return p&FlagT != 0 }
func (p PSR) I() bool     { return p&FlagI != 0 }
func (p PSR) F() bool     { return p&FlagF != 0 }

func (p *PSR) set(flag PSR, v bool) {
	if v {
		*p |= flag
	} else {
		*p &^= flag
	}
}

func (p *PSR) SetN(v bool)     { p.set(FlagN, v) }
func (p *PSR) SetZ(v bool)     { p.set(FlagZ, v) }
func (p *PSR) SetC(v bool)     { p.set(FlagC, v) }
func (p *PSR) SetV(v bool)     { p.set(FlagV, v) }
func (p *PSR) SetThumb(v bool) { p.set(FlagT, v) }
func (p *PSR) SetI(v bool)     { p.set(FlagI, v) }
func (p *PSR) SetF(v bool)     { p.set(FlagF, v) }

// setNZ sets the negative and zero flags from res, leaving C and V alone.
func (p *PSR) setNZ(res uint32) {
	p.SetN(res>>31 != 0)
	p.SetZ(res == 0)
}

func (p PSR) Mode() CPUMode {
	return CPUMode(p & psrModeMask)
}

func (p *PSR) SetMode(m CPUMode) {
	*p = (*p &^ psrModeMask) | PSR(m)&psrModeMask
}

func (p PSR) String() string {
	const bits = "nzcvNZCV"

	s := make([]byte, 4, 16)
	for i := 0; i < 4; i++ {
		ibit := (uint32(p) >> (31 - i)) & 1
		s[i] = bits[i+int(4*ibit)]
	}
	if p.I() {
		s = append(s, 'I')
	}
	if p.F() {
		s = append(s, 'F')
	}
	if p.Thumb() {
		s = append(s, 'T')
	}
	return fmt.Sprintf("%s/%s", s, p.Mode())
}
