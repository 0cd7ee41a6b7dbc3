package hwio

import (
	"advance/emu/log"
)

// Bank is a small register window (the GBA I/O block): Reg16s mapped at
// halfword offsets, with plain byte storage backing every offset no device
// claimed, so that software can round-trip unassigned locations.
type Bank struct {
	Name string
	Mask uint32

	regs []*Reg16
	raw  []byte
}

func NewBank(name string, size int) *Bank {
	if size&(size-1) != 0 {
		panic("register bank size is not pow2")
	}
	return &Bank{
		Name: name,
		Mask: uint32(size - 1),
		regs: make([]*Reg16, size/2),
		raw:  make([]byte, size),
	}
}

// MapReg16 attaches reg at the given halfword-aligned offset.
func (b *Bank) MapReg16(off uint32, reg *Reg16) {
	if off&1 != 0 {
		panic("misaligned register offset")
	}
	if b.regs[off/2] != nil {
		log.ModHwIo.WarnZ("remapping register").
			String("bank", b.Name).
			Hex32("offset", off).
			String("reg", reg.Name).
			End()
	}
	b.regs[off/2] = reg
}

// Reset clears the raw backing storage. Mapped registers are owned by
// their devices and reset there.
func (b *Bank) Reset() {
	clear(b.raw)
}

func (b *Bank) reg(addr uint32) *Reg16 {
	return b.regs[(addr&b.Mask)/2]
}

func (b *Bank) Read8(addr uint32) uint8 {
	if reg := b.reg(addr); reg != nil {
		return reg.Read8(addr)
	}
	return b.raw[addr&b.Mask]
}

func (b *Bank) Write8(addr uint32, val uint8) {
	if reg := b.reg(addr); reg != nil {
		reg.Write8(addr, val)
		return
	}
	b.raw[addr&b.Mask] = val
}

func (b *Bank) Read16(addr uint32) uint16 {
	if reg := b.reg(addr); reg != nil {
		return reg.Read16()
	}
	off := addr & b.Mask
	return uint16(b.raw[off+1])<<8 | uint16(b.raw[off])
}

func (b *Bank) Write16(addr uint32, val uint16) {
	if reg := b.reg(addr); reg != nil {
		reg.Write16(val)
		return
	}
	off := addr & b.Mask
	b.raw[off] = uint8(val)
	b.raw[off+1] = uint8(val >> 8)
}
