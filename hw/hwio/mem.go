package hwio

import (
	"encoding/binary"

	"advance/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = 1 << iota // writes are dropped
	MemFlagDup8                           // byte writes fill both halves of the containing halfword
	MemFlagDrop8                          // byte writes are ignored (halfword/word writes go through)
)

// Mem is a linear memory bank mapped into a Table. The bank mirrors itself
// across its region: the bus address is ANDed with Mask before indexing
// Data. For banks whose physical size is not a power of two, Fold is
// subtracted from offsets that land past the end of Data (the VRAM 96 KiB
// layout, where the upper 32 KiB of the 128 KiB window folds back).
type Mem struct {
	Name  string
	Data  []byte
	Mask  uint32
	Fold  uint32
	Flags MemFlags
}

func NewMem(name string, size int, flags MemFlags) *Mem {
	if size&(size-1) != 0 {
		panic("memory bank size is not pow2")
	}
	return &Mem{
		Name:  name,
		Data:  make([]byte, size),
		Mask:  uint32(size - 1),
		Flags: flags,
	}
}

func (m *Mem) offset(addr uint32) uint32 {
	off := addr & m.Mask
	if off >= uint32(len(m.Data)) {
		off -= m.Fold
	}
	return off
}

func (m *Mem) Read8(addr uint32) uint8 {
	return m.Data[m.offset(addr)]
}

func (m *Mem) Read16(addr uint32) uint16 {
	off := m.offset(addr)
	return binary.LittleEndian.Uint16(m.Data[off:])
}

func (m *Mem) Read32(addr uint32) uint32 {
	off := m.offset(addr)
	return binary.LittleEndian.Uint32(m.Data[off:])
}

func (m *Mem) Write8(addr uint32, val uint8) {
	switch {
	case m.Flags&MemFlagReadOnly != 0:
		log.ModHwIo.DebugZ("Write8 to readonly memory").
			String("area", m.Name).
			Hex32("addr", addr).
			Hex8("val", val).
			End()
	case m.Flags&MemFlagDrop8 != 0:
		// Narrow writes don't reach this bank.
	case m.Flags&MemFlagDup8 != 0:
		off := m.offset(addr &^ 1)
		m.Data[off] = val
		m.Data[off+1] = val
	default:
		m.Data[m.offset(addr)] = val
	}
}

func (m *Mem) Write16(addr uint32, val uint16) {
	if m.Flags&MemFlagReadOnly != 0 {
		log.ModHwIo.DebugZ("Write16 to readonly memory").
			String("area", m.Name).
			Hex32("addr", addr).
			End()
		return
	}
	off := m.offset(addr &^ 1)
	binary.LittleEndian.PutUint16(m.Data[off:], val)
}

func (m *Mem) Write32(addr uint32, val uint32) {
	if m.Flags&MemFlagReadOnly != 0 {
		log.ModHwIo.DebugZ("Write32 to readonly memory").
			String("area", m.Name).
			Hex32("addr", addr).
			End()
		return
	}
	off := m.offset(addr &^ 3)
	binary.LittleEndian.PutUint32(m.Data[off:], val)
}
