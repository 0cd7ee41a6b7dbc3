package hwio

import (
	"fmt"

	"advance/emu/log"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = 1 << iota
	WriteOnlyFlag
)

// Reg16 is a 16-bit I/O register. RoMask marks bits the bus cannot change.
//
// If WriteCb is set it replaces the store: the callback receives the current
// value and the incoming bits (already masked to the written byte lanes and
// RoMask) and owns updating Value. This is how write-1-to-clear registers
// are expressed.
type Reg16 struct {
	Name   string
	Value  uint16
	RoMask uint16

	Flags   RWFlags
	ReadCb  func(val uint16) uint16
	WriteCb func(old, val uint16)
}

func (reg Reg16) String() string {
	s := fmt.Sprintf("%s{%04x", reg.Name, reg.Value)
	if reg.ReadCb != nil {
		s += ",r!"
	}
	if reg.WriteCb != nil {
		s += ",w!"
	}
	return s + "}"
}

func (reg *Reg16) write(val, lanes uint16) {
	lanes &^= reg.RoMask
	if reg.WriteCb != nil {
		reg.WriteCb(reg.Value, val&lanes)
		return
	}
	reg.Value = (reg.Value &^ lanes) | (val & lanes)
}

func (reg *Reg16) Write16(val uint16) {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("invalid Write16 to readonly reg").
			String("name", reg.Name).
			End()
		return
	}
	reg.write(val, 0xFFFF)
}

// Write8 merges a byte into the selected lane of the register.
func (reg *Reg16) Write8(addr uint32, val uint8) {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("invalid Write8 to readonly reg").
			String("name", reg.Name).
			Hex32("addr", addr).
			End()
		return
	}
	shift := (addr & 1) * 8
	reg.write(uint16(val)<<shift, 0xFF<<shift)
}

func (reg *Reg16) Read16() uint16 {
	if reg.Flags&WriteOnlyFlag != 0 {
		log.ModHwIo.DebugZ("invalid Read16 from writeonly reg").
			String("name", reg.Name).
			End()
		return 0
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg16) Read8(addr uint32) uint8 {
	return uint8(reg.Read16() >> ((addr & 1) * 8))
}
