package hwio

import (
	"advance/emu/log"
)

// BankIO8 is the interface implemented by everything mappable on the bus.
// Addresses are full 32-bit bus addresses; implementations apply their own
// mirroring before indexing backing storage.
type BankIO8 interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, val uint8)
}

// BankIO16 is an optional upgrade of BankIO8. The bus table uses it when
// present so that halfword accesses reach the device in one piece; this
// matters for devices whose byte-access semantics differ from two
// independent byte accesses (palette/VRAM byte-write duplication).
type BankIO16 interface {
	BankIO8
	Read16(addr uint32) uint16
	Write16(addr uint32, val uint16)
}

// BankIO32 upgrades BankIO16 with native word access.
type BankIO32 interface {
	BankIO16
	Read32(addr uint32) uint32
	Write32(addr uint32, val uint32)
}

// Table decodes 32-bit bus addresses to mapped devices. The high byte of the
// address (bits 24-31) selects a region slot; everything above the mapped
// slots behaves as open bus: reads return zero, writes are dropped.
type Table struct {
	Name string

	regions [16]BankIO8
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// MapRegion maps io at the region selected by address bits 24-27. A region
// spans 16 MiB; devices smaller than that mirror themselves through their
// own address masking.
func (t *Table) MapRegion(region uint32, io BankIO8) {
	log.ModHwIo.DebugZ("mapping region").
		Hex32("base", region<<24).
		String("bus", t.Name).
		End()

	if t.regions[region&0xF] != nil {
		log.ModHwIo.WarnZ("remapping bus region").
			Hex32("base", region<<24).
			String("bus", t.Name).
			End()
	}
	t.regions[region&0xF] = io
}

func (t *Table) Unmap(region uint32) {
	t.regions[region&0xF] = nil
}

func (t *Table) lookup(addr uint32) BankIO8 {
	if addr >= 0x1000_0000 {
		return nil
	}
	return t.regions[addr>>24]
}

// Read8 forwards the read to the device mapped at addr. Unmapped addresses
// read as zero.
func (t *Table) Read8(addr uint32) uint8 {
	io := t.lookup(addr)
	if io == nil {
		return 0
	}
	return io.Read8(addr)
}

func (t *Table) Write8(addr uint32, val uint8) {
	io := t.lookup(addr)
	if io == nil {
		return
	}
	io.Write8(addr, val)
}

// Read16 reads an aligned halfword. The low address bit is ignored.
func (t *Table) Read16(addr uint32) uint16 {
	addr &^= 1
	io := t.lookup(addr)
	if io == nil {
		return 0
	}
	if io16, ok := io.(BankIO16); ok {
		return io16.Read16(addr)
	}
	lo := io.Read8(addr)
	hi := io.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (t *Table) Write16(addr uint32, val uint16) {
	addr &^= 1
	io := t.lookup(addr)
	if io == nil {
		return
	}
	if io16, ok := io.(BankIO16); ok {
		io16.Write16(addr, val)
		return
	}
	io.Write8(addr, uint8(val))
	io.Write8(addr+1, uint8(val>>8))
}

// Read32 reads an aligned word. The two low address bits are ignored.
func (t *Table) Read32(addr uint32) uint32 {
	addr &^= 3
	io := t.lookup(addr)
	if io == nil {
		return 0
	}
	if io32, ok := io.(BankIO32); ok {
		return io32.Read32(addr)
	}
	lo := t.Read16(addr)
	hi := t.Read16(addr + 2)
	return uint32(hi)<<16 | uint32(lo)
}

func (t *Table) Write32(addr uint32, val uint32) {
	addr &^= 3
	io := t.lookup(addr)
	if io == nil {
		return
	}
	if io32, ok := io.(BankIO32); ok {
		io32.Write32(addr, val)
		return
	}
	t.Write16(addr, uint16(val))
	t.Write16(addr+2, uint16(val>>16))
}
