package hwio

import (
	"advance/emu/log"
)

// Rom is a read-only bank mirrored across its window modulo the image size,
// which needs not be a power of two. WinMask selects the window-relative
// part of the bus address.
type Rom struct {
	Name    string
	Data    []byte
	WinMask uint32
}

func (r *Rom) offset(addr uint32) uint32 {
	return (addr & r.WinMask) % uint32(len(r.Data))
}

func (r *Rom) Read8(addr uint32) uint8 {
	if len(r.Data) == 0 {
		return 0
	}
	return r.Data[r.offset(addr)]
}

func (r *Rom) Read16(addr uint32) uint16 {
	lo := r.Read8(addr)
	hi := r.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (r *Rom) Read32(addr uint32) uint32 {
	lo := r.Read16(addr)
	hi := r.Read16(addr + 2)
	return uint32(hi)<<16 | uint32(lo)
}

func (r *Rom) Write8(addr uint32, val uint8) {
	log.ModHwIo.DebugZ("Write8 to rom").
		String("area", r.Name).
		Hex32("addr", addr).
		Hex8("val", val).
		End()
}

func (r *Rom) Write16(addr uint32, val uint16) {}
func (r *Rom) Write32(addr uint32, val uint32) {}
