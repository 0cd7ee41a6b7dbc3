package hw

import (
	"fmt"
	"math/bits"

	"advance/emu/log"
	"advance/hw/hwio"
)

// Bus region base addresses (bits 24-27 of the bus address).
const (
	regionBIOS    = 0x0
	regionEWRAM   = 0x2
	regionIWRAM   = 0x3
	regionIO      = 0x4
	regionPalette = 0x5
	regionVRAM    = 0x6
	regionOAM     = 0x7
	regionCart0   = 0x8
	regionCart1   = 0xA
	regionCart2   = 0xC
)

const maxROMSize = 32 << 20

// Bus is the address space of the console: every backing store, address
// decoding and mirroring, and the per-width access quirks.
//
// Unaligned halfword/word reads do not fault: the value is read from the
// aligned address and rotated right by 8 bits per byte of misalignment.
// Unaligned writes land byte-by-byte at the literal addresses. Byte writes
// to palette and VRAM are duplicated into both halves of the containing
// halfword, and byte writes to OAM are dropped.
type Bus struct {
	Table *hwio.Table

	BIOS    *hwio.Mem
	EWRAM   *hwio.Mem
	IWRAM   *hwio.Mem
	IO      *hwio.Bank
	Palette *hwio.Mem
	VRAM    *hwio.Mem
	OAM     *hwio.Mem
	Cart    *hwio.Rom

	WAITCNT hwio.Reg16

	biosLoaded bool
}

func NewBus() *Bus {
	b := &Bus{
		Table: hwio.NewTable("gba"),
		BIOS:  hwio.NewMem("bios", 0x4000, hwio.MemFlagReadOnly),
		EWRAM: hwio.NewMem("ewram", 0x40000, hwio.MemFlagReadWrite),
		IWRAM: hwio.NewMem("iwram", 0x8000, hwio.MemFlagReadWrite),
		IO:    hwio.NewBank("io", 0x400),
		Palette: &hwio.Mem{
			Name:  "palette",
			Data:  make([]byte, 0x400),
			Mask:  0x3FF,
			Flags: hwio.MemFlagDup8,
		},
		// 96 KiB in a 128 KiB window; the upper 32 KiB fold back onto
		// the second half.
		VRAM: &hwio.Mem{
			Name:  "vram",
			Data:  make([]byte, 0x18000),
			Mask:  0x1FFFF,
			Flags: hwio.MemFlagDup8,
			Fold:  0x8000,
		},
		OAM: &hwio.Mem{
			Name:  "oam",
			Data:  make([]byte, 0x400),
			Mask:  0x3FF,
			Flags: hwio.MemFlagDrop8,
		},
		Cart: &hwio.Rom{Name: "cart", WinMask: 0x01FF_FFFF},
	}
	b.WAITCNT = hwio.Reg16{Name: "WAITCNT", RoMask: 0x8000}

	b.Table.MapRegion(regionBIOS, b.BIOS)
	b.Table.MapRegion(regionEWRAM, b.EWRAM)
	b.Table.MapRegion(regionIWRAM, b.IWRAM)
	b.Table.MapRegion(regionIO, b.IO)
	b.Table.MapRegion(regionPalette, b.Palette)
	b.Table.MapRegion(regionVRAM, b.VRAM)
	b.Table.MapRegion(regionOAM, b.OAM)
	for r := uint32(regionCart0); r <= regionCart2+1; r++ {
		b.Table.MapRegion(r, b.Cart)
	}

	b.IO.MapReg16(0x204, &b.WAITCNT)
	return b
}

// LoadROM installs the cartridge image. The image is mirrored identically
// across the three 32 MiB cartridge windows, wrapped modulo its size.
func (b *Bus) LoadROM(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty rom image")
	}
	if len(data) > maxROMSize {
		return fmt.Errorf("rom image too large: %d bytes (max %d)", len(data), maxROMSize)
	}
	b.Cart.Data = data

	log.ModMem.InfoZ("rom loaded").
		Int("size", len(data)).
		End()
	return nil
}

// LoadBIOS installs the 16 KiB boot ROM image. Loading a BIOS changes the
// unknown-SWI behavior: the CPU traps to the BIOS vector instead of using
// the fallback policy.
func (b *Bus) LoadBIOS(data []byte) error {
	if len(data) > len(b.BIOS.Data) {
		return fmt.Errorf("bios image too large: %d bytes (max %d)", len(data), len(b.BIOS.Data))
	}
	copy(b.BIOS.Data, data)
	b.biosLoaded = true
	return nil
}

func (b *Bus) HasBIOS() bool {
	return b.biosLoaded
}

func (b *Bus) Read8(addr uint32) uint8 {
	return b.Table.Read8(addr)
}

func (b *Bus) Read16(addr uint32) uint16 {
	val := b.Table.Read16(addr &^ 1)
	if addr&1 != 0 {
		val = val>>8 | val<<8
	}
	return val
}

func (b *Bus) Read32(addr uint32) uint32 {
	val := b.Table.Read32(addr &^ 3)
	return bits.RotateLeft32(val, -8*int(addr&3))
}

func (b *Bus) Write8(addr uint32, val uint8) {
	b.Table.Write8(addr, val)
}

func (b *Bus) Write16(addr uint32, val uint16) {
	if addr&1 == 0 {
		b.Table.Write16(addr, val)
		return
	}
	b.Table.Write8(addr, uint8(val))
	b.Table.Write8(addr+1, uint8(val>>8))
}

func (b *Bus) Write32(addr uint32, val uint32) {
	if addr&3 == 0 {
		b.Table.Write32(addr, val)
		return
	}
	for i := uint32(0); i < 4; i++ {
		b.Table.Write8(addr+i, uint8(val>>(8*i)))
	}
}

// AccessCycles returns the bus cycles of a single access at addr. ROM
// accesses depend on the WAITCNT waitstate configuration and on whether the
// access is sequential.
func (b *Bus) AccessCycles(addr uint32, sequential bool) int {
	switch addr >> 24 {
	case regionBIOS, regionIWRAM, regionIO, regionPalette, regionVRAM, regionOAM:
		return 1
	case regionEWRAM:
		return 3
	case regionCart0, regionCart0 + 1:
		return b.romWaitstates(0, sequential)
	case regionCart1, regionCart1 + 1:
		return b.romWaitstates(1, sequential)
	case regionCart2, regionCart2 + 1:
		return b.romWaitstates(2, sequential)
	}
	return 1
}

func (b *Bus) romWaitstates(window uint, sequential bool) int {
	shift := 4 * window
	if sequential {
		shift += 2
	}
	switch b.WAITCNT.Value >> shift & 3 {
	case 0:
		return 3
	case 1:
		return 2
	default:
		return 1
	}
}

// Reset clears every writable memory and the I/O block. Loaded ROM and
// BIOS images survive.
func (b *Bus) Reset() {
	clear(b.EWRAM.Data)
	clear(b.IWRAM.Data)
	clear(b.Palette.Data)
	clear(b.VRAM.Data)
	clear(b.OAM.Data)
	b.IO.Reset()
	b.WAITCNT.Value = 0
}
