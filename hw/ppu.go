package hw

import (
	"advance/emu/log"
	"advance/hw/hwio"
)

// Scanline timing, in CPU cycles.
const (
	cyclesHDraw = 960 // 240 visible dots, 4 cycles each
	cyclesLine  = 1232
	linesVDraw  = 160
	linesTotal  = 228
)

// CyclesPerFrame is the length of one full video frame.
const CyclesPerFrame = cyclesLine * linesTotal

// DISPSTAT bits.
const (
	dispstatVBlank    = 1 << 0
	dispstatHBlank    = 1 << 1
	dispstatVMatch    = 1 << 2
	dispstatVBlankIRQ = 1 << 3
	dispstatHBlankIRQ = 1 << 4
	dispstatVMatchIRQ = 1 << 5
)

// PPU is the picture engine, reduced to what the rest of the console can
// observe: the scanline/VBlank state machine, its status registers and its
// interrupts. No pixels are produced; software that polls DISPSTAT/VCOUNT
// or sleeps on the VBlank interrupt still sees correct timing.
//
// The engine holds live views of the video memories handed over by the
// bus, so a rendering backend can attach on top without further plumbing.
type PPU struct {
	Irq *InterruptCtrl

	DISPCNT  hwio.Reg16
	DISPSTAT hwio.Reg16
	VCOUNT   hwio.Reg16
	BGCNT    [4]hwio.Reg16

	vram    []byte
	palette []byte
	oam     []byte

	hcount uint32

	// Frames counts VBlank entries since reset.
	Frames int64
}

func NewPPU(irq *InterruptCtrl, bus *Bus) *PPU {
	p := &PPU{
		Irq:      irq,
		DISPCNT:  hwio.Reg16{Name: "DISPCNT"},
		DISPSTAT: hwio.Reg16{Name: "DISPSTAT", RoMask: 0x00C7},
		VCOUNT:   hwio.Reg16{Name: "VCOUNT", Flags: hwio.ReadOnlyFlag},
		vram:     bus.VRAM.Data,
		palette:  bus.Palette.Data,
		oam:      bus.OAM.Data,
	}
	names := [4]string{"BG0CNT", "BG1CNT", "BG2CNT", "BG3CNT"}
	for i := range p.BGCNT {
		p.BGCNT[i] = hwio.Reg16{Name: names[i]}
	}
	return p
}

// InitBus maps the engine registers into the I/O block. Scroll and effect
// registers have no behavior here and round-trip through the block's raw
// storage.
func (p *PPU) InitBus(io *hwio.Bank) {
	io.MapReg16(0x00, &p.DISPCNT)
	io.MapReg16(0x04, &p.DISPSTAT)
	io.MapReg16(0x06, &p.VCOUNT)
	for i := range p.BGCNT {
		io.MapReg16(0x08+uint32(i)*2, &p.BGCNT[i])
	}
}

// Step advances the dot clock. Crossing the horizontal blank boundary or a
// line boundary updates DISPSTAT/VCOUNT and raises the enabled interrupts.
func (p *PPU) Step(cycles int) {
	for cycles > 0 {
		boundary := uint32(cyclesHDraw)
		if p.hcount >= cyclesHDraw {
			boundary = cyclesLine
		}
		step := cycles
		if rem := int(boundary - p.hcount); step > rem {
			step = rem
		}
		p.hcount += uint32(step)
		cycles -= step

		if p.hcount == cyclesHDraw {
			p.enterHBlank()
		} else if p.hcount == cyclesLine {
			p.hcount = 0
			p.nextLine()
		}
	}
}

func (p *PPU) enterHBlank() {
	p.DISPSTAT.Value |= dispstatHBlank
	if p.DISPSTAT.Value&dispstatHBlankIRQ != 0 {
		p.Irq.Request(IRQHBlank)
	}
}

func (p *PPU) nextLine() {
	p.DISPSTAT.Value &^= dispstatHBlank

	line := (p.VCOUNT.Value + 1) % linesTotal
	p.VCOUNT.Value = line

	switch line {
	case linesVDraw:
		p.DISPSTAT.Value |= dispstatVBlank
		p.Frames++
		if p.DISPSTAT.Value&dispstatVBlankIRQ != 0 {
			p.Irq.Request(IRQVBlank)
		}
		log.ModPPU.DebugZ("vblank").
			Int64("frame", p.Frames).
			End()
	case 0:
		p.DISPSTAT.Value &^= dispstatVBlank
	}

	if line == p.DISPSTAT.Value>>8 {
		p.DISPSTAT.Value |= dispstatVMatch
		if p.DISPSTAT.Value&dispstatVMatchIRQ != 0 {
			p.Irq.Request(IRQVCount)
		}
	} else {
		p.DISPSTAT.Value &^= dispstatVMatch
	}
}

// VRAM, Palette and OAM expose the engine's live memory views for
// rendering backends and tooling.
func (p *PPU) VRAM() []byte    { return p.vram }
func (p *PPU) Palette() []byte { return p.palette }
func (p *PPU) OAM() []byte     { return p.oam }

func (p *PPU) InVBlank() bool {
	return p.DISPSTAT.Value&dispstatVBlank != 0
}

func (p *PPU) InHBlank() bool {
	return p.DISPSTAT.Value&dispstatHBlank != 0
}

func (p *PPU) Line() int {
	return int(p.VCOUNT.Value)
}

func (p *PPU) Reset() {
	p.DISPCNT.Value = 0
	p.DISPSTAT.Value = 0
	p.VCOUNT.Value = 0
	for i := range p.BGCNT {
		p.BGCNT[i].Value = 0
	}
	p.hcount = 0
	p.Frames = 0
}
