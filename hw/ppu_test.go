package hw

import (
	"testing"

	"advance/hw/hwio"
)

func testPPU(t *testing.T) (*PPU, *InterruptCtrl) {
	t.Helper()
	irq := NewInterruptCtrl()
	return NewPPU(irq, NewBus()), irq
}

func TestPPUHBlank(t *testing.T) {
	p, irq := testPPU(t)
	p.DISPSTAT.Value = dispstatHBlankIRQ

	p.Step(cyclesHDraw - 1)
	if p.InHBlank() {
		t.Fatal("hblank before the draw period ended")
	}
	p.Step(1)
	if !p.InHBlank() {
		t.Fatal("hblank flag not set")
	}
	if irq.IF.Value&uint16(IRQHBlank) == 0 {
		t.Error("hblank interrupt not requested")
	}

	p.Step(cyclesLine - cyclesHDraw)
	if p.InHBlank() {
		t.Error("hblank flag not cleared at line start")
	}
	if got := p.Line(); got != 1 {
		t.Errorf("line = %d, want 1", got)
	}
}

func TestPPUVBlank(t *testing.T) {
	p, irq := testPPU(t)
	p.DISPSTAT.Value = dispstatVBlankIRQ

	p.Step(cyclesLine * linesVDraw)
	if !p.InVBlank() {
		t.Fatal("vblank flag not set at line 160")
	}
	if got := p.Line(); got != linesVDraw {
		t.Errorf("line = %d, want %d", got, linesVDraw)
	}
	if irq.IF.Value&uint16(IRQVBlank) == 0 {
		t.Error("vblank interrupt not requested")
	}
	if got := p.Frames; got != 1 {
		t.Errorf("frames = %d, want 1", got)
	}
}

func TestPPUFrameWrap(t *testing.T) {
	p, _ := testPPU(t)

	p.Step(CyclesPerFrame)
	if got := p.Line(); got != 0 {
		t.Errorf("line = %d, want 0 after a full frame", got)
	}
	if p.InVBlank() {
		t.Error("vblank flag still set at frame start")
	}
	if got := p.Frames; got != 1 {
		t.Errorf("frames = %d, want 1", got)
	}
}

func TestPPUVCountMatch(t *testing.T) {
	p, irq := testPPU(t)
	p.DISPSTAT.Value = dispstatVMatchIRQ | 3<<8 // match line 3

	p.Step(cyclesLine * 3)
	if p.DISPSTAT.Value&dispstatVMatch == 0 {
		t.Fatal("vcount match flag not set on line 3")
	}
	if irq.IF.Value&uint16(IRQVCount) == 0 {
		t.Error("vcount interrupt not requested")
	}

	p.Step(cyclesLine)
	if p.DISPSTAT.Value&dispstatVMatch != 0 {
		t.Error("vcount match flag not cleared on line 4")
	}
}

func TestPPUNoIRQWhenMasked(t *testing.T) {
	p, irq := testPPU(t)

	p.Step(CyclesPerFrame)
	if irq.IF.Value != 0 {
		t.Errorf("IF = %#x, want 0 with all DISPSTAT enables clear", irq.IF.Value)
	}
}

func TestPPUVCountReadOnly(t *testing.T) {
	p, _ := testPPU(t)
	io := newTestPPUBank(p)

	p.Step(cyclesLine * 7)
	io.Write16(0x06, 0)
	if got := io.Read16(0x06); got != 7 {
		t.Errorf("VCOUNT = %d, want 7 (write must be ignored)", got)
	}
}

func TestPPUDispstatStatusBitsReadOnly(t *testing.T) {
	p, _ := testPPU(t)
	io := newTestPPUBank(p)

	p.Step(cyclesLine * linesVDraw) // enter vblank
	io.Write16(0x04, 0xFFFF)
	got := io.Read16(0x04)
	if got&dispstatVBlank == 0 {
		t.Error("vblank status bit cleared by software write")
	}
	if got&dispstatVBlankIRQ == 0 {
		t.Error("vblank irq enable not written")
	}
}

func newTestPPUBank(p *PPU) *hwio.Bank {
	io := hwio.NewBank("io", 0x400)
	p.InitBus(io)
	return io
}
