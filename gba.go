package main

import (
	"advance/agb"
	"advance/hw"
)

// GBA wires the console together: the CPU, the address space and the
// cycle-stepped peripherals hanging off the I/O block.
type GBA struct {
	CPU    *hw.CPU
	Bus    *hw.Bus
	Irq    *hw.InterruptCtrl
	PPU    *hw.PPU
	Timers *hw.Timers
	DMA    *hw.DMA
	APU    *hw.APU
	Keypad *hw.Keypad
}

// PowerUp builds the machine around the given cartridge. bios may be nil;
// without it the built-in BIOS call handlers and the configured fallback
// policy apply.
func (gba *GBA) PowerUp(rom *agb.Rom, bios []byte) error {
	bus := hw.NewBus()
	if err := bus.LoadROM(rom.Data); err != nil {
		return err
	}
	if len(bios) > 0 {
		if err := bus.LoadBIOS(bios); err != nil {
			return err
		}
	}

	irq := hw.NewInterruptCtrl()
	irq.InitBus(bus.IO)

	gba.PPU = hw.NewPPU(irq, bus)
	gba.PPU.InitBus(bus.IO)
	gba.Timers = hw.NewTimers(irq)
	gba.Timers.InitBus(bus.IO)
	gba.DMA = hw.NewDMA(irq)
	gba.DMA.InitBus(bus.IO)
	gba.APU = hw.NewAPU()
	gba.APU.InitBus(bus.IO)
	gba.Keypad = hw.NewKeypad(irq)
	gba.Keypad.InitBus(bus.IO)

	gba.Bus = bus
	gba.Irq = irq
	gba.CPU = hw.NewCPU(bus, irq)
	return nil
}

// Reset forwards the reset signal to all hardware.
func (gba *GBA) Reset() {
	gba.Bus.Reset()
	gba.Irq.Reset()
	gba.PPU.Reset()
	gba.Timers.Reset()
	gba.DMA.Reset()
	gba.APU.Reset()
	gba.Keypad.Reset()
	gba.CPU.Reset()
}

// Step executes one CPU instruction and advances every peripheral by the
// cycles it took.
func (gba *GBA) Step() int {
	cycles := gba.CPU.Step()
	gba.PPU.Step(cycles)
	gba.Timers.Step(cycles)
	gba.DMA.Step(cycles)
	gba.APU.Step(cycles)
	return cycles
}

// RunFrame steps the machine for one full video frame.
func (gba *GBA) RunFrame() {
	target := gba.CPU.Cycles + hw.CyclesPerFrame
	for gba.CPU.Cycles < target {
		gba.Step()
	}
}
