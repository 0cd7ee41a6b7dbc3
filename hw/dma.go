package hw

import (
	"advance/emu/log"
	"advance/hw/hwio"
)

// DMA channel register block offset; each channel owns 12 bytes.
const addrDMABase = 0x0B0

// DMAChannel carries the register slots of one DMA channel. Transfers are
// not executed; the registers round-trip so that software configuring DMA
// does not misbehave, and an enable write is logged to make the missing
// transfer visible when debugging.
type DMAChannel struct {
	SADLo hwio.Reg16
	SADHi hwio.Reg16
	DADLo hwio.Reg16
	DADHi hwio.Reg16
	CNTL  hwio.Reg16
	CNTH  hwio.Reg16
}

func (ch *DMAChannel) initRegs(name string) {
	ch.SADLo = hwio.Reg16{Name: name + "SAD_L", Flags: hwio.WriteOnlyFlag}
	ch.SADHi = hwio.Reg16{Name: name + "SAD_H", Flags: hwio.WriteOnlyFlag}
	ch.DADLo = hwio.Reg16{Name: name + "DAD_L", Flags: hwio.WriteOnlyFlag}
	ch.DADHi = hwio.Reg16{Name: name + "DAD_H", Flags: hwio.WriteOnlyFlag}
	ch.CNTL = hwio.Reg16{Name: name + "CNT_L", Flags: hwio.WriteOnlyFlag}
	ch.CNTH = hwio.Reg16{Name: name + "CNT_H"}
	ch.CNTH.WriteCb = func(old, val uint16) {
		ch.CNTH.Value = val
		if old&0x8000 == 0 && val&0x8000 != 0 {
			log.ModEmu.WarnZ("dma transfer requested, not implemented").
				String("channel", name).
				Hex32("src", ch.Source()).
				Hex32("dst", ch.Dest()).
				Hex16("count", ch.CNTL.Value).
				End()
		}
	}
}

func (ch *DMAChannel) Source() uint32 {
	return uint32(ch.SADHi.Value)<<16 | uint32(ch.SADLo.Value)
}

func (ch *DMAChannel) Dest() uint32 {
	return uint32(ch.DADHi.Value)<<16 | uint32(ch.DADLo.Value)
}

func (ch *DMAChannel) reset() {
	ch.SADLo.Value = 0
	ch.SADHi.Value = 0
	ch.DADLo.Value = 0
	ch.DADHi.Value = 0
	ch.CNTL.Value = 0
	ch.CNTH.Value = 0
}

// DMA is the four-channel DMA controller stub.
type DMA struct {
	Irq     *InterruptCtrl
	Channel [4]DMAChannel
}

func NewDMA(irq *InterruptCtrl) *DMA {
	d := &DMA{Irq: irq}
	names := [4]string{"DMA0", "DMA1", "DMA2", "DMA3"}
	for i := range d.Channel {
		d.Channel[i].initRegs(names[i])
	}
	return d
}

func (d *DMA) InitBus(io *hwio.Bank) {
	for i := range d.Channel {
		ch := &d.Channel[i]
		base := addrDMABase + uint32(i)*12
		io.MapReg16(base, &ch.SADLo)
		io.MapReg16(base+2, &ch.SADHi)
		io.MapReg16(base+4, &ch.DADLo)
		io.MapReg16(base+6, &ch.DADHi)
		io.MapReg16(base+8, &ch.CNTL)
		io.MapReg16(base+10, &ch.CNTH)
	}
}

func (d *DMA) Step(cycles int) {}

func (d *DMA) Reset() {
	for i := range d.Channel {
		d.Channel[i].reset()
	}
}
