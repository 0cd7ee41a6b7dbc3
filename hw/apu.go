package hw

import (
	"advance/hw/hwio"
)

// Sound register offsets.
const (
	addrSOUNDCNTL = 0x80
	addrSOUNDCNTH = 0x82
	addrSOUNDCNTX = 0x84
	addrSOUNDBIAS = 0x88
)

// APU carries the master sound control registers. No synthesis happens;
// the registers round-trip so that sound drivers probing them keep
// working.
type APU struct {
	SOUNDCNTL hwio.Reg16
	SOUNDCNTH hwio.Reg16
	SOUNDCNTX hwio.Reg16
	SOUNDBIAS hwio.Reg16
}

func NewAPU() *APU {
	return &APU{
		SOUNDCNTL: hwio.Reg16{Name: "SOUNDCNT_L"},
		SOUNDCNTH: hwio.Reg16{Name: "SOUNDCNT_H"},
		// Channel status bits in the low nibble are read-only.
		SOUNDCNTX: hwio.Reg16{Name: "SOUNDCNT_X", RoMask: 0x000F},
		SOUNDBIAS: hwio.Reg16{Name: "SOUNDBIAS", Value: 0x0200},
	}
}

func (a *APU) InitBus(io *hwio.Bank) {
	io.MapReg16(addrSOUNDCNTL, &a.SOUNDCNTL)
	io.MapReg16(addrSOUNDCNTH, &a.SOUNDCNTH)
	io.MapReg16(addrSOUNDCNTX, &a.SOUNDCNTX)
	io.MapReg16(addrSOUNDBIAS, &a.SOUNDBIAS)
}

func (a *APU) Enabled() bool {
	return a.SOUNDCNTX.Value&0x80 != 0
}

func (a *APU) Step(cycles int) {}

func (a *APU) Reset() {
	a.SOUNDCNTL.Value = 0
	a.SOUNDCNTH.Value = 0
	a.SOUNDCNTX.Value = 0
	a.SOUNDBIAS.Value = 0x0200
}
