package hw

import (
	"encoding/binary"
	"testing"
)

func TestSWIDivision(t *testing.T) {
	tests := []struct {
		name     string
		num, den uint32
		quot     uint32
		rem      uint32
	}{
		{"exact", 42, 7, 6, 0},
		{"remainder", 100, 7, 14, 2},
		{"small by large", 3, 10, 0, 3},
		{"by zero", 1234, 0, 0xFFFFFFFF, 1234},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCPU(t, 0xEF060000) // SWI 0x06
			c.SetReg(0, tt.num)
			c.SetReg(1, tt.den)
			c.Step()
			if got := c.Reg(0); got != tt.quot {
				t.Errorf("quotient = %#x, want %#x", got, tt.quot)
			}
			if got := c.Reg(3); got != tt.rem {
				t.Errorf("remainder = %#x, want %#x", got, tt.rem)
			}
		})
	}
}

func TestSWISqrt(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 0},
		{1, 1},
		{80, 8},
		{81, 9},
		{65536, 256},
		{0xFFFFFFFF, 0xFFFF},
	}
	for _, tt := range tests {
		c := testCPU(t, 0xEF0E0000) // SWI 0x0E
		c.SetReg(0, tt.in)
		c.Step()
		if got := c.Reg(0); got != tt.want {
			t.Errorf("sqrt(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSWINoOps(t *testing.T) {
	// Halt and friends return immediately without a scheduler.
	c := testCPU(t, 0xEF020000) // SWI 0x02 (Halt)
	c.Step()
	if c.Halted() {
		t.Error("halt bios call must not stop the core")
	}
	if got := c.PC(); got != ResetPC+4 {
		t.Errorf("pc = %#x, want %#x", got, ResetPC+4)
	}
}

func TestSWISoftReset(t *testing.T) {
	c := testCPU(t, 0xEF000000) // SWI 0x00
	c.SetMode(ModeIRQ)
	c.SetSP(0xDEAD)
	c.Bus.Write32(0x03007E00, 0x1234)
	c.Step()

	if got := c.Mode(); got != ModeSystem {
		t.Errorf("mode = %v, want System", got)
	}
	if got := c.PC(); got != ResetPC {
		t.Errorf("pc = %#x, want %#x", got, ResetPC)
	}
	if got := c.SP(); got != ResetSP {
		t.Errorf("sp = %#x, want %#x", got, ResetSP)
	}
	if got := c.Bus.Read32(0x03007E00); got != 0 {
		t.Errorf("bios scratch area not cleared: %#x", got)
	}
}

func TestSWIFallbackIgnore(t *testing.T) {
	c := testCPU(t, 0xEF990000) // SWI 0x99, no handler
	c.Step()
	if c.Halted() {
		t.Error("ignore policy must not halt")
	}
	if got := c.PC(); got != ResetPC+4 {
		t.Errorf("pc = %#x, want %#x (act as return)", got, ResetPC+4)
	}
}

func TestSWIFallbackHalt(t *testing.T) {
	c := testCPU(t, 0xEF990000)
	c.SWIFallback = SWIHalt
	c.Step()
	if !c.Halted() {
		t.Error("halt policy must stop the core")
	}
}

func TestSWIBIOSTrap(t *testing.T) {
	c := testCPU(t, 0xEF990000) // SWI 0x99
	bios := make([]byte, 0x4000)
	// Vector 0x08: MOV r0, r0.
	binary.LittleEndian.PutUint32(bios[VectorSWI:], 0xE1A00000)
	if err := c.Bus.LoadBIOS(bios); err != nil {
		t.Fatal(err)
	}

	c.Step()
	if got := c.Mode(); got != ModeSupervisor {
		t.Fatalf("mode = %v, want Supervisor", got)
	}
	if got := c.PC(); got != VectorSWI {
		t.Errorf("pc = %#x, want %#x", got, VectorSWI)
	}
	if got := c.LR(); got != ResetPC+4 {
		t.Errorf("lr = %#x, want %#x", got, ResetPC+4)
	}
	if !c.CPSR().I() {
		t.Error("irq disable not set on supervisor entry")
	}
	if got := c.SPSR().Mode(); got != ModeSystem {
		t.Errorf("spsr mode = %v, want System", got)
	}
}

func TestParseSWIFallback(t *testing.T) {
	if got, err := ParseSWIFallback(""); err != nil || got != SWIIgnore {
		t.Errorf("ParseSWIFallback(%q) = (%v, %v)", "", got, err)
	}
	if got, err := ParseSWIFallback("halt"); err != nil || got != SWIHalt {
		t.Errorf("ParseSWIFallback(%q) = (%v, %v)", "halt", got, err)
	}
	if _, err := ParseSWIFallback("bogus"); err == nil {
		t.Error("expected error for bogus policy")
	}
}
