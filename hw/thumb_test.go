package hw

import (
	"testing"
)

func TestThumbMovImm(t *testing.T) {
	c := testThumbCPU(t, 0x202A) // MOV r0, #42
	c.Step()
	if got := c.Reg(0); got != 42 {
		t.Errorf("r0 = %d, want 42", got)
	}
	if c.CPSR().Z() || c.CPSR().N() {
		t.Errorf("flags = %v, want none", c.CPSR())
	}
}

func TestThumbShift(t *testing.T) {
	c := testThumbCPU(t, 0x0088) // LSL r0, r1, #2
	c.SetReg(1, 3)
	c.Step()
	if got := c.Reg(0); got != 12 {
		t.Errorf("r0 = %d, want 12", got)
	}
}

func TestThumbAddSubReg(t *testing.T) {
	c := testThumbCPU(t,
		0x1842, // ADD r2, r0, r1
		0x1E81, // SUB r1, r0, #2
	)
	c.SetReg(0, 10)
	c.SetReg(1, 4)
	c.Step()
	if got := c.Reg(2); got != 14 {
		t.Fatalf("add r2 = %d, want 14", got)
	}
	c.Step()
	if got := c.Reg(1); got != 8 {
		t.Errorf("sub r1 = %d, want 8", got)
	}
}

func TestThumbALUReg(t *testing.T) {
	tests := []struct {
		name   string
		op     uint16
		r0, r1 uint32
		want   uint32
	}{
		{"and", 0x4008, 0xFF, 0x0F, 0x0F},
		{"eor", 0x4048, 0xFF, 0x0F, 0xF0},
		{"orr", 0x4308, 0xF0, 0x0F, 0xFF},
		{"mul", 0x4348, 6, 7, 42},
		{"neg", 0x4248, 0, 5, 0xFFFFFFFB},
		{"mvn", 0x43C8, 0, 0x0F, 0xFFFFFFF0},
		{"lsl", 0x4088, 1, 4, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testThumbCPU(t, tt.op)
			c.SetReg(0, tt.r0)
			c.SetReg(1, tt.r1)
			c.Step()
			if got := c.Reg(0); got != tt.want {
				t.Errorf("r0 = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestThumbHiRegMov(t *testing.T) {
	c := testThumbCPU(t, 0x4680) // MOV r8, r0
	c.SetReg(0, 0x1234)
	c.Step()
	if got := c.Reg(8); got != 0x1234 {
		t.Errorf("r8 = %#x, want 0x1234", got)
	}
}

func TestThumbBX(t *testing.T) {
	c := testThumbCPU(t, 0x4700) // BX r0
	c.SetReg(0, 0x08000100) // even target: switch to ARM
	c.Step()
	if c.CPSR().Thumb() {
		t.Fatal("thumb bit still set after BX to even address")
	}
	if got := c.PC(); got != 0x08000100 {
		t.Errorf("pc = %#x, want 0x08000100", got)
	}
}

func TestThumbPCRelativeLoad(t *testing.T) {
	c := testThumbCPU(t,
		0x4801, // LDR r0, [pc, #4]
		0x0000,
		0x0000,
		0x0000,
		0x5678, // literal pool at 0x08000008
		0x1234,
	)
	c.Step()
	if got := c.Reg(0); got != 0x12345678 {
		t.Errorf("r0 = %#x, want 0x12345678", got)
	}
}

func TestThumbLoadStoreReg(t *testing.T) {
	c := testThumbCPU(t,
		0x5088, // STR r0, [r1, r2]
		0x588B, // LDR r3, [r1, r2]
	)
	c.SetReg(0, 0xFEEDFACE)
	c.SetReg(1, 0x03000000)
	c.SetReg(2, 8)
	c.Step()
	c.Step()
	if got := c.Reg(3); got != 0xFEEDFACE {
		t.Errorf("r3 = %#x, want 0xfeedface", got)
	}
}

func TestThumbLoadStoreHalf(t *testing.T) {
	c := testThumbCPU(t,
		0x8048, // STRH r0, [r1, #2]
		0x884A, // LDRH r2, [r1, #2]
	)
	c.SetReg(0, 0xBEEF)
	c.SetReg(1, 0x03000000)
	c.Step()
	c.Step()
	if got := c.Reg(2); got != 0xBEEF {
		t.Errorf("r2 = %#x, want 0xbeef", got)
	}
}

func TestThumbSPOps(t *testing.T) {
	c := testThumbCPU(t,
		0xB082, // SUB sp, #8
		0x9001, // STR r0, [sp, #4]
		0x9901, // LDR r1, [sp, #4]
		0xB002, // ADD sp, #8
	)
	c.SetSP(0x03007F00)
	c.SetReg(0, 77)
	for i := 0; i < 4; i++ {
		c.Step()
	}
	if got := c.Reg(1); got != 77 {
		t.Errorf("r1 = %d, want 77", got)
	}
	if got := c.SP(); got != 0x03007F00 {
		t.Errorf("sp = %#x, want 0x03007f00", got)
	}
}

func TestThumbPushPop(t *testing.T) {
	c := testThumbCPU(t,
		0xB501, // PUSH {r0, lr}
		0xBD08, // POP {r3, pc}
	)
	c.SetSP(0x03007F00)
	c.SetReg(0, 555)
	c.SetLR(0x08000200)

	c.Step()
	if got := c.SP(); got != 0x03007F00-8 {
		t.Fatalf("sp after push = %#x, want %#x", got, 0x03007F00-8)
	}
	c.Step()
	if got := c.Reg(3); got != 555 {
		t.Errorf("r3 = %d, want 555", got)
	}
	if got := c.PC(); got != 0x08000200 {
		t.Errorf("pc = %#x, want 0x08000200", got)
	}
	if !c.CPSR().Thumb() {
		t.Error("pop into pc must stay in thumb state")
	}
	if got := c.SP(); got != 0x03007F00 {
		t.Errorf("sp after pop = %#x, want 0x03007f00", got)
	}
}

func TestThumbBlockTransfer(t *testing.T) {
	c := testThumbCPU(t,
		0xC105, // STMIA r1!, {r0, r2}
		0xC918, // LDMIA r1!, {r3, r4}
	)
	c.SetReg(0, 11)
	c.SetReg(2, 22)
	c.SetReg(1, 0x03000000)

	c.Step()
	if got := c.Reg(1); got != 0x03000008 {
		t.Fatalf("base after stmia = %#x, want 0x03000008", got)
	}
	c.SetReg(1, 0x03000000)
	c.Step()
	if got := c.Reg(3); got != 11 {
		t.Errorf("r3 = %d, want 11", got)
	}
	if got := c.Reg(4); got != 22 {
		t.Errorf("r4 = %d, want 22", got)
	}
}

func TestThumbCondBranch(t *testing.T) {
	c := testThumbCPU(t,
		0x2800, // CMP r0, #0
		0xD002, // BEQ +4
	)
	c.Step()
	c.Step()
	if got := c.PC(); got != 0x0800000A {
		t.Errorf("pc = %#x, want 0x0800000a", got)
	}
}

func TestThumbCondBranchNotTaken(t *testing.T) {
	c := testThumbCPU(t,
		0x2801, // CMP r0, #1
		0xD002, // BEQ +4
	)
	c.Step()
	c.Step()
	if got := c.PC(); got != 0x08000004 {
		t.Errorf("pc = %#x, want 0x08000004", got)
	}
}

func TestThumbBranch(t *testing.T) {
	c := testThumbCPU(t, 0xE004) // B +8
	c.Step()
	if got := c.PC(); got != 0x0800000C {
		t.Errorf("pc = %#x, want 0x0800000c", got)
	}
}

func TestThumbBL(t *testing.T) {
	c := testThumbCPU(t,
		0xF000, // BL prefix
		0xF801, // BL suffix: target = pc+4+2
	)
	c.Step()
	c.Step()
	if got := c.PC(); got != 0x08000006 {
		t.Errorf("pc = %#x, want 0x08000006", got)
	}
	if got := c.LR(); got != 0x08000005 {
		t.Errorf("lr = %#x, want 0x08000005 (return address with thumb bit)", got)
	}
}

func TestThumbBLToFullWord(t *testing.T) {
	c := testThumbCPU(t,
		0xF000, // BL prefix
		0xE802, // suffix with the exchange bit: continue in ARM state
	)
	c.Step()
	c.Step()
	if c.CPSR().Thumb() {
		t.Fatal("thumb bit still set after exchanging suffix")
	}
	if got := c.PC(); got != 0x08000008 {
		t.Errorf("pc = %#x, want 0x08000008", got)
	}
	if got := c.LR(); got != 0x08000005 {
		t.Errorf("lr = %#x, want 0x08000005", got)
	}
}

func TestThumbSWIDivision(t *testing.T) {
	// The function number is read from R7, not from the instruction.
	c := testThumbCPU(t, 0xDF00) // SWI
	c.SetReg(0, 100)
	c.SetReg(1, 7)
	c.SetReg(7, 0x06) // Div
	c.Step()
	if got := c.Reg(0); got != 14 {
		t.Errorf("quotient = %d, want 14", got)
	}
	if got := c.Reg(3); got != 2 {
		t.Errorf("remainder = %d, want 2", got)
	}
}

func TestThumbSWIIgnoresComment(t *testing.T) {
	// A nonzero comment field must not select the bios call; with R7
	// pointing at Sqrt the comment's Div number is irrelevant.
	c := testThumbCPU(t, 0xDF06)
	c.SetReg(0, 81)
	c.SetReg(7, 0x0E) // Sqrt
	c.Step()
	if got := c.Reg(0); got != 9 {
		t.Errorf("sqrt result = %d, want 9", got)
	}
}
