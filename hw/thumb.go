package hw

import (
	"math/bits"

	"advance/emu/log"
	"advance/hw/hwio"
)

// stepThumb fetches, decodes and executes one 16-bit instruction. The top
// three bits split the set into eight groups; each group function sorts
// out the formats inside it.
func (c *CPU) stepThumb(instrAddr uint32) int {
	op := uint32(c.Bus.Read16(instrAddr))
	if c.tracer != nil {
		c.tracer.trace(c, instrAddr, op)
	}

	fetch := c.Bus.AccessCycles(instrAddr, true)
	switch op >> 13 {
	case 0:
		return fetch + c.thumbShiftAddSub(op)
	case 1:
		return fetch + c.thumbALUImm(op)
	case 2:
		return fetch + c.thumbALUAndLoad(op)
	case 3:
		return fetch + c.thumbLoadStoreImm(op)
	case 4:
		return fetch + c.thumbLoadStoreHalf(op)
	case 5:
		return fetch + c.thumbAddrAndStack(op)
	case 6:
		return fetch + c.thumbBlockCondSWI(op)
	case 7:
		return fetch + c.thumbBranches(instrAddr, op)
	}
	return fetch
}

// Formats 1 and 2: move shifted register, add/subtract.
func (c *CPU) thumbShiftAddSub(op uint32) int {
	rd := op & 7
	rs := op >> 3 & 7

	if op>>11&3 == 3 { // add/subtract
		var operand uint32
		if op&0x0400 != 0 {
			operand = op >> 6 & 7
		} else {
			operand = c.reg(op >> 6 & 7)
		}
		if op&0x0200 != 0 {
			c.r[rd] = c.subFlags(c.reg(rs), operand, true)
		} else {
			c.r[rd] = c.addFlags(c.reg(rs), operand, 0, true)
		}
		return 1
	}

	res, carry := c.barrelShift(c.reg(rs), op>>11&3, op>>6&0x1F, true)
	c.r[rd] = res
	c.cpsr.setNZ(res)
	c.cpsr.SetC(carry)
	return 1
}

// Format 3: move/compare/add/subtract with an 8-bit immediate.
func (c *CPU) thumbALUImm(op uint32) int {
	rd := op >> 8 & 7
	imm := op & 0xFF

	switch op >> 11 & 3 {
	case 0: // MOV
		c.r[rd] = imm
		c.cpsr.setNZ(imm)
	case 1: // CMP
		c.subFlags(c.reg(rd), imm, true)
	case 2: // ADD
		c.r[rd] = c.addFlags(c.reg(rd), imm, 0, true)
	case 3: // SUB
		c.r[rd] = c.subFlags(c.reg(rd), imm, true)
	}
	return 1
}

// Formats 4-8: register ALU ops, hi-register ops and BX, PC-relative
// load, and the register-offset load/stores.
func (c *CPU) thumbALUAndLoad(op uint32) int {
	switch {
	case op&0xFC00 == 0x4000:
		return c.thumbALUReg(op)
	case op&0xFC00 == 0x4400:
		return c.thumbHiReg(op)
	case op&0xF800 == 0x4800: // LDR rd, [PC, #imm]
		rd := op >> 8 & 7
		addr := c.r[15]&^2 + (op&0xFF)*4
		c.r[rd] = c.Bus.Read32(addr)
		return 2 + c.Bus.AccessCycles(addr, false)
	}

	// register-offset load/store
	ea := c.reg(op>>3&7) + c.reg(op>>6&7)
	rd := op & 7
	cycles := 1 + c.Bus.AccessCycles(ea, false)

	if op&0x0200 == 0 {
		switch op >> 10 & 3 {
		case 0: // STR
			c.Bus.Write32(ea, c.reg(rd))
		case 1: // STRB
			c.Bus.Write8(ea, uint8(c.reg(rd)))
		case 2: // LDR
			c.r[rd] = c.Bus.Read32(ea)
			cycles++
		case 3: // LDRB
			c.r[rd] = uint32(c.Bus.Read8(ea))
			cycles++
		}
		return cycles
	}

	switch op >> 10 & 3 {
	case 0: // STRH
		c.Bus.Write16(ea, uint16(c.reg(rd)))
	case 1: // LDRSB
		c.r[rd] = hwio.SignExtend32(uint32(c.Bus.Read8(ea)), 8)
		cycles++
	case 2: // LDRH
		c.r[rd] = uint32(c.Bus.Read16(ea))
		cycles++
	case 3: // LDRSH; an odd address degrades to a signed byte load
		if ea&1 != 0 {
			c.r[rd] = hwio.SignExtend32(uint32(c.Bus.Read8(ea)), 8)
		} else {
			c.r[rd] = hwio.SignExtend32(uint32(c.Bus.Read16(ea)), 16)
		}
		cycles++
	}
	return cycles
}

func (c *CPU) thumbALUReg(op uint32) int {
	rd := op & 7
	rs := op >> 3 & 7
	a := c.reg(rd)
	b := c.reg(rs)

	shift := func(typ uint32) int {
		res, carry := c.barrelShift(a, typ, b&0xFF, false)
		c.r[rd] = res
		c.cpsr.setNZ(res)
		c.cpsr.SetC(carry)
		return 2
	}
	logic := func(res uint32, write bool) int {
		c.cpsr.setNZ(res)
		if write {
			c.r[rd] = res
		}
		return 1
	}

	switch op >> 6 & 0xF {
	case 0x0: // AND
		return logic(a&b, true)
	case 0x1: // EOR
		return logic(a^b, true)
	case 0x2: // LSL
		return shift(shiftLSL)
	case 0x3: // LSR
		return shift(shiftLSR)
	case 0x4: // ASR
		return shift(shiftASR)
	case 0x5: // ADC
		c.r[rd] = c.addFlags(a, b, c.carryIn(), true)
	case 0x6: // SBC
		c.r[rd] = c.addFlags(a, ^b, c.carryIn(), true)
	case 0x7: // ROR
		return shift(shiftROR)
	case 0x8: // TST
		return logic(a&b, false)
	case 0x9: // NEG
		c.r[rd] = c.subFlags(0, b, true)
	case 0xA: // CMP
		c.subFlags(a, b, true)
	case 0xB: // CMN
		c.addFlags(a, b, 0, true)
	case 0xC: // ORR
		return logic(a|b, true)
	case 0xD: // MUL
		return logic(a*b, true)
	case 0xE: // BIC
		return logic(a&^b, true)
	case 0xF: // MVN
		return logic(^b, true)
	}
	return 1
}

// Format 5: the only Thumb instructions that reach R8-R15.
func (c *CPU) thumbHiReg(op uint32) int {
	rd := op&7 | op>>4&8
	rs := op>>3&7 | op>>3&8

	switch op >> 8 & 3 {
	case 0: // ADD (no flags)
		c.setReg(rd, c.reg(rd)+c.reg(rs))
	case 1: // CMP
		c.subFlags(c.reg(rd), c.reg(rs), true)
	case 2: // MOV
		c.setReg(rd, c.reg(rs))
	case 3: // BX
		target := c.reg(rs)
		c.cpsr.SetThumb(target&1 != 0)
		c.writePC(target)
		return 3
	}
	if rd == 15 {
		return 3
	}
	return 1
}

// Format 9: word/byte load/store with a 5-bit immediate offset.
func (c *CPU) thumbLoadStoreImm(op uint32) int {
	rd := op & 7
	rb := c.reg(op >> 3 & 7)
	imm := op >> 6 & 0x1F

	var ea uint32
	cycles := 1
	switch op >> 11 & 3 {
	case 0: // STR
		ea = rb + imm*4
		c.Bus.Write32(ea, c.reg(rd))
	case 1: // LDR
		ea = rb + imm*4
		c.r[rd] = c.Bus.Read32(ea)
		cycles++
	case 2: // STRB
		ea = rb + imm
		c.Bus.Write8(ea, uint8(c.reg(rd)))
	case 3: // LDRB
		ea = rb + imm
		c.r[rd] = uint32(c.Bus.Read8(ea))
		cycles++
	}
	return cycles + c.Bus.AccessCycles(ea, false)
}

// Formats 10 and 11: halfword immediate load/store and the SP-relative
// load/stores.
func (c *CPU) thumbLoadStoreHalf(op uint32) int {
	rd := op & 7
	cycles := 1

	if op&0x1000 == 0 {
		ea := c.reg(op>>3&7) + (op>>6&0x1F)*2
		if op&0x0800 == 0 { // STRH
			c.Bus.Write16(ea, uint16(c.reg(rd)))
		} else { // LDRH
			c.r[rd] = uint32(c.Bus.Read16(ea))
			cycles++
		}
		return cycles + c.Bus.AccessCycles(ea, false)
	}

	rd = op >> 8 & 7
	ea := c.r[13] + (op&0xFF)*4
	if op&0x0800 == 0 { // STR rd, [SP, #imm]
		c.Bus.Write32(ea, c.reg(rd))
	} else { // LDR rd, [SP, #imm]
		c.r[rd] = c.Bus.Read32(ea)
		cycles++
	}
	return cycles + c.Bus.AccessCycles(ea, false)
}

// Formats 12-14: load address, SP adjustment, push/pop.
func (c *CPU) thumbAddrAndStack(op uint32) int {
	switch {
	case op&0xF000 == 0xA000: // ADD rd, PC/SP, #imm
		rd := op >> 8 & 7
		if op&0x0800 == 0 {
			c.r[rd] = c.r[15]&^2 + (op&0xFF)*4
		} else {
			c.r[rd] = c.r[13] + (op&0xFF)*4
		}
		return 1

	case op&0xFF00 == 0xB000: // ADD SP, #±imm
		off := (op & 0x7F) * 4
		if op&0x80 != 0 {
			c.r[13] -= off
		} else {
			c.r[13] += off
		}
		return 1

	case op&0xF600 == 0xB400:
		return c.thumbPushPop(op)
	}

	log.ModCPU.WarnZ("unknown thumb opcode").
		Hex16("op", uint16(op)).
		Hex32("pc", c.pc).
		End()
	return 1
}

func (c *CPU) thumbPushPop(op uint32) int {
	list := op & 0xFF
	cycles := 1

	if op&0x0800 == 0 { // PUSH, optionally with LR
		addr := c.r[13]
		if op&0x0100 != 0 {
			addr -= 4
			c.Bus.Write32(addr, c.r[14])
			cycles++
		}
		for i := 7; i >= 0; i-- {
			if list>>i&1 != 0 {
				addr -= 4
				c.Bus.Write32(addr, c.r[i])
				cycles++
			}
		}
		c.r[13] = addr
		return cycles
	}

	// POP, optionally with PC
	addr := c.r[13]
	for i := 0; i < 8; i++ {
		if list>>i&1 != 0 {
			c.r[i] = c.Bus.Read32(addr)
			addr += 4
			cycles++
		}
	}
	if op&0x0100 != 0 {
		// The target stays in Thumb state; bit 0 is ignored.
		c.writePC(c.Bus.Read32(addr))
		addr += 4
		cycles += 3
	}
	c.r[13] = addr
	return cycles
}

// Formats 15-17: multiple load/store, conditional branch, SWI.
func (c *CPU) thumbBlockCondSWI(op uint32) int {
	if op&0x1000 == 0 {
		return c.thumbBlockTransfer(op)
	}

	cond := op >> 8 & 0xF
	if cond == 0xF { // SWI; the function number comes from R7
		c.softwareInterrupt(c.r[7])
		return 3
	}
	if cond == 0xE {
		log.ModCPU.WarnZ("unknown thumb opcode").
			Hex16("op", uint16(op)).
			Hex32("pc", c.pc).
			End()
		return 1
	}
	if !c.checkCond(cond) {
		return 1
	}
	c.writePC(c.r[15] + hwio.SignExtend32(op&0xFF, 8)<<1)
	return 3
}

func (c *CPU) thumbBlockTransfer(op uint32) int {
	rb := op >> 8 & 7
	list := op & 0xFF
	load := op&0x0800 != 0
	addr := c.reg(rb)

	// An empty list transfers only PC and moves the base by a full
	// 16-register block.
	if list == 0 {
		if load {
			c.writePC(c.Bus.Read32(addr))
		} else {
			c.Bus.Write32(addr, c.r[15]+2)
		}
		c.r[rb] = addr + 0x40
		return 4
	}

	cycles := 1
	first := true
	final := addr + 4*uint32(bits.OnesCount16(uint16(list)))
	for i := uint32(0); i < 8; i++ {
		if list>>i&1 == 0 {
			continue
		}
		if load {
			c.r[i] = c.Bus.Read32(addr)
		} else {
			val := c.r[i]
			if i == rb && !first {
				val = final
			}
			c.Bus.Write32(addr, val)
		}
		cycles += c.Bus.AccessCycles(addr, !first)
		addr += 4
		first = false
	}
	// The loaded value wins over the writeback when the base is in the
	// list of an LDMIA.
	if !(load && list>>rb&1 != 0) {
		c.r[rb] = final
	}
	if load {
		cycles++
	}
	return cycles
}

// Formats 18 and 19: unconditional branch and the two-instruction BL pair.
// Bit 12 of the suffix selects whether execution continues in half-word or
// full-word state.
func (c *CPU) thumbBranches(instrAddr, op uint32) int {
	switch op >> 11 & 3 {
	case 0: // B
		c.writePC(c.r[15] + hwio.SignExtend32(op&0x7FF, 11)<<1)

	case 2: // BL prefix: upper half of the offset
		c.r[14] = c.r[15] + hwio.SignExtend32(op&0x7FF, 11)<<12
		return 1

	case 1: // BL suffix switching to full-word state
		target := c.r[14] + (op&0x7FF)<<1
		c.r[14] = (instrAddr + 2) | 1
		c.cpsr.SetThumb(false)
		c.writePC(target)

	case 3: // BL suffix
		target := c.r[14] + (op&0x7FF)<<1
		c.r[14] = (instrAddr + 2) | 1
		c.writePC(target)
	}
	return 3
}
