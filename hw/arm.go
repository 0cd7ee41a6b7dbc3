package hw

import (
	"math/bits"

	"advance/emu/log"
	"advance/hw/hwio"
)

// stepARM fetches, decodes and executes one 32-bit instruction.
//
// The dispatch order matters: BX and the PSR transfers overlap the
// data-processing encoding, and the multiply/swap/halfword group shares
// its 1001 signature in bits 7-4.
func (c *CPU) stepARM(instrAddr uint32) int {
	op := c.Bus.Read32(instrAddr)
	if c.tracer != nil {
		c.tracer.trace(c, instrAddr, op)
	}

	fetch := c.Bus.AccessCycles(instrAddr, true)
	if !c.checkCond(op >> 28) {
		return fetch
	}

	switch {
	case op&0x0FFFFFF0 == 0x012FFF10:
		return fetch + c.armBX(op)
	case op&0x0E000000 == 0x0A000000:
		return fetch + c.armBranch(instrAddr, op)
	case op&0x0F000000 == 0x0F000000:
		return fetch + c.armSWI(op)
	case op&0x0E000000 == 0x08000000:
		return fetch + c.armBlockTransfer(op)
	case op&0x0C000000 == 0x04000000:
		return fetch + c.armSingleTransfer(op)
	case op&0x0FC000F0 == 0x00000090:
		return fetch + c.armMultiply(op)
	case op&0x0F8000F0 == 0x00800090:
		return fetch + c.armMultiplyLong(op)
	case op&0x0FB00FF0 == 0x01000090:
		return fetch + c.armSwap(op)
	case op&0x0E000090 == 0x00000090 && op&0x60 != 0:
		return fetch + c.armHalfTransfer(op)
	case op&0x0C000000 == 0x00000000:
		return fetch + c.armALU(op)
	}

	log.ModCPU.WarnZ("unknown arm opcode").
		Hex32("op", op).
		Hex32("pc", instrAddr).
		End()
	return fetch
}

func (c *CPU) armBranch(instrAddr, op uint32) int {
	offset := hwio.SignExtend32(op&0xFFFFFF, 24) << 2
	if op&0x01000000 != 0 {
		c.r[14] = instrAddr + 4
	}
	c.writePC(c.r[15] + offset)
	return 3
}

func (c *CPU) armBX(op uint32) int {
	target := c.reg(op & 0xF)
	c.cpsr.SetThumb(target&1 != 0)
	c.writePC(target)
	return 3
}

func (c *CPU) armSWI(op uint32) int {
	c.softwareInterrupt(op >> 16 & 0xFF)
	return 3
}

// armALU handles the data-processing group, including the operand-2 barrel
// shift and the PSR transfer instructions hiding in the S=0 encodings of
// TST/TEQ/CMP/CMN.
func (c *CPU) armALU(op uint32) int {
	opcode := op >> 21 & 0xF
	setFlags := op&0x00100000 != 0

	if opcode >= 0x8 && opcode <= 0xB && !setFlags {
		return c.armPSRTransfer(op)
	}

	rn := op >> 16 & 0xF
	rd := op >> 12 & 0xF

	// A register-specified shift amount inserts an extra internal cycle,
	// during which R15 reads 4 bytes further ahead.
	regShift := op&0x02000000 == 0 && op&0x10 != 0

	var op2 uint32
	var shCarry bool
	if op&0x02000000 != 0 {
		op2, shCarry = c.barrelShift(op&0xFF, shiftROR, (op>>8&0xF)*2, false)
	} else {
		rm := op & 0xF
		val := c.reg(rm)
		typ := op >> 5 & 3
		if regShift {
			if rm == 15 {
				val += 4
			}
			op2, shCarry = c.barrelShift(val, typ, c.reg(op>>8&0xF)&0xFF, false)
		} else {
			op2, shCarry = c.barrelShift(val, typ, op>>7&0x1F, true)
		}
	}

	a := c.reg(rn)
	if rn == 15 && regShift {
		a += 4
	}

	var res uint32
	logical := false
	writeback := true
	switch opcode {
	case 0x0: // AND
		res, logical = a&op2, true
	case 0x1: // EOR
		res, logical = a^op2, true
	case 0x2: // SUB
		res = c.subFlags(a, op2, setFlags)
	case 0x3: // RSB
		res = c.subFlags(op2, a, setFlags)
	case 0x4: // ADD
		res = c.addFlags(a, op2, 0, setFlags)
	case 0x5: // ADC
		res = c.addFlags(a, op2, c.carryIn(), setFlags)
	case 0x6: // SBC
		res = c.addFlags(a, ^op2, c.carryIn(), setFlags)
	case 0x7: // RSC
		res = c.addFlags(^a, op2, c.carryIn(), setFlags)
	case 0x8: // TST
		res, logical, writeback = a&op2, true, false
	case 0x9: // TEQ
		res, logical, writeback = a^op2, true, false
	case 0xA: // CMP
		res, writeback = c.subFlags(a, op2, true), false
	case 0xB: // CMN
		res, writeback = c.addFlags(a, op2, 0, true), false
	case 0xC: // ORR
		res, logical = a|op2, true
	case 0xD: // MOV
		res, logical = op2, true
	case 0xE: // BIC
		res, logical = a&^op2, true
	case 0xF: // MVN
		res, logical = ^op2, true
	}

	if logical && setFlags {
		c.cpsr.setNZ(res)
		c.cpsr.SetC(shCarry)
	}

	if writeback {
		if rd == 15 && setFlags {
			// Exception return idiom (e.g. SUBS PC, LR, #4).
			c.restoreCPSR()
		}
		c.setReg(rd, res)
	}

	cycles := 1
	if regShift {
		cycles++
	}
	if writeback && rd == 15 {
		cycles += 2
	}
	return cycles
}

func (c *CPU) armPSRTransfer(op uint32) int {
	useSPSR := op&0x00400000 != 0

	if op&0x00200000 == 0 { // MRS
		val := c.cpsr
		if useSPSR {
			val = c.spsr()
		}
		c.setReg(op>>12&0xF, uint32(val))
		return 1
	}

	// MSR
	var val uint32
	if op&0x02000000 != 0 {
		val, _ = c.barrelShift(op&0xFF, shiftROR, (op>>8&0xF)*2, false)
	} else {
		val = c.reg(op & 0xF)
	}

	var mask uint32
	if op&0x00080000 != 0 {
		mask |= 0xFF000000
	}
	if op&0x00040000 != 0 {
		mask |= 0x00FF0000
	}
	if op&0x00020000 != 0 {
		mask |= 0x0000FF00
	}
	if op&0x00010000 != 0 {
		mask |= 0x000000FF
	}
	// User mode may only touch the flags.
	if !c.cpsr.Mode().Privileged() {
		mask &= 0xFF000000
	}

	if useSPSR {
		c.setSPSR(c.spsr()&^PSR(mask) | PSR(val&mask))
	} else {
		c.setCPSR(c.cpsr&^PSR(mask) | PSR(val&mask))
	}
	return 1
}

func (c *CPU) armMultiply(op uint32) int {
	res := c.reg(op&0xF) * c.reg(op>>8&0xF)
	if op&0x00200000 != 0 { // MLA
		res += c.reg(op >> 12 & 0xF)
	}
	c.setReg(op>>16&0xF, res)
	if op&0x00100000 != 0 {
		c.cpsr.setNZ(res)
	}
	return 2
}

func (c *CPU) armMultiplyLong(op uint32) int {
	rdhi := op >> 16 & 0xF
	rdlo := op >> 12 & 0xF

	var res uint64
	if op&0x00400000 != 0 { // signed
		res = uint64(int64(int32(c.reg(op&0xF))) * int64(int32(c.reg(op>>8&0xF))))
	} else {
		res = uint64(c.reg(op&0xF)) * uint64(c.reg(op>>8&0xF))
	}
	if op&0x00200000 != 0 { // accumulate
		res += uint64(c.reg(rdhi))<<32 | uint64(c.reg(rdlo))
	}

	c.setReg(rdlo, uint32(res))
	c.setReg(rdhi, uint32(res>>32))
	if op&0x00100000 != 0 {
		c.cpsr.SetN(res>>63 != 0)
		c.cpsr.SetZ(res == 0)
	}
	return 3
}

func (c *CPU) armSwap(op uint32) int {
	addr := c.reg(op >> 16 & 0xF)
	src := c.reg(op & 0xF)
	rd := op >> 12 & 0xF

	if op&0x00400000 != 0 { // SWPB
		old := c.Bus.Read8(addr)
		c.Bus.Write8(addr, uint8(src))
		c.setReg(rd, uint32(old))
	} else {
		old := c.Bus.Read32(addr)
		c.Bus.Write32(addr, src)
		c.setReg(rd, old)
	}
	return 2 + 2*c.Bus.AccessCycles(addr, false)
}

func (c *CPU) armSingleTransfer(op uint32) int {
	pre := op&0x01000000 != 0
	up := op&0x00800000 != 0
	byteOp := op&0x00400000 != 0
	writeback := op&0x00200000 != 0
	load := op&0x00100000 != 0
	rn := op >> 16 & 0xF
	rd := op >> 12 & 0xF

	var offset uint32
	if op&0x02000000 != 0 {
		offset, _ = c.barrelShift(c.reg(op&0xF), op>>5&3, op>>7&0x1F, true)
	} else {
		offset = op & 0xFFF
	}

	base := c.reg(rn)
	if !up {
		offset = -offset
	}
	ea := base
	if pre {
		ea += offset
	}

	cycles := 1 + c.Bus.AccessCycles(ea, false)

	if load {
		var val uint32
		if byteOp {
			val = uint32(c.Bus.Read8(ea))
		} else {
			val = c.Bus.Read32(ea)
		}
		if !pre || writeback {
			c.setReg(rn, base+offset)
		}
		// The loaded value wins over the writeback when rd == rn.
		c.setReg(rd, val)
		cycles++
	} else {
		val := c.reg(rd)
		if rd == 15 {
			val += 4
		}
		if byteOp {
			c.Bus.Write8(ea, uint8(val))
		} else {
			c.Bus.Write32(ea, val)
		}
		if !pre || writeback {
			c.setReg(rn, base+offset)
		}
	}
	return cycles
}

func (c *CPU) armHalfTransfer(op uint32) int {
	pre := op&0x01000000 != 0
	up := op&0x00800000 != 0
	writeback := op&0x00200000 != 0
	load := op&0x00100000 != 0
	rn := op >> 16 & 0xF
	rd := op >> 12 & 0xF
	typ := op >> 5 & 3

	var offset uint32
	if op&0x00400000 != 0 {
		offset = op>>4&0xF0 | op&0xF
	} else {
		offset = c.reg(op & 0xF)
	}

	base := c.reg(rn)
	if !up {
		offset = -offset
	}
	ea := base
	if pre {
		ea += offset
	}

	cycles := 1 + c.Bus.AccessCycles(ea, false)

	if load {
		var val uint32
		switch typ {
		case 1: // LDRH (misaligned reads rotate, like the bus does)
			val = uint32(c.Bus.Read16(ea))
		case 2: // LDRSB
			val = hwio.SignExtend32(uint32(c.Bus.Read8(ea)), 8)
		case 3: // LDRSH; an odd address degrades to a signed byte load
			if ea&1 != 0 {
				val = hwio.SignExtend32(uint32(c.Bus.Read8(ea)), 8)
			} else {
				val = hwio.SignExtend32(uint32(c.Bus.Read16(ea)), 16)
			}
		}
		if !pre || writeback {
			c.setReg(rn, base+offset)
		}
		c.setReg(rd, val)
		cycles++
	} else { // STRH
		c.Bus.Write16(ea, uint16(c.reg(rd)))
		if !pre || writeback {
			c.setReg(rn, base+offset)
		}
	}
	return cycles
}

func (c *CPU) armBlockTransfer(op uint32) int {
	pre := op&0x01000000 != 0
	up := op&0x00800000 != 0
	sbit := op&0x00400000 != 0
	writeback := op&0x00200000 != 0
	load := op&0x00100000 != 0
	rn := op >> 16 & 0xF
	list := op & 0xFFFF

	base := c.reg(rn)
	var final uint32

	// An empty list transfers only PC and moves the base by a full
	// 16-register block.
	if list == 0 {
		list = 0x8000
		if up {
			final = base + 0x40
		} else {
			final = base - 0x40
		}
	} else {
		n := uint32(bits.OnesCount16(uint16(list)))
		if up {
			final = base + 4*n
		} else {
			final = base - 4*n
		}
	}

	// Normalize the descending forms into an ascending walk from the
	// lowest address touched.
	addr := base
	if up {
		if pre {
			addr += 4
		}
	} else {
		addr = final
		if !pre {
			addr += 4
		}
	}

	// S without PC in a load (or any store with S) targets the User bank.
	userBank := sbit && (!load || list&0x8000 == 0)
	mode := c.cpsr.Mode()
	if userBank && mode != ModeUser && mode != ModeSystem {
		c.banks.swap(&c.r, mode, ModeUser)
		defer c.banks.swap(&c.r, ModeUser, mode)
	}

	cycles := 1
	first := true
	for i := uint32(0); i < 16; i++ {
		if list>>i&1 == 0 {
			continue
		}
		if load {
			val := c.Bus.Read32(addr)
			if i == 15 {
				if sbit {
					c.restoreCPSR()
				} else {
					// The loaded low bit selects the instruction set.
					c.cpsr.SetThumb(val&1 != 0)
				}
				c.writePC(val)
			} else {
				c.r[i] = val
			}
		} else {
			val := c.r[i]
			switch {
			case i == 15:
				val += 4
			case i == rn && !first:
				// A stored base after the first slot sees the
				// written-back value.
				val = final
			}
			c.Bus.Write32(addr, val)
		}
		cycles += c.Bus.AccessCycles(addr, !first)
		addr += 4
		first = false
	}

	if writeback && !(load && list>>rn&1 != 0) {
		c.setReg(rn, final)
	}
	if load {
		cycles++
	}
	return cycles
}
