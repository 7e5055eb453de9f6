/*
 * rv64emu - Integer ALU instruction families.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package cpu

import (
	"fmt"
	"math/bits"

	"github.com/rcornwell/rv64emu/emu/decoder"
)

func (c *CPU) executeOpImm(inst uint32) {
	rd, rs1 := decoder.Rd(inst), decoder.Rs1(inst)
	imm := decoder.ImmI(inst)
	val := c.Reg(rs1)

	switch decoder.Funct3(inst) {
	case 0x0: // ADDI
		c.setReg(rd, val+uint64(imm))
	case 0x1: // SLLI
		c.setReg(rd, val<<(uint(imm)&0x3F))
	case 0x2: // SLTI
		c.setReg(rd, boolU64(int64(val) < imm))
	case 0x3: // SLTIU
		c.setReg(rd, boolU64(val < uint64(imm)))
	case 0x4: // XORI
		c.setReg(rd, val^uint64(imm))
	case 0x5: // SRLI/SRAI
		shamt := uint(imm) & 0x3F
		if decoder.Funct7(inst) == 0x20 {
			c.setReg(rd, uint64(int64(val)>>shamt))
		} else {
			c.setReg(rd, val>>shamt)
		}
	case 0x6: // ORI
		c.setReg(rd, val|uint64(imm))
	case 0x7: // ANDI
		c.setReg(rd, val&uint64(imm))
	default:
		panic(fmt.Sprintf("cpu: unsupported OP-IMM funct3 %#x", decoder.Funct3(inst)))
	}
}

func (c *CPU) executeOpImm32(inst uint32) {
	rd, rs1 := decoder.Rd(inst), decoder.Rs1(inst)
	imm := decoder.ImmI(inst)
	val := int32(c.Reg(rs1))

	switch decoder.Funct3(inst) {
	case 0x0: // ADDIW
		c.setReg(rd, signExt32(val+int32(imm)))
	case 0x1: // SLLIW
		shamt := uint(imm) & 0x3F
		c.setReg(rd, signExt32(val<<shamt))
	case 0x5: // SRLIW/SRAIW
		shamt := uint(imm) & 0x3F
		if decoder.Funct7(inst) == 0x20 {
			c.setReg(rd, signExt32(val>>shamt))
		} else {
			c.setReg(rd, signExt32(int32(uint32(val)>>shamt)))
		}
	default:
		panic(fmt.Sprintf("cpu: unsupported OP-IMM-32 funct3 %#x", decoder.Funct3(inst)))
	}
}

func (c *CPU) executeOp(inst uint32) {
	rd, rs1, rs2 := decoder.Rd(inst), decoder.Rs1(inst), decoder.Rs2(inst)
	a, b := c.Reg(rs1), c.Reg(rs2)
	f3, f7 := decoder.Funct3(inst), decoder.Funct7(inst)

	if f7 == 0x01 {
		c.setReg(rd, mExtOp(f3, a, b))
		return
	}

	switch f3 {
	case 0x0: // ADD/SUB
		if f7 == 0x20 {
			c.setReg(rd, a-b)
		} else {
			c.setReg(rd, a+b)
		}
	case 0x1: // SLL
		c.setReg(rd, a<<(b&0x3F))
	case 0x2: // SLT
		c.setReg(rd, boolU64(int64(a) < int64(b)))
	case 0x3: // SLTU
		c.setReg(rd, boolU64(a < b))
	case 0x4: // XOR
		c.setReg(rd, a^b)
	case 0x5: // SRL/SRA
		if f7 == 0x20 {
			c.setReg(rd, uint64(int64(a)>>(b&0x3F)))
		} else {
			c.setReg(rd, a>>(b&0x3F))
		}
	case 0x6: // OR
		c.setReg(rd, a|b)
	case 0x7: // AND
		c.setReg(rd, a&b)
	default:
		panic(fmt.Sprintf("cpu: unsupported OP funct3 %#x", f3))
	}
}

func mExtOp(f3 uint32, a, b uint64) uint64 {
	switch f3 {
	case 0x0: // MUL
		return uint64(int64(a) * int64(b))
	case 0x1: // MULH
		return mulhSigned(int64(a), int64(b))
	case 0x2: // MULHSU
		return mulhSignedUnsigned(int64(a), b)
	case 0x3: // MULHU
		hi, _ := bits.Mul64(a, b)
		return hi
	case 0x4: // DIV
		sa, sb := int64(a), int64(b)
		if sb == 0 {
			return ^uint64(0)
		}
		if sa == -1<<63 && sb == -1 {
			return a
		}
		return uint64(sa / sb)
	case 0x5: // DIVU
		if b == 0 {
			return ^uint64(0)
		}
		return a / b
	case 0x6: // REM
		sa, sb := int64(a), int64(b)
		if sb == 0 {
			return a
		}
		if sa == -1<<63 && sb == -1 {
			return 0
		}
		return uint64(sa % sb)
	case 0x7: // REMU
		if b == 0 {
			return a
		}
		return a % b
	default:
		panic(fmt.Sprintf("cpu: unsupported M-extension funct3 %#x", f3))
	}
}

func (c *CPU) executeOp32(inst uint32) {
	rd, rs1, rs2 := decoder.Rd(inst), decoder.Rs1(inst), decoder.Rs2(inst)
	a, b := int32(c.Reg(rs1)), int32(c.Reg(rs2))
	f3, f7 := decoder.Funct3(inst), decoder.Funct7(inst)

	if f7 == 0x01 {
		c.setReg(rd, mExtOp32(f3, a, b))
		return
	}

	switch f3 {
	case 0x0: // ADDW/SUBW
		if f7 == 0x20 {
			c.setReg(rd, signExt32(a-b))
		} else {
			c.setReg(rd, signExt32(a+b))
		}
	case 0x1: // SLLW
		c.setReg(rd, signExt32(a<<(uint32(b)&0x1F)))
	case 0x5: // SRLW/SRAW
		if f7 == 0x20 {
			c.setReg(rd, signExt32(a>>(uint32(b)&0x1F)))
		} else {
			c.setReg(rd, signExt32(int32(uint32(a)>>(uint32(b)&0x1F))))
		}
	default:
		panic(fmt.Sprintf("cpu: unsupported OP-32 funct3 %#x", f3))
	}
}

func mExtOp32(f3 uint32, a, b int32) uint64 {
	switch f3 {
	case 0x0: // MULW
		return signExt32(a * b)
	case 0x4: // DIVW
		if b == 0 {
			return ^uint64(0)
		}
		if a == -1<<31 && b == -1 {
			return signExt32(a)
		}
		return signExt32(a / b)
	case 0x5: // DIVUW
		ua, ub := uint32(a), uint32(b)
		if ub == 0 {
			return ^uint64(0)
		}
		return signExt32(int32(ua / ub))
	case 0x6: // REMW
		if b == 0 {
			return signExt32(a)
		}
		if a == -1<<31 && b == -1 {
			return 0
		}
		return signExt32(a % b)
	case 0x7: // REMUW
		ua, ub := uint32(a), uint32(b)
		if ub == 0 {
			return signExt32(a)
		}
		return signExt32(int32(ua % ub))
	default:
		panic(fmt.Sprintf("cpu: unsupported 32-bit M-extension funct3 %#x", f3))
	}
}

func boolU64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func signExt32(v int32) uint64 {
	return uint64(int64(v))
}
