/*
 * rv64emu - Instruction decoder.
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

// Package decoder pulls opcode, register, and immediate fields out of a
// raw 32-bit RISC-V instruction word. It holds no state of its own.
package decoder

// Opcode holds the 7-bit major opcode field, used to dispatch to an
// execute* routine in the cpu package.
const (
	OpImm   uint32 = 0x13 // Integer register-immediate
	OpImm32 uint32 = 0x1B // 32-bit register-immediate (RV64 only)
	Op      uint32 = 0x33 // Integer register-register
	Op32    uint32 = 0x3B // 32-bit register-register (RV64 only)
	Load    uint32 = 0x03
	Store   uint32 = 0x23
	Branch  uint32 = 0x63
	Jal     uint32 = 0x6F
	Jalr    uint32 = 0x67
	Lui     uint32 = 0x37
	AuiPC   uint32 = 0x17
	System  uint32 = 0x73
)

// Opcode returns the 7-bit opcode field.
func Opcode(inst uint32) uint32 {
	return inst & 0x7F
}

// Rd returns the destination register field.
func Rd(inst uint32) uint32 {
	return (inst >> 7) & 0x1F
}

// Funct3 returns the 3-bit minor opcode field.
func Funct3(inst uint32) uint32 {
	return (inst >> 12) & 0x7
}

// Rs1 returns the first source register field.
func Rs1(inst uint32) uint32 {
	return (inst >> 15) & 0x1F
}

// Rs2 returns the second source register field.
func Rs2(inst uint32) uint32 {
	return (inst >> 20) & 0x1F
}

// Funct7 returns the 7-bit extended minor opcode field, used by R-type
// instructions to disambiguate ADD/SUB, SRL/SRA, and the M extension.
func Funct7(inst uint32) uint32 {
	return (inst >> 25) & 0x7F
}

// ImmI sign-extends the 12-bit I-type immediate (LOAD, OP-IMM, JALR).
func ImmI(inst uint32) int64 {
	return int64(int32(inst)) >> 20
}

// ImmS sign-extends the 12-bit S-type immediate (STORE).
func ImmS(inst uint32) int64 {
	imm := ((inst >> 25) << 5) | ((inst >> 7) & 0x1F)
	return int64(int32(imm<<20)) >> 20
}

// ImmB sign-extends the 13-bit B-type immediate (BRANCH). Bit 0 is
// always zero: branch targets are halfword-aligned.
func ImmB(inst uint32) int64 {
	imm := ((inst >> 31) << 12) |
		(((inst >> 7) & 0x1) << 11) |
		(((inst >> 25) & 0x3F) << 5) |
		(((inst >> 8) & 0xF) << 1)
	return int64(int32(imm<<19)) >> 19
}

// ImmU returns the 20-bit U-type immediate (LUI, AUIPC) already shifted
// into its upper-20-bits position.
func ImmU(inst uint32) int64 {
	return int64(int32(inst & 0xFFFFF000))
}

// ImmJ sign-extends the 21-bit J-type immediate (JAL). Bit 0 is always
// zero.
func ImmJ(inst uint32) int64 {
	imm := ((inst >> 31) << 20) |
		(((inst >> 12) & 0xFF) << 12) |
		(((inst >> 20) & 0x1) << 11) |
		(((inst >> 21) & 0x3FF) << 1)
	return int64(int32(imm<<11)) >> 11
}
