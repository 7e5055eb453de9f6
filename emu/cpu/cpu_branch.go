/*
 * rv64emu - Control-flow instruction families.
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

	"github.com/rcornwell/rv64emu/emu/decoder"
)

// executeBranch returns true if the branch was taken (pc already updated).
func (c *CPU) executeBranch(inst uint32) bool {
	rs1, rs2 := decoder.Rs1(inst), decoder.Rs2(inst)
	a, b := c.Reg(rs1), c.Reg(rs2)

	var taken bool
	switch decoder.Funct3(inst) {
	case 0x0: // BEQ
		taken = a == b
	case 0x1: // BNE
		taken = a != b
	case 0x4: // BLT
		taken = int64(a) < int64(b)
	case 0x5: // BGE
		taken = int64(a) >= int64(b)
	case 0x6: // BLTU
		taken = a < b
	case 0x7: // BGEU
		taken = a >= b
	default:
		panic(fmt.Sprintf("cpu: unsupported BRANCH funct3 %#x", decoder.Funct3(inst)))
	}

	if taken {
		c.pc = uint64(int64(c.pc) + decoder.ImmB(inst))
	}
	return taken
}

func (c *CPU) executeJal(inst uint32) {
	rd := decoder.Rd(inst)
	c.setReg(rd, c.pc+4)
	c.pc = uint64(int64(c.pc) + decoder.ImmJ(inst))
}

func (c *CPU) executeJalr(inst uint32) {
	rd, rs1 := decoder.Rd(inst), decoder.Rs1(inst)
	target := uint64(int64(c.Reg(rs1)) + decoder.ImmI(inst))
	ret := c.pc + 4
	c.pc = target &^ 1
	c.setReg(rd, ret)
}

func (c *CPU) executeLui(inst uint32) {
	c.setReg(decoder.Rd(inst), uint64(decoder.ImmU(inst)))
}

func (c *CPU) executeAuiPC(inst uint32) {
	c.setReg(decoder.Rd(inst), uint64(int64(c.pc)+decoder.ImmU(inst)))
}
