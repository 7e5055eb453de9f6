/*
 * rv64emu - Load/store instruction families.
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

func (c *CPU) executeLoad(inst uint32) {
	rd, rs1 := decoder.Rd(inst), decoder.Rs1(inst)
	addr := uint64(int64(c.Reg(rs1)) + decoder.ImmI(inst))

	switch decoder.Funct3(inst) {
	case 0x0: // LB
		c.setReg(rd, uint64(int64(int8(c.Bus.Read8(addr)))))
	case 0x1: // LH
		c.setReg(rd, uint64(int64(int16(c.Bus.Read16(addr)))))
	case 0x2: // LW
		c.setReg(rd, uint64(int64(int32(c.Bus.Read32(addr)))))
	case 0x3: // LD
		c.setReg(rd, c.Bus.Read64(addr))
	case 0x4: // LBU
		c.setReg(rd, uint64(c.Bus.Read8(addr)))
	case 0x5: // LHU
		c.setReg(rd, uint64(c.Bus.Read16(addr)))
	case 0x6: // LWU
		c.setReg(rd, uint64(c.Bus.Read32(addr)))
	default:
		panic(fmt.Sprintf("cpu: unsupported LOAD funct3 %#x", decoder.Funct3(inst)))
	}
}

func (c *CPU) executeStore(inst uint32) {
	rs1, rs2 := decoder.Rs1(inst), decoder.Rs2(inst)
	addr := uint64(int64(c.Reg(rs1)) + decoder.ImmS(inst))
	val := c.Reg(rs2)

	switch decoder.Funct3(inst) {
	case 0x0: // SB
		c.Bus.Write8(addr, byte(val))
	case 0x1: // SH
		c.Bus.Write16(addr, uint16(val))
	case 0x2: // SW
		c.Bus.Write32(addr, uint32(val))
	case 0x3: // SD
		c.Bus.Write64(addr, val)
	default:
		panic(fmt.Sprintf("cpu: unsupported STORE funct3 %#x", decoder.Funct3(inst)))
	}
}
