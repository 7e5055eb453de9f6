/*
 * rv64emu - SYSTEM opcode: privileged instructions and CSR ops.
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

	"github.com/rcornwell/rv64emu/emu/csr"
	"github.com/rcornwell/rv64emu/emu/decoder"
)

func (c *CPU) executeSystem(inst uint32) {
	f3 := decoder.Funct3(inst)
	if f3 == 0 {
		c.executePriv(inst)
		return
	}
	c.executeCSR(inst, f3)
	c.pc += 4
}

func (c *CPU) executePriv(inst uint32) {
	f7, rs2 := decoder.Funct7(inst), decoder.Rs2(inst)

	switch {
	case f7 == 0x00 && rs2 == 0x00: // ECALL
		var cause uint64
		switch c.mode {
		case User:
			cause = CauseECallFromU
		case Supervisor:
			cause = CauseECallFromS
		default:
			cause = CauseECallFromM
		}
		c.trap(cause, 0)
	case f7 == 0x00 && rs2 == 0x01: // EBREAK
		c.trap(CauseBreakpoint, 0)
	case f7 == 0x18 && rs2 == 0x02: // MRET
		c.mret()
	case f7 == 0x08 && rs2 == 0x02: // SRET
		c.sret()
	default:
		panic(fmt.Sprintf("cpu: unsupported PRIV (funct7=%#x, rs2=%#x)", f7, rs2))
	}
}

func (c *CPU) mret() {
	c.pc = c.CSR.Read(csr.Mepc)

	oldMPIE := c.CSR.Bit(csr.Mstatus, csr.MstatusMPIEBit)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMIEBit, oldMPIE)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMPIEBit, true)

	mpp := (c.CSR.Read(csr.Mstatus) >> csr.MstatusMPPLow) & 0b11
	c.mode = decodeMPP(mpp)

	mstatus := c.CSR.Read(csr.Mstatus)
	mstatus &^= uint64(0b11) << csr.MstatusMPPLow
	c.CSR.Write(csr.Mstatus, mstatus)
}

func (c *CPU) sret() {
	c.pc = c.CSR.Read(csr.Sepc)

	oldSPIE := c.CSR.Bit(csr.Mstatus, csr.MstatusSPIEBit)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusSIEBit, oldSPIE)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusSPIEBit, true)

	spp := c.CSR.Bit(csr.Mstatus, csr.MstatusSPPBit)
	if spp {
		c.mode = Supervisor
	} else {
		c.mode = User
	}
	c.CSR.SetBit(csr.Mstatus, csr.MstatusSPPBit, false)
}

// executeCSR implements CSRRW/CSRRS/CSRRC and their immediate forms.
// All write rd with the CSR's prior value. Set/clear variants skip the
// write entirely when the mask (rs1 value, or the 5-bit zimm field) is
// zero; write variants always write.
func (c *CPU) executeCSR(inst uint32, f3 uint32) {
	rd, rs1 := decoder.Rd(inst), decoder.Rs1(inst)
	addr := uint16(inst >> 20)
	old := c.CSR.Read(addr)

	var mask uint64
	if f3 >= 5 {
		mask = uint64(rs1) // zimm: 5-bit rs1 field, zero-extended
	} else {
		mask = c.Reg(rs1)
	}

	switch f3 {
	case 0x1, 0x5: // CSRRW, CSRRWI
		c.CSR.Write(addr, mask)
	case 0x2, 0x6: // CSRRS, CSRRSI
		if mask != 0 {
			c.CSR.Write(addr, old|mask)
		}
	case 0x3, 0x7: // CSRRC, CSRRCI
		if mask != 0 {
			c.CSR.Write(addr, old&^mask)
		}
	default:
		panic(fmt.Sprintf("cpu: unsupported CSR funct3 %#x", f3))
	}

	c.setReg(rd, old)
}
