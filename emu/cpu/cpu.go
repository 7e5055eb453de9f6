/*
 * rv64emu - CPU core.
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

// Package cpu implements the RV64I+M fetch/decode/execute loop, the
// privileged architecture's trap entry/return sequence, and interrupt
// prioritization against the bus's device lines.
package cpu

import (
	"fmt"

	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/csr"
	"github.com/rcornwell/rv64emu/emu/decoder"
	"github.com/rcornwell/rv64emu/emu/memory"
)

// Mode is a RISC-V privilege level.
type Mode uint8

// Privilege modes this simulator implements.
const (
	User       Mode = 0
	Supervisor Mode = 1
	Machine    Mode = 3
)

// Exception and interrupt cause codes used by trap().
const (
	CauseBreakpoint   = 3
	CauseECallFromU   = 8
	CauseECallFromS   = 9
	CauseECallFromM   = 11
	CauseSoftwareIRQ  = 3
	CauseTimerIRQ     = 7
	CauseExternalIRQ = 11
	initialMisa      = 0x8000_0000_0014_0100
)

// CPU is a single RV64I+M hart: register file, PC, privilege mode,
// CSR file, and the bus it fetches/loads/stores through.
type CPU struct {
	regs   [32]uint64
	pc     uint64
	mode   Mode
	CSR    *csr.File
	Bus    *bus.Bus
	Halted bool
}

// New returns a hart reset to its architectural initial state: all
// registers zero, PC at DRAM base, Machine mode, MISA/MHARTID set.
func New(b *bus.Bus) *CPU {
	c := &CPU{
		CSR:  csr.New(),
		Bus:  b,
		pc:   memory.DRAMBase,
		mode: Machine,
	}
	c.CSR.Write(csr.Misa, initialMisa)
	c.CSR.Write(csr.Mhartid, 0)
	return c
}

// PC returns the current program counter.
func (c *CPU) PC() uint64 { return c.pc }

// SetPC sets the program counter, used by loaders to set the entry point.
func (c *CPU) SetPC(pc uint64) { c.pc = pc }

// Mode returns the current privilege mode.
func (c *CPU) Mode() Mode { return c.mode }

// Reg returns the value of register r (0..31). x0 always reads zero.
func (c *CPU) Reg(r uint32) uint64 {
	if r == 0 {
		return 0
	}
	return c.regs[r]
}

// setReg writes value into register r. Writes to x0 are silently discarded.
func (c *CPU) setReg(r uint32, value uint64) {
	if r == 0 {
		return
	}
	c.regs[r] = value
}

// LoadProgram writes a raw little-endian instruction image at DRAMBase
// and leaves PC at DRAMBase, for the "raw" loading form.
func (c *CPU) LoadProgram(words []uint32) {
	for i, w := range words {
		c.Bus.Write32(memory.DRAMBase+uint64(i*4), w)
	}
}

// LoadSegment writes data at vaddr then zero-fills the tail out to
// memsz, per the ELF PT_LOAD contract.
func (c *CPU) LoadSegment(vaddr uint64, data []byte, memsz uint64) {
	c.Bus.WriteBytes(vaddr, data)
	for i := uint64(len(data)); i < memsz; i++ {
		c.Bus.Write8(vaddr+i, 0)
	}
}

// Run steps the hart until Halted is set.
func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
}

// Step executes exactly one pass of the architectural step order:
// drain host input, tick the timer, refresh MIP from device lines,
// take a pending interrupt if one is enabled, else fetch/decode/execute
// one instruction.
func (c *CPU) Step() {
	c.Bus.ReceiveInput()
	c.Bus.Tick()
	c.syncMIP()

	if c.checkPendingInterrupts() {
		return
	}

	inst := c.Bus.Read32(c.pc)
	c.execute(inst)
}

func (c *CPU) syncMIP() {
	c.CSR.SetBit(csr.Mip, csr.MTIPBit, c.Bus.TimerPending())
	c.CSR.SetBit(csr.Mip, csr.MSIPBit, c.Bus.SoftwarePending())
	c.CSR.SetBit(csr.Mip, csr.MEIPBit, c.Bus.UartPending())
}

// checkPendingInterrupts takes the highest-priority enabled, pending
// interrupt (software, then timer, then external) and returns true if
// one was taken.
func (c *CPU) checkPendingInterrupts() bool {
	if !c.CSR.Bit(csr.Mstatus, csr.MstatusMIEBit) {
		return false
	}

	mip := c.CSR.Read(csr.Mip)
	mie := c.CSR.Read(csr.Mie)

	switch {
	case mip&mie&(1<<csr.MSIPBit) != 0:
		c.trap(csr.InterruptBit|CauseSoftwareIRQ, 0)
	case mip&mie&(1<<csr.MTIPBit) != 0:
		c.trap(csr.InterruptBit|CauseTimerIRQ, 0)
	case mip&mie&(1<<csr.MEIPBit) != 0:
		c.trap(csr.InterruptBit|CauseExternalIRQ, 0)
	default:
		return false
	}
	return true
}

// trap enters Machine mode with the given cause/tval, per spec §4.7.5.
func (c *CPU) trap(cause uint64, tval uint64) {
	c.CSR.Write(csr.Mepc, c.pc)
	c.CSR.Write(csr.Mcause, cause)
	c.CSR.Write(csr.Mtval, tval)

	oldMIE := c.CSR.Bit(csr.Mstatus, csr.MstatusMIEBit)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMPIEBit, oldMIE)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMIEBit, false)

	mstatus := c.CSR.Read(csr.Mstatus)
	mstatus &^= uint64(0b11) << csr.MstatusMPPLow
	mstatus |= uint64(c.mode&0b11) << csr.MstatusMPPLow
	c.CSR.Write(csr.Mstatus, mstatus)

	c.mode = Machine

	mtvec := c.CSR.Read(csr.Mtvec)
	base := mtvec &^ 0b11
	modeBits := mtvec & 0b11
	if modeBits == 0 || cause&csr.InterruptBit == 0 {
		c.pc = base
	} else {
		c.pc = base + 4*(cause&0x3FF)
	}
}

func decodeMPP(mpp uint64) Mode {
	switch mpp {
	case 0:
		return User
	case 1:
		return Supervisor
	case 3:
		return Machine
	default:
		panic(fmt.Sprintf("cpu: invalid MPP encoding %d", mpp))
	}
}

func (c *CPU) execute(inst uint32) {
	op := decoder.Opcode(inst)
	switch op {
	case decoder.OpImm:
		c.executeOpImm(inst)
		c.pc += 4
	case decoder.OpImm32:
		c.executeOpImm32(inst)
		c.pc += 4
	case decoder.Op:
		c.executeOp(inst)
		c.pc += 4
	case decoder.Op32:
		c.executeOp32(inst)
		c.pc += 4
	case decoder.Load:
		c.executeLoad(inst)
		c.pc += 4
	case decoder.Store:
		c.executeStore(inst)
		c.pc += 4
	case decoder.Branch:
		if !c.executeBranch(inst) {
			c.pc += 4
		}
	case decoder.Jal:
		c.executeJal(inst)
	case decoder.Jalr:
		c.executeJalr(inst)
	case decoder.Lui:
		c.executeLui(inst)
		c.pc += 4
	case decoder.AuiPC:
		c.executeAuiPC(inst)
		c.pc += 4
	case decoder.System:
		c.executeSystem(inst)
	default:
		panic(fmt.Sprintf("cpu: unsupported opcode %#x at pc %#x", op, c.pc))
	}
}
