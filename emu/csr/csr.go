/*
 * rv64emu - Control and status register file.
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

// Package csr implements the machine and supervisor control/status
// register file used by the cpu package for trap handling and
// interrupt control.
package csr

// Addresses of the CSRs the cpu package reads and writes directly.
// An address not in this list is still readable/writable through
// Read/Write: unknown CSRs default to zero, matching a real core's
// WARL-zero behavior for registers this simulator doesn't implement.
const (
	Mstatus  uint16 = 0x300
	Misa     uint16 = 0x301
	Mie      uint16 = 0x304
	Mtvec    uint16 = 0x305
	Mscratch uint16 = 0x340
	Mepc     uint16 = 0x341
	Mcause   uint16 = 0x342
	Mtval    uint16 = 0x343
	Mip      uint16 = 0x344
	Mhartid  uint16 = 0xF14

	Sstatus  uint16 = 0x100
	Sie      uint16 = 0x104
	Stvec    uint16 = 0x105
	Sscratch uint16 = 0x140
	Sepc     uint16 = 0x141
	Scause   uint16 = 0x142
	Stval    uint16 = 0x143
	Sip      uint16 = 0x144
)

// MSTATUS bit positions touched by trap entry/exit and CPU-mode logic.
const (
	MstatusMIEBit  = 3
	MstatusMPIEBit = 7
	MstatusMPPLow  = 11 // Two-bit field, bits 11-12.
	MstatusSIEBit  = 1
	MstatusSPIEBit = 5
	MstatusSPPBit  = 8 // One-bit field: 0 = user, 1 = supervisor.
)

// MIE/MIP bit positions for the three interrupt sources this
// simulator raises: software, timer, and external.
const (
	MSIPBit = 3
	MTIPBit = 7
	MEIPBit = 11
	SSIPBit = 1
	STIPBit = 5
	SEIPBit = 9
)

// InterruptBit marks MCAUSE/SCAUSE as an interrupt rather than an
// exception, per the RISC-V privileged spec's cause encoding.
const InterruptBit uint64 = 1 << 63

// File is a sparse CSR file: addresses never written read back as
// zero, matching original_source's HashMap-backed CSR model.
type File struct {
	regs map[uint16]uint64
}

// New returns an empty CSR file.
func New() *File {
	return &File{regs: make(map[uint16]uint64)}
}

// Read returns the value at addr, or zero if it has never been written.
func (f *File) Read(addr uint16) uint64 {
	return f.regs[addr]
}

// Write stores value at addr.
func (f *File) Write(addr uint16, value uint64) {
	f.regs[addr] = value
}

// Bit returns the value of the single bit at pos in the register at addr.
func (f *File) Bit(addr uint16, pos uint) bool {
	return f.regs[addr]&(1<<pos) != 0
}

// SetBit sets or clears the single bit at pos in the register at addr.
func (f *File) SetBit(addr uint16, pos uint, set bool) {
	if set {
		f.regs[addr] |= 1 << pos
	} else {
		f.regs[addr] &^= 1 << pos
	}
}
