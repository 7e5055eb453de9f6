/*
 * rv64emu - Core-local interruptor.
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

// Package clint implements the core-local interruptor: the timer and
// software-interrupt device every RISC-V platform exposes at a fixed
// MMIO window.
package clint

const (
	// Base is the physical address the CLINT window starts at.
	Base uint64 = 0x0200_0000
	// Size is the span of the CLINT MMIO window.
	Size uint64 = 0x10000

	msipOffset     uint64 = 0x0000
	mtimecmpOffset uint64 = 0x4000
	mtimeOffset    uint64 = 0xBFF8
)

// Clint holds the per-hart timer compare value, the free-running
// timer, and the software-interrupt latch.
type Clint struct {
	mtime    uint64
	mtimecmp uint64
	msip     bool
}

// New returns a CLINT with mtime, mtimecmp, and msip all zero.
func New() *Clint {
	return &Clint{}
}

// Read32 services a 4-byte read at offset within the CLINT window.
func (c *Clint) Read32(offset uint64) uint32 {
	switch offset {
	case msipOffset:
		if c.msip {
			return 1
		}
		return 0
	default:
		panic("clint: unimplemented 32-bit register")
	}
}

// Write32 services a 4-byte write at offset within the CLINT window.
func (c *Clint) Write32(offset uint64, value uint32) {
	switch offset {
	case msipOffset:
		c.msip = value != 0
	default:
		panic("clint: unimplemented 32-bit register")
	}
}

// Read64 services an 8-byte read at offset within the CLINT window.
func (c *Clint) Read64(offset uint64) uint64 {
	switch offset {
	case mtimecmpOffset:
		return c.mtimecmp
	case mtimeOffset:
		return c.mtime
	default:
		panic("clint: unimplemented 64-bit register")
	}
}

// Write64 services an 8-byte write at offset within the CLINT window.
func (c *Clint) Write64(offset uint64, value uint64) {
	switch offset {
	case mtimecmpOffset:
		c.mtimecmp = value
	case mtimeOffset:
		c.mtime = value
	default:
		panic("clint: unimplemented 64-bit register")
	}
}

// Tick advances the free-running timer by one.
func (c *Clint) Tick() {
	c.mtime++
}

// TimerPending reports whether mtime has reached mtimecmp, the
// condition the cpu package latches into MIP.MTIP.
func (c *Clint) TimerPending() bool {
	return c.mtime >= c.mtimecmp
}

// SoftwarePending reports the latched software-interrupt request.
func (c *Clint) SoftwarePending() bool {
	return c.msip
}
