/*
 * rv64emu - System bus.
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

// Package bus address-decodes CPU accesses across CLINT, UART, and
// DRAM, and tracks the LR/SC reservation set that couples the CPU to
// memory.
package bus

import (
	"fmt"

	"github.com/rcornwell/rv64emu/emu/clint"
	"github.com/rcornwell/rv64emu/emu/memory"
	"github.com/rcornwell/rv64emu/emu/uart"
)

// Bus routes reads and writes to the three mapped regions and holds
// the per-hart reservation table LR/SC consult.
type Bus struct {
	Clint *clint.Clint
	Uart  *uart.Uart
	mem   *memory.Memory

	reservations map[uint64]uint64 // hart id -> reserved address
}

// New returns a bus with a fresh DRAM of the given size and the
// supplied UART terminal.
func New(dramSize uint64, term uart.Terminal) *Bus {
	return &Bus{
		Clint:        clint.New(),
		Uart:         uart.New(term),
		mem:          memory.New(dramSize),
		reservations: make(map[uint64]uint64),
	}
}

func inRange(addr, base, size uint64) bool {
	return addr >= base && addr < base+size
}

// Read8 routes a 1-byte read.
func (b *Bus) Read8(addr uint64) uint8 {
	switch {
	case inRange(addr, uart.Base, uart.Size):
		return b.Uart.Read8(addr - uart.Base)
	case addr >= memory.DRAMBase:
		return b.mem.Read8(addr - memory.DRAMBase)
	default:
		panic(fmt.Sprintf("bus: unmapped read8 at %#x", addr))
	}
}

// Read16 routes a 2-byte read.
func (b *Bus) Read16(addr uint64) uint16 {
	switch {
	case inRange(addr, uart.Base, uart.Size):
		return uint16(b.Uart.Read8(addr - uart.Base))
	case addr >= memory.DRAMBase:
		return b.mem.Read16(addr - memory.DRAMBase)
	default:
		panic(fmt.Sprintf("bus: unmapped read16 at %#x", addr))
	}
}

// Read32 routes a 4-byte read.
func (b *Bus) Read32(addr uint64) uint32 {
	switch {
	case inRange(addr, clint.Base, clint.Size):
		return b.Clint.Read32(addr - clint.Base)
	case inRange(addr, uart.Base, uart.Size):
		return uint32(b.Uart.Read8(addr - uart.Base))
	case addr >= memory.DRAMBase:
		return b.mem.Read32(addr - memory.DRAMBase)
	default:
		panic(fmt.Sprintf("bus: unmapped read32 at %#x", addr))
	}
}

// Read64 routes an 8-byte read.
func (b *Bus) Read64(addr uint64) uint64 {
	switch {
	case inRange(addr, clint.Base, clint.Size):
		return b.Clint.Read64(addr - clint.Base)
	case inRange(addr, uart.Base, uart.Size):
		return uint64(b.Uart.Read8(addr - uart.Base))
	case addr >= memory.DRAMBase:
		return b.mem.Read64(addr - memory.DRAMBase)
	default:
		panic(fmt.Sprintf("bus: unmapped read64 at %#x", addr))
	}
}

// Write8 routes a 1-byte write and invalidates any reservation at addr.
func (b *Bus) Write8(addr uint64, value uint8) {
	b.invalidateReservations(addr)
	switch {
	case inRange(addr, uart.Base, uart.Size):
		b.Uart.Write8(addr-uart.Base, value)
	case addr >= memory.DRAMBase:
		b.mem.Write8(addr-memory.DRAMBase, value)
	default:
		panic(fmt.Sprintf("bus: unmapped write8 at %#x", addr))
	}
}

// Write16 routes a 2-byte write and invalidates any reservation at addr.
func (b *Bus) Write16(addr uint64, value uint16) {
	b.invalidateReservations(addr)
	switch {
	case inRange(addr, uart.Base, uart.Size):
		b.Uart.Write8(addr-uart.Base, byte(value))
	case addr >= memory.DRAMBase:
		b.mem.Write16(addr-memory.DRAMBase, value)
	default:
		panic(fmt.Sprintf("bus: unmapped write16 at %#x", addr))
	}
}

// Write32 routes a 4-byte write and invalidates any reservation at addr.
func (b *Bus) Write32(addr uint64, value uint32) {
	b.invalidateReservations(addr)
	switch {
	case inRange(addr, clint.Base, clint.Size):
		b.Clint.Write32(addr-clint.Base, value)
	case inRange(addr, uart.Base, uart.Size):
		b.Uart.Write8(addr-uart.Base, byte(value))
	case addr >= memory.DRAMBase:
		b.mem.Write32(addr-memory.DRAMBase, value)
	default:
		panic(fmt.Sprintf("bus: unmapped write32 at %#x", addr))
	}
}

// Write64 routes an 8-byte write and invalidates any reservation at addr.
func (b *Bus) Write64(addr uint64, value uint64) {
	b.invalidateReservations(addr)
	switch {
	case inRange(addr, clint.Base, clint.Size):
		b.Clint.Write64(addr-clint.Base, value)
	case inRange(addr, uart.Base, uart.Size):
		b.Uart.Write8(addr-uart.Base, byte(value))
	case addr >= memory.DRAMBase:
		b.mem.Write64(addr-memory.DRAMBase, value)
	default:
		panic(fmt.Sprintf("bus: unmapped write64 at %#x", addr))
	}
}

// WriteBytes writes a segment of bytes starting at addr, used by the
// ELF/raw loaders. It does not disturb reservations: loading happens
// before any hart runs.
func (b *Bus) WriteBytes(addr uint64, data []byte) {
	b.mem.WriteBytes(addr-memory.DRAMBase, data)
}

// Tick advances the CLINT's free-running timer by one.
func (b *Bus) Tick() {
	b.Clint.Tick()
}

// TimerPending mirrors the CLINT's timer-compare predicate.
func (b *Bus) TimerPending() bool {
	return b.Clint.TimerPending()
}

// SoftwarePending mirrors the CLINT's MSIP latch.
func (b *Bus) SoftwarePending() bool {
	return b.Clint.SoftwarePending()
}

// UartPending mirrors the UART's interrupt line.
func (b *Bus) UartPending() bool {
	return b.Uart.InterruptPending()
}

// ReceiveInput drains at most one host byte into the UART's RX FIFO.
func (b *Bus) ReceiveInput() {
	b.Uart.ReceiveInput()
}

// PushUartInput is the host-test injection hook.
func (b *Bus) PushUartInput(by byte) {
	b.Uart.PushInput(by)
}

// Reserve records a load-reserved at addr for hartID.
func (b *Bus) Reserve(hartID uint64, addr uint64) {
	b.reservations[hartID] = addr
}

// CheckReservation reports whether hartID still holds a live
// reservation at addr.
func (b *Bus) CheckReservation(hartID uint64, addr uint64) bool {
	reserved, ok := b.reservations[hartID]
	return ok && reserved == addr
}

// ClearReservation drops hartID's reservation, successful or not.
func (b *Bus) ClearReservation(hartID uint64) {
	delete(b.reservations, hartID)
}

func (b *Bus) invalidateReservations(addr uint64) {
	for hart, reserved := range b.reservations {
		if reserved == addr {
			delete(b.reservations, hart)
		}
	}
}
