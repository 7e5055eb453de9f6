/*
 * rv64emu - Low level memory.
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

// Package memory implements the flat DRAM backing store mapped at
// DRAMBase by the bus package.
package memory

import "encoding/binary"

const (
	// DRAMBase is the physical address the first byte of DRAM is
	// mapped at.
	DRAMBase uint64 = 0x8000_0000
	// DRAMSize is the default size of the backing store, 128 MiB.
	DRAMSize uint64 = 128 * 1024 * 1024
)

// Memory is a byte-addressable little-endian DRAM store.
type Memory struct {
	mem []byte
}

// New returns a zero-filled DRAM of size bytes.
func New(size uint64) *Memory {
	return &Memory{mem: make([]byte, size)}
}

// Size returns the number of bytes backing the store.
func (m *Memory) Size() uint64 {
	return uint64(len(m.mem))
}

// InRange reports whether [offset, offset+width) lies within the store.
func (m *Memory) InRange(offset uint64, width uint64) bool {
	return offset+width <= uint64(len(m.mem)) && offset+width >= offset
}

// Read8 returns the byte at offset.
func (m *Memory) Read8(offset uint64) uint8 {
	return m.mem[offset]
}

// Write8 stores value at offset.
func (m *Memory) Write8(offset uint64, value uint8) {
	m.mem[offset] = value
}

// Read16 returns the little-endian halfword at offset.
func (m *Memory) Read16(offset uint64) uint16 {
	return binary.LittleEndian.Uint16(m.mem[offset : offset+2])
}

// Write16 stores the little-endian halfword value at offset.
func (m *Memory) Write16(offset uint64, value uint16) {
	binary.LittleEndian.PutUint16(m.mem[offset:offset+2], value)
}

// Read32 returns the little-endian word at offset.
func (m *Memory) Read32(offset uint64) uint32 {
	return binary.LittleEndian.Uint32(m.mem[offset : offset+4])
}

// Write32 stores the little-endian word value at offset.
func (m *Memory) Write32(offset uint64, value uint32) {
	binary.LittleEndian.PutUint32(m.mem[offset:offset+4], value)
}

// Read64 returns the little-endian doubleword at offset.
func (m *Memory) Read64(offset uint64) uint64 {
	return binary.LittleEndian.Uint64(m.mem[offset : offset+8])
}

// Write64 stores the little-endian doubleword value at offset.
func (m *Memory) Write64(offset uint64, value uint64) {
	binary.LittleEndian.PutUint64(m.mem[offset:offset+8], value)
}

// WriteBytes copies src into the store starting at offset.
func (m *Memory) WriteBytes(offset uint64, src []byte) {
	copy(m.mem[offset:], src)
}

// ReadBytes returns a copy of length bytes starting at offset.
func (m *Memory) ReadBytes(offset uint64, length uint64) []byte {
	out := make([]byte, length)
	copy(out, m.mem[offset:offset+length])
	return out
}
