/*
 * rv64emu - RISC-V ELF64 segment loader.
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

// Package elfload parses just enough of a 64-bit little-endian
// RISC-V ELF executable to hand its loadable segments and entry point
// to the cpu package. It performs no relocation or dynamic linking.
package elfload

import (
	"encoding/binary"
	"fmt"
)

// ELF identification constants this loader validates.
const (
	classELF64    = 2
	dataLSB       = 1
	machineRISCV  = 0x00F3
	progTypeLoad  = 1
)

var magic = [4]byte{0x7F, 'E', 'L', 'F'}

// Kind discriminates the spec-named categories of ELF-load failure.
type Kind int

const (
	// InvalidMagic means the file does not start with the ELF magic bytes.
	InvalidMagic Kind = iota
	// InvalidClass means the file is not marked ELFCLASS64.
	InvalidClass
	// InvalidEndian means the file is not marked little-endian (ELFDATA2LSB).
	InvalidEndian
	// InvalidMachine means e_machine is not EM_RISCV.
	InvalidMachine
	// ParseError covers truncated headers and out-of-range segment data.
	ParseError
)

func (k Kind) String() string {
	switch k {
	case InvalidMagic:
		return "invalid magic"
	case InvalidClass:
		return "invalid class"
	case InvalidEndian:
		return "invalid endian"
	case InvalidMachine:
		return "invalid machine"
	case ParseError:
		return "parse error"
	default:
		return "unknown"
	}
}

// Error reports why an ELF file was rejected, tagged with a Kind so
// callers can recover the category with a type switch or errors.As
// instead of matching on Reason text.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return "elfload: " + e.Reason
}

func errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Segment is one PT_LOAD program header's payload, ready to be
// written at Vaddr with the tail up to Memsz zero-filled.
type Segment struct {
	Vaddr uint64
	Data  []byte
	Memsz uint64
}

// File is the parsed result of Parse: the entry PC and the loadable
// segments in program-header order.
type File struct {
	Entry    uint64
	Segments []Segment
}

// Parse validates the ELF header and extracts PT_LOAD segments from
// raw. Non-LOAD segments are ignored.
func Parse(raw []byte) (*File, error) {
	if len(raw) < 0x40 {
		return nil, errorf(ParseError, "truncated ELF header (%d bytes)", len(raw))
	}
	if raw[0] != magic[0] || raw[1] != magic[1] || raw[2] != magic[2] || raw[3] != magic[3] {
		return nil, errorf(InvalidMagic, "invalid magic")
	}
	if raw[4] != classELF64 {
		return nil, errorf(InvalidClass, "invalid class %d, want ELF64", raw[4])
	}
	if raw[5] != dataLSB {
		return nil, errorf(InvalidEndian, "invalid endianness %d, want little-endian", raw[5])
	}

	machine := binary.LittleEndian.Uint16(raw[0x12:0x14])
	if machine != machineRISCV {
		return nil, errorf(InvalidMachine, "invalid machine %#x, want %#x", machine, machineRISCV)
	}

	entry := binary.LittleEndian.Uint64(raw[0x18:0x20])
	phoff := binary.LittleEndian.Uint64(raw[0x20:0x28])
	phentsize := binary.LittleEndian.Uint16(raw[0x36:0x38])
	phnum := binary.LittleEndian.Uint16(raw[0x38:0x3A])

	f := &File{Entry: entry}

	for i := uint16(0); i < phnum; i++ {
		off := phoff + uint64(i)*uint64(phentsize)
		if off+0x38 > uint64(len(raw)) {
			return nil, errorf(ParseError, "truncated program header %d", i)
		}
		ph := raw[off:]

		ptype := binary.LittleEndian.Uint32(ph[0x00:0x04])
		if ptype != progTypeLoad {
			continue
		}

		poffset := binary.LittleEndian.Uint64(ph[0x08:0x10])
		pvaddr := binary.LittleEndian.Uint64(ph[0x10:0x18])
		pfilesz := binary.LittleEndian.Uint64(ph[0x20:0x28])
		pmemsz := binary.LittleEndian.Uint64(ph[0x28:0x30])

		if poffset+pfilesz > uint64(len(raw)) {
			return nil, errorf(ParseError, "segment %d data out of range", i)
		}

		f.Segments = append(f.Segments, Segment{
			Vaddr: pvaddr,
			Data:  raw[poffset : poffset+pfilesz],
			Memsz: pmemsz,
		})
	}

	return f, nil
}
