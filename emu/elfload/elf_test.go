package elfload

import (
	"encoding/binary"
	"errors"
	"testing"
)

func wantKind(t *testing.T, err error, want Kind) {
	t.Helper()
	var elfErr *Error
	if !errors.As(err, &elfErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if elfErr.Kind != want {
		t.Errorf("Kind = %v, want %v", elfErr.Kind, want)
	}
}

// buildMinimalELF constructs a header + one PT_LOAD program header
// with the given payload, entry point, and vaddr.
func buildMinimalELF(t *testing.T, entry, vaddr uint64, payload []byte, memsz uint64) []byte {
	t.Helper()
	const headerSize = 0x40
	const phSize = 0x38
	phoff := uint64(headerSize)
	dataOff := phoff + phSize

	buf := make([]byte, dataOff+uint64(len(payload)))
	copy(buf[0:4], magic[:])
	buf[4] = classELF64
	buf[5] = dataLSB
	binary.LittleEndian.PutUint16(buf[0x12:0x14], machineRISCV)
	binary.LittleEndian.PutUint64(buf[0x18:0x20], entry)
	binary.LittleEndian.PutUint64(buf[0x20:0x28], phoff)
	binary.LittleEndian.PutUint16(buf[0x36:0x38], phSize)
	binary.LittleEndian.PutUint16(buf[0x38:0x3A], 1)

	ph := buf[phoff:]
	binary.LittleEndian.PutUint32(ph[0x00:0x04], progTypeLoad)
	binary.LittleEndian.PutUint64(ph[0x08:0x10], dataOff)
	binary.LittleEndian.PutUint64(ph[0x10:0x18], vaddr)
	binary.LittleEndian.PutUint64(ph[0x20:0x28], uint64(len(payload)))
	binary.LittleEndian.PutUint64(ph[0x28:0x30], memsz)

	copy(buf[dataOff:], payload)
	return buf
}

func TestParseValidELF(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	raw := buildMinimalELF(t, 0x8000_0000, 0x8000_0000, payload, 16)

	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Entry != 0x8000_0000 {
		t.Errorf("Entry = %#x, want 0x80000000", f.Entry)
	}
	if len(f.Segments) != 1 {
		t.Fatalf("len(Segments) = %d, want 1", len(f.Segments))
	}
	seg := f.Segments[0]
	if seg.Vaddr != 0x8000_0000 || seg.Memsz != 16 {
		t.Errorf("segment = %+v", seg)
	}
	if len(seg.Data) != 4 || seg.Data[0] != 1 {
		t.Errorf("segment data = %v, want [1 2 3 4]", seg.Data)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, nil, 0)
	raw[0] = 0x00
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
	wantKind(t, err, InvalidMagic)
}

func TestParseInvalidClass(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, nil, 0)
	raw[4] = 1 // ELF32
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for invalid class")
	}
	wantKind(t, err, InvalidClass)
}

func TestParseInvalidEndian(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, nil, 0)
	raw[5] = 2 // ELFDATA2MSB
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for invalid endianness")
	}
	wantKind(t, err, InvalidEndian)
}

func TestParseInvalidMachine(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, nil, 0)
	binary.LittleEndian.PutUint16(raw[0x12:0x14], 0x3E) // x86-64
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for invalid machine")
	}
	wantKind(t, err, InvalidMachine)
}

func TestParseTruncated(t *testing.T) {
	_, err := Parse(make([]byte, 8))
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	wantKind(t, err, ParseError)
}

func TestParseSegmentOutOfRange(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, []byte{1, 2}, 2)
	// Claim a filesz far larger than the backing buffer actually holds.
	binary.LittleEndian.PutUint64(raw[0x40+0x20:0x40+0x28], 0xFFFF)
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for out-of-range segment data")
	}
	wantKind(t, err, ParseError)
}

func TestParseIgnoresNonLoadSegments(t *testing.T) {
	raw := buildMinimalELF(t, 0, 0, []byte{1}, 1)
	// Flip the one program header's type away from PT_LOAD.
	binary.LittleEndian.PutUint32(raw[0x40:0x44], 2) // PT_DYNAMIC
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Segments) != 0 {
		t.Errorf("len(Segments) = %d, want 0", len(f.Segments))
	}
}
