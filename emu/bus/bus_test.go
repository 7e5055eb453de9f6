package bus

import (
	"testing"

	"github.com/rcornwell/rv64emu/emu/clint"
	"github.com/rcornwell/rv64emu/emu/memory"
	"github.com/rcornwell/rv64emu/emu/uart"
)

type nullTerminal struct{}

func (nullTerminal) Read() (byte, bool) { return 0, false }
func (nullTerminal) Write(byte)         {}

func newTestBus() *Bus {
	return New(4096, nullTerminal{})
}

func TestDRAMReadWriteRoundTrip(t *testing.T) {
	b := newTestBus()
	addr := memory.DRAMBase + 16
	b.Write64(addr, 0x0102030405060708)
	if got := b.Read64(addr); got != 0x0102030405060708 {
		t.Errorf("Read64() = %#x, want %#x", got, 0x0102030405060708)
	}
}

func TestWriteInvalidatesReservation(t *testing.T) {
	b := newTestBus()
	addr := memory.DRAMBase + 8
	b.Reserve(0, addr)
	if !b.CheckReservation(0, addr) {
		t.Fatal("expected reservation present")
	}
	b.Write8(addr, 1)
	if b.CheckReservation(0, addr) {
		t.Error("expected reservation invalidated by write")
	}
}

func TestWriteOtherAddressDoesNotInvalidate(t *testing.T) {
	b := newTestBus()
	addr := memory.DRAMBase + 8
	other := memory.DRAMBase + 256
	b.Reserve(0, addr)
	b.Write8(other, 1)
	if !b.CheckReservation(0, addr) {
		t.Error("expected reservation to survive unrelated write")
	}
}

func TestClintRouting(t *testing.T) {
	b := newTestBus()
	b.Write64(clint.Base+0x4000, 99)
	if got := b.Read64(clint.Base + 0x4000); got != 99 {
		t.Errorf("mtimecmp via bus = %d, want 99", got)
	}
}

func TestUartRoutingByteOnly(t *testing.T) {
	b := newTestBus()
	b.Uart.PushInput('Q')
	if got := b.Read8(uart.Base); got != 'Q' {
		t.Errorf("uart RBR via bus = %c, want Q", got)
	}
}

func TestUnmappedAddressPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unmapped address")
		}
	}()
	b := newTestBus()
	b.Read32(0x1000)
}

func TestTickAdvancesClint(t *testing.T) {
	b := newTestBus()
	b.Tick()
	b.Tick()
	if got := b.Read64(clint.Base + 0xBFF8); got != 2 {
		t.Errorf("mtime = %d, want 2", got)
	}
}
