package core

import (
	"testing"
	"time"

	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/cpu"
	"github.com/rcornwell/rv64emu/emu/memory"
)

type nullTerminal struct{}

func (nullTerminal) Read() (byte, bool) { return 0, false }
func (nullTerminal) Write(byte)         {}

func TestStartStepStop(t *testing.T) {
	b := bus.New(4096, nullTerminal{})
	c := cpu.New(b)
	b.Write32(memory.DRAMBase, 0x00000013)   // nop
	b.Write32(memory.DRAMBase+4, 0x00000013) // nop
	b.Write32(memory.DRAMBase+8, 0x0000006F) // jal x0, 0: spin in place

	co := New(c)
	go co.Start()

	time.Sleep(20 * time.Millisecond)
	co.Stop()

	if c.PC() < memory.DRAMBase+4 {
		t.Errorf("PC = %#x, expected forward progress past entry", c.PC())
	}
}

func TestHaltAndResume(t *testing.T) {
	b := bus.New(4096, nullTerminal{})
	c := cpu.New(b)
	// Fill DRAM with nops and end it with a jump back to DRAMBase, so the
	// free-running core loops instead of fetching past the program.
	const words = 4096 / 4
	for i := 0; i < words-1; i++ {
		b.Write32(memory.DRAMBase+uint64(i*4), 0x00000013) // nop
	}
	b.Write32(memory.DRAMBase+uint64((words-1)*4), 0x804FF06F) // jal x0, -4092

	co := New(c)
	go co.Start()

	co.Control() <- Packet{Msg: Halt}
	time.Sleep(10 * time.Millisecond)
	pc := c.PC()
	time.Sleep(10 * time.Millisecond)
	if c.PC() != pc {
		t.Errorf("PC advanced while halted: %#x -> %#x", pc, c.PC())
	}

	co.Control() <- Packet{Msg: Resume}
	time.Sleep(10 * time.Millisecond)
	co.Stop()

	if c.PC() == pc {
		t.Error("expected PC to advance after resume")
	}
}
