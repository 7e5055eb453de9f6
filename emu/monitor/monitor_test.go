package monitor

import (
	"strings"
	"testing"

	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/core"
	"github.com/rcornwell/rv64emu/emu/cpu"
	"github.com/rcornwell/rv64emu/emu/terminal"
)

func newTestCore(t *testing.T) *core.Core {
	t.Helper()
	b := bus.New(4096, terminal.NewMock())
	c := cpu.New(b)
	return core.New(c)
}

func TestMatchCommandExactAndPrefix(t *testing.T) {
	c := command{name: "continue", min: 1}
	for _, name := range []string{"c", "con", "continue"} {
		if !matchCommand(c, name) {
			t.Errorf("matchCommand(%q) = false, want true", name)
		}
	}
	if matchCommand(c, "continuex") {
		t.Error("matchCommand(continuex) = true, want false")
	}
}

func TestMatchCommandBelowMinimum(t *testing.T) {
	c := command{name: "step", min: 2}
	if matchCommand(c, "s") {
		t.Error("matchCommand(s) with min 2 = true, want false")
	}
	if !matchCommand(c, "st") {
		t.Error("matchCommand(st) with min 2 = false, want true")
	}
}

func TestProcessCommandAmbiguous(t *testing.T) {
	co := newTestCore(t)
	// "c" matches both continue and csr; min on continue is 1, csr needs
	// an operand but the prefix match itself is ambiguous at length 1.
	_, err := ProcessCommand("c", co)
	if err == nil {
		t.Fatal("expected ambiguous command error")
	}
}

func TestProcessCommandUnknown(t *testing.T) {
	co := newTestCore(t)
	_, err := ProcessCommand("bogus", co)
	if err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestProcessCommandQuit(t *testing.T) {
	co := newTestCore(t)
	quit, err := ProcessCommand("quit", co)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quit {
		t.Error("quit command should request exit")
	}
}

func TestProcessCommandReg(t *testing.T) {
	co := newTestCore(t)
	quit, err := ProcessCommand("reg", co)
	if err != nil || quit {
		t.Fatalf("reg: quit=%v err=%v", quit, err)
	}
}

func TestProcessCommandCSRKnownAndUnknown(t *testing.T) {
	co := newTestCore(t)
	if _, err := ProcessCommand("csr mstatus", co); err != nil {
		t.Errorf("csr mstatus: unexpected error %v", err)
	}
	if _, err := ProcessCommand("csr bogus", co); err == nil {
		t.Error("csr bogus: expected error")
	}
}

func TestProcessCommandMem(t *testing.T) {
	co := newTestCore(t)
	if _, err := ProcessCommand("mem 0x80000000 4", co); err != nil {
		t.Errorf("mem: unexpected error %v", err)
	}
	if _, err := ProcessCommand("mem notanumber", co); err == nil {
		t.Error("mem with bad address: expected error")
	}
}

func TestProcessCommandStepDefaultsToOne(t *testing.T) {
	co := newTestCore(t)
	co.CPU.LoadProgram([]uint32{0x0000006F}) // jal x0, 0: spin in place
	go co.Start()
	defer co.Stop()

	if _, err := ProcessCommand("step", co); err != nil {
		t.Errorf("step: unexpected error %v", err)
	}
}

func TestCompleteCmdPrefix(t *testing.T) {
	got := CompleteCmd("c")
	if len(got) == 0 {
		t.Fatal("expected at least one completion for prefix 'c'")
	}
	joined := strings.Join(got, ",")
	if !strings.Contains(joined, "continue") && !strings.Contains(joined, "csr") {
		t.Errorf("completions = %v, want continue and/or csr", got)
	}
}
