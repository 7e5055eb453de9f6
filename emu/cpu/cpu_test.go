package cpu

import (
	"testing"

	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/csr"
	"github.com/rcornwell/rv64emu/emu/decoder"
	"github.com/rcornwell/rv64emu/emu/memory"
)

type nullTerminal struct{}

func (nullTerminal) Read() (byte, bool) { return 0, false }
func (nullTerminal) Write(byte)         {}

func newTestCPU() *CPU {
	b := bus.New(4096, nullTerminal{})
	return New(b)
}

func TestInitialState(t *testing.T) {
	c := newTestCPU()
	if c.PC() != memory.DRAMBase {
		t.Errorf("PC = %#x, want %#x", c.PC(), memory.DRAMBase)
	}
	if c.Mode() != Machine {
		t.Errorf("mode = %d, want Machine", c.Mode())
	}
	if c.CSR.Read(csr.Misa) != initialMisa {
		t.Errorf("MISA = %#x, want %#x", c.CSR.Read(csr.Misa), uint64(initialMisa))
	}
}

func TestX0AlwaysZero(t *testing.T) {
	c := newTestCPU()
	c.setReg(0, 0xDEADBEEF)
	if c.Reg(0) != 0 {
		t.Errorf("x0 = %#x, want 0", c.Reg(0))
	}
}

func TestAddiScenario(t *testing.T) {
	c := newTestCPU()
	c.Bus.Write32(memory.DRAMBase, 0x02A00093) // addi x1, x0, 42
	c.Step()
	if got := c.Reg(1); got != 0x2A {
		t.Errorf("x1 = %#x, want 0x2a", got)
	}
	if c.PC() != memory.DRAMBase+4 {
		t.Errorf("PC = %#x, want %#x", c.PC(), memory.DRAMBase+4)
	}
}

func TestEcallFromMachineScenario(t *testing.T) {
	c := newTestCPU()
	c.CSR.Write(csr.Mtvec, 0x8000_1000)
	c.Bus.Write32(memory.DRAMBase, 0x0000_0073) // ecall
	c.Step()
	if c.PC() != 0x8000_1000 {
		t.Errorf("PC = %#x, want 0x80001000", c.PC())
	}
	if got := c.CSR.Read(csr.Mepc); got != memory.DRAMBase {
		t.Errorf("MEPC = %#x, want %#x", got, memory.DRAMBase)
	}
	if got := c.CSR.Read(csr.Mcause); got != CauseECallFromM {
		t.Errorf("MCAUSE = %d, want %d", got, CauseECallFromM)
	}
	if c.Mode() != Machine {
		t.Errorf("mode = %d, want Machine", c.Mode())
	}
	mpp := (c.CSR.Read(csr.Mstatus) >> csr.MstatusMPPLow) & 0b11
	if mpp != 3 {
		t.Errorf("MPP = %d, want 3", mpp)
	}
}

func TestMretScenario(t *testing.T) {
	c := newTestCPU()
	c.CSR.Write(csr.Mepc, 0x8000_2000)
	mstatus := uint64(1) << csr.MstatusMPPLow // MPP = 1 (Supervisor)
	c.CSR.Write(csr.Mstatus, mstatus)
	c.Bus.Write32(memory.DRAMBase, 0x3020_0073) // mret
	c.Step()
	if c.PC() != 0x8000_2000 {
		t.Errorf("PC = %#x, want 0x80002000", c.PC())
	}
	if c.Mode() != Supervisor {
		t.Errorf("mode = %d, want Supervisor", c.Mode())
	}
	mpp := (c.CSR.Read(csr.Mstatus) >> csr.MstatusMPPLow) & 0b11
	if mpp != 0 {
		t.Errorf("MPP = %d, want 0", mpp)
	}
}

func TestSumLoopThenEcallScenario(t *testing.T) {
	c := newTestCPU()
	c.CSR.Write(csr.Mtvec, 0x8000_1000)

	// x1 = sum, x2 = i, x3 = 11 (limit). loop starts at byte offset 12,
	// the bne at offset 20 branches back by -8.
	program := []uint32{
		0x00000093, // addi x1, x0, 0      sum = 0
		0x00100113, // addi x2, x0, 1      i = 1
		0x00b00193, // addi x3, x0, 11     limit = 11
		// loop:
		0x002080b3,       // add  x1, x1, x2     sum += i
		0x00110113,       // addi x2, x2, 1      i += 1
		encodeB(1, 2, 3, -8), // bne  x2, x3, loop
		0x00000073, // ecall
	}
	for i, w := range program {
		c.Bus.Write32(memory.DRAMBase+uint64(i*4), w)
	}

	for i := 0; i < 200 && c.PC() != 0x8000_1000; i++ {
		c.Step()
	}

	if got := c.Reg(1); got != 55 {
		t.Errorf("x1 (sum) = %d, want 55", got)
	}
	if got := c.Reg(2); got != 11 {
		t.Errorf("x2 (i) = %d, want 11", got)
	}
	if c.PC() != 0x8000_1000 {
		t.Errorf("PC = %#x, want mtvec", c.PC())
	}
}

func TestTimerInterruptScenario(t *testing.T) {
	c := newTestCPU()
	c.CSR.Write(csr.Mtvec, 0x8000_1000)
	c.Bus.Clint.Write64(0x4000, 5) // mtimecmp offset within the CLINT window
	c.CSR.SetBit(csr.Mie, csr.MTIPBit, true)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMIEBit, true)

	for i := 0; i < 5; i++ {
		c.Bus.Write32(memory.DRAMBase+uint64(i*4), 0x00000013) // nop
	}

	for i := 0; i < 5; i++ {
		c.Step()
	}

	if c.PC() != 0x8000_1000 {
		t.Errorf("PC = %#x, want 0x80001000", c.PC())
	}
	want := csr.InterruptBit | CauseTimerIRQ
	if got := c.CSR.Read(csr.Mcause); got != want {
		t.Errorf("MCAUSE = %#x, want %#x", got, want)
	}
}

func TestSoftwareInterruptPriorityOverTimer(t *testing.T) {
	c := newTestCPU()
	c.CSR.Write(csr.Mtvec, 0x8000_1000)
	c.CSR.SetBit(csr.Mip, csr.MTIPBit, true)
	c.CSR.SetBit(csr.Mip, csr.MSIPBit, true)
	c.CSR.SetBit(csr.Mie, csr.MTIPBit, true)
	c.CSR.SetBit(csr.Mie, csr.MSIPBit, true)
	c.CSR.SetBit(csr.Mstatus, csr.MstatusMIEBit, true)

	if !c.checkPendingInterrupts() {
		t.Fatal("expected interrupt taken")
	}
	want := csr.InterruptBit | CauseSoftwareIRQ
	if got := c.CSR.Read(csr.Mcause); got != want {
		t.Errorf("MCAUSE = %#x, want software interrupt %#x", got, want)
	}
}

func TestShiftAmountMaskedTo6Bits(t *testing.T) {
	c := newTestCPU()
	c.setReg(1, 1)
	c.setReg(2, 68) // 68 & 0x3F == 4
	// sll x3, x1, x2
	inst := encodeR(0x33, 3, 0x1, 1, 2, 0x00)
	c.execute(inst)
	if got := c.Reg(3); got != 1<<4 {
		t.Errorf("x3 = %d, want %d", got, 1<<4)
	}
}

func TestDivisionByZero(t *testing.T) {
	c := newTestCPU()
	c.setReg(1, 10)
	c.setReg(2, 0)
	// div x3, x1, x2
	inst := encodeR(0x33, 3, 0x4, 1, 2, 0x01)
	c.execute(inst)
	if got := int64(c.Reg(3)); got != -1 {
		t.Errorf("x3 (DIV by zero) = %d, want -1", got)
	}

	c.setReg(3, 0)
	// rem x4, x1, x2
	inst = encodeR(0x33, 4, 0x6, 1, 2, 0x01)
	c.execute(inst)
	if got := c.Reg(4); got != 10 {
		t.Errorf("x4 (REM by zero) = %d, want 10 (dividend)", got)
	}
}

func TestJalrClearsLowBit(t *testing.T) {
	c := newTestCPU()
	c.setReg(1, 0x8000_0101)
	// jalr x2, 0(x1)
	inst := encodeI(0x67, 2, 0, 1, 0)
	c.execute(inst)
	if c.PC() != 0x8000_0100 {
		t.Errorf("PC = %#x, want 0x80000100", c.PC())
	}
}

// encodeR builds an R-type instruction for tests that need precise
// funct3/funct7 control the assembled hex literals above don't cover.
func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | (rs2 << 20) | (funct7 << 25)
}

// encodeI builds an I-type instruction.
func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | (uint32(imm) << 20)
}

// encodeB builds a BRANCH instruction with the given funct3, rs1, rs2,
// and signed byte offset.
func encodeB(funct3, rs1, rs2 uint32, offset int32) uint32 {
	imm := uint32(offset)
	inst := decoder.Branch
	inst |= ((imm >> 12) & 0x1) << 31
	inst |= ((imm >> 5) & 0x3F) << 25
	inst |= rs2 << 20
	inst |= rs1 << 15
	inst |= funct3 << 12
	inst |= ((imm >> 1) & 0xF) << 8
	inst |= ((imm >> 11) & 0x1) << 7
	return inst
}
