package emu

import (
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// DefaultCycleLimit is the hard ceiling on executed instructions. It is
// the simulator's termination guarantee for looping guest programs.
const DefaultCycleLimit = 5000

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true when no instruction was executed: the cycle ceiling
	// was already reached, or the PC ran past the end of memory.
	Halted bool

	// Warn is set when the fetched word did not decode as an RV32I
	// instruction. The step still completed (as a no-op) and execution
	// can continue.
	Warn error
}

// DecodeWarning reports a fetched word that matches no RV32I encoding.
// It is non-fatal: the core treats the word as a no-op.
type DecodeWarning struct {
	PC   uint32
	Word uint32
}

func (w *DecodeWarning) Error() string {
	return fmt.Sprintf("unrecognized instruction word 0x%08x at pc 0x%04x", w.Word, w.PC)
}

// Core interprets RV32I machine code against a register file and a flat
// memory image. A Core is an independent stateful value; create one per
// simulation session and pass it explicitly.
type Core struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Execution state
	cycles     uint32
	cycleLimit uint32

	memSize uint32
	tracer  MemTracer
}

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithMemSize sets the memory image size in bytes.
func WithMemSize(size uint32) CoreOption {
	return func(c *Core) {
		c.memSize = size
	}
}

// WithCycleLimit sets the cycle ceiling for Step and Run.
func WithCycleLimit(limit uint32) CoreOption {
	return func(c *Core) {
		c.cycleLimit = limit
	}
}

// WithMemTracer attaches an observer for data-side memory accesses.
func WithMemTracer(tracer MemTracer) CoreOption {
	return func(c *Core) {
		c.tracer = tracer
	}
}

// NewCore creates a new RV32I core with zeroed registers and a fresh
// zero-filled memory image.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{
		regFile:    &RegFile{},
		decoder:    insts.NewDecoder(),
		memSize:    DefaultMemSize,
		cycleLimit: DefaultCycleLimit,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.memory = NewMemory(c.memSize)
	c.alu = NewALU(c.regFile)
	c.lsu = NewLoadStoreUnit(c.regFile, c.memory, c.tracer)
	c.branchUnit = NewBranchUnit(c.regFile)

	return c
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *RegFile {
	return c.regFile
}

// Memory returns the core's memory image.
func (c *Core) Memory() *Memory {
	return c.memory
}

// PC returns the current program counter.
func (c *Core) PC() uint32 {
	return c.regFile.PC
}

// Cycles returns the number of instructions executed since the last load
// or reset.
func (c *Core) Cycles() uint32 {
	return c.cycles
}

// LoadProgram writes the machine-code words into memory starting at
// address 0 (little-endian) and prepares the core to execute them:
// registers are zeroed, PC and the cycle counter are cleared, and sp is
// pointed at the top of memory. Memory outside the loaded region is left
// as is.
func (c *Core) LoadProgram(words []uint32) {
	*c.regFile = RegFile{}
	for i, word := range words {
		c.memory.Write32(uint32(i)*4, word)
	}
	c.cycles = 0

	sp, _ := insts.RegisterIndex("sp")
	c.regFile.WriteReg(sp, int32(c.memory.Size()))
}

// Reset zeroes all registers, the entire memory image, the PC, and the
// cycle counter. A program must be loaded again before stepping.
func (c *Core) Reset() {
	*c.regFile = RegFile{}
	c.memory.Clear()
	c.cycles = 0
}

// Step executes a single instruction: fetch the word at PC, decode it,
// execute it, and advance PC and the cycle counter. Once the cycle
// ceiling is reached, or if the PC would leave memory, Step is a no-op
// reporting Halted.
func (c *Core) Step() StepResult {
	if c.cycles >= c.cycleLimit {
		return StepResult{Halted: true}
	}

	pc := c.regFile.PC
	if pc > c.memory.Size()-4 {
		return StepResult{Halted: true}
	}

	word := c.memory.Read32(pc)
	inst := c.decoder.Decode(word)

	result := c.execute(inst, word)
	c.cycles++

	return result
}

// Run executes instructions until the cycle ceiling is reached or the PC
// runs past the end of memory. It always terminates within the ceiling.
func (c *Core) Run() {
	for {
		result := c.Step()
		if result.Halted {
			return
		}
	}
}

// execute dispatches a decoded instruction to its execution unit.
func (c *Core) execute(inst *insts.Instruction, word uint32) StepResult {
	pc := c.regFile.PC

	switch inst.Format {
	case insts.FormatR:
		c.alu.Register(inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.FormatI:
		c.alu.Immediate(inst.Op, inst.Rd, inst.Rs1, inst.Imm)
	case insts.FormatU:
		c.alu.Upper(inst.Op, inst.Rd, inst.Imm, pc)
	case insts.FormatLoad:
		c.lsu.Load(inst.Op, inst.Rd, inst.Rs1, inst.Imm)
	case insts.FormatStore:
		c.lsu.Store(inst.Op, inst.Rs2, inst.Rs1, inst.Imm)
	case insts.FormatBranch:
		c.branchUnit.Conditional(inst.Op, inst.Rs1, inst.Rs2, inst.Imm)
		return StepResult{} // PC already updated
	case insts.FormatJ:
		c.branchUnit.JAL(inst.Rd, inst.Imm)
		return StepResult{} // PC already updated
	case insts.FormatJALR:
		c.branchUnit.JALR(inst.Rd, inst.Rs1, inst.Imm)
		return StepResult{} // PC already updated
	default:
		// Unrecognized word: warn and fall through to the PC advance so
		// a malformed program still reaches the ceiling cleanly.
		c.regFile.PC += 4
		return StepResult{Warn: &DecodeWarning{PC: pc, Word: word}}
	}

	c.regFile.PC += 4

	return StepResult{}
}
