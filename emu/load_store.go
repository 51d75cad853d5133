package emu

import "github.com/sarchlab/rvsim/insts"

// MemTracer observes the data-side memory traffic of a core. Implementers
// must not mutate architectural state; the hook exists for observational
// models such as the cache simulator.
type MemTracer interface {
	OnLoad(addr uint32, size int)
	OnStore(addr uint32, size int)
}

// LoadStoreUnit implements RV32I load and store operations.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	tracer  MemTracer
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory. tracer may be nil.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, tracer MemTracer) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
		tracer:  tracer,
	}
}

// Load executes a load: rd = mem[rs1 + imm], with the width and extension
// named by the opcode.
func (lsu *LoadStoreUnit) Load(op insts.Op, rd, rs1 uint8, imm int32) {
	addr := uint32(lsu.regFile.ReadReg(rs1) + imm)

	var value int32
	switch op {
	case insts.OpLB:
		value = int32(int8(lsu.memory.Read8(addr)))
		lsu.trace(addr, 1, false)
	case insts.OpLBU:
		value = int32(lsu.memory.Read8(addr))
		lsu.trace(addr, 1, false)
	case insts.OpLH:
		value = int32(int16(lsu.memory.Read16(addr)))
		lsu.trace(addr, 2, false)
	case insts.OpLHU:
		value = int32(lsu.memory.Read16(addr))
		lsu.trace(addr, 2, false)
	case insts.OpLW:
		value = int32(lsu.memory.Read32(addr))
		lsu.trace(addr, 4, false)
	}

	lsu.regFile.WriteReg(rd, value)
}

// Store executes a store: mem[rs1 + imm] = rs2, truncated to the width
// named by the opcode.
func (lsu *LoadStoreUnit) Store(op insts.Op, rs2, rs1 uint8, imm int32) {
	addr := uint32(lsu.regFile.ReadReg(rs1) + imm)
	value := lsu.regFile.ReadReg(rs2)

	switch op {
	case insts.OpSB:
		lsu.memory.Write8(addr, uint8(value))
		lsu.trace(addr, 1, true)
	case insts.OpSH:
		lsu.memory.Write16(addr, uint16(value))
		lsu.trace(addr, 2, true)
	case insts.OpSW:
		lsu.memory.Write32(addr, uint32(value))
		lsu.trace(addr, 4, true)
	}
}

func (lsu *LoadStoreUnit) trace(addr uint32, size int, isStore bool) {
	if lsu.tracer == nil {
		return
	}
	if isStore {
		lsu.tracer.OnStore(addr, size)
	} else {
		lsu.tracer.OnLoad(addr, size)
	}
}
