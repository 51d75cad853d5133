package emu

import "github.com/sarchlab/rvsim/insts"

// ALU implements RV32I arithmetic and logic operations. All arithmetic is
// 32-bit with wraparound on overflow; shift amounts are masked to 5 bits.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Register executes a register-register operation: rd = rs1 <op> rs2.
func (a *ALU) Register(op insts.Op, rd, rs1, rs2 uint8) {
	op1 := a.regFile.ReadReg(rs1)
	op2 := a.regFile.ReadReg(rs2)

	var result int32
	switch op {
	case insts.OpADD:
		result = op1 + op2
	case insts.OpSUB:
		result = op1 - op2
	case insts.OpSLL:
		result = op1 << (uint32(op2) & 0x1F)
	case insts.OpSLT:
		if op1 < op2 {
			result = 1
		}
	case insts.OpSLTU:
		if uint32(op1) < uint32(op2) {
			result = 1
		}
	case insts.OpXOR:
		result = op1 ^ op2
	case insts.OpSRL:
		result = int32(uint32(op1) >> (uint32(op2) & 0x1F))
	case insts.OpSRA:
		result = op1 >> (uint32(op2) & 0x1F)
	case insts.OpOR:
		result = op1 | op2
	case insts.OpAND:
		result = op1 & op2
	}

	a.regFile.WriteReg(rd, result)
}

// Immediate executes an immediate operation: rd = rs1 <op> imm. For the
// shift opcodes imm carries the decoded shift amount.
func (a *ALU) Immediate(op insts.Op, rd, rs1 uint8, imm int32) {
	op1 := a.regFile.ReadReg(rs1)

	var result int32
	switch op {
	case insts.OpADDI:
		result = op1 + imm
	case insts.OpSLTI:
		if op1 < imm {
			result = 1
		}
	case insts.OpSLTIU:
		if uint32(op1) < uint32(imm) {
			result = 1
		}
	case insts.OpXORI:
		result = op1 ^ imm
	case insts.OpORI:
		result = op1 | imm
	case insts.OpANDI:
		result = op1 & imm
	case insts.OpSLLI:
		result = op1 << (uint32(imm) & 0x1F)
	case insts.OpSRLI:
		result = int32(uint32(op1) >> (uint32(imm) & 0x1F))
	case insts.OpSRAI:
		result = op1 >> (uint32(imm) & 0x1F)
	}

	a.regFile.WriteReg(rd, result)
}

// Upper executes LUI and AUIPC. pc is the address of the instruction
// itself, used by AUIPC.
func (a *ALU) Upper(op insts.Op, rd uint8, imm int32, pc uint32) {
	value := imm << 12
	if op == insts.OpAUIPC {
		value += int32(pc)
	}
	a.regFile.WriteReg(rd, value)
}
