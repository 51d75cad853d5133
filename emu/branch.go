package emu

import "github.com/sarchlab/rvsim/insts"

// BranchUnit implements RV32I control-flow instructions. Every method
// leaves PC pointing at the next instruction to execute.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Conditional executes a conditional branch. offset is the byte offset
// relative to the branch's own address. Returns whether the branch was
// taken.
func (b *BranchUnit) Conditional(op insts.Op, rs1, rs2 uint8, offset int32) bool {
	op1 := b.regFile.ReadReg(rs1)
	op2 := b.regFile.ReadReg(rs2)

	var taken bool
	switch op {
	case insts.OpBEQ:
		taken = op1 == op2
	case insts.OpBNE:
		taken = op1 != op2
	case insts.OpBLT:
		taken = op1 < op2
	case insts.OpBGE:
		taken = op1 >= op2
	case insts.OpBLTU:
		taken = uint32(op1) < uint32(op2)
	case insts.OpBGEU:
		taken = uint32(op1) >= uint32(op2)
	}

	if taken {
		b.regFile.PC += uint32(offset)
	} else {
		b.regFile.PC += 4
	}
	return taken
}

// JAL executes a jump-and-link: rd = PC+4, PC += offset.
func (b *BranchUnit) JAL(rd uint8, offset int32) {
	b.regFile.WriteReg(rd, int32(b.regFile.PC+4))
	b.regFile.PC += uint32(offset)
}

// JALR executes an indirect jump-and-link: rd = PC+4, PC = (rs1+imm)&^1.
// The link value is computed before the jump so rd == rs1 behaves.
func (b *BranchUnit) JALR(rd, rs1 uint8, imm int32) {
	link := int32(b.regFile.PC + 4)
	target := uint32(b.regFile.ReadReg(rs1)+imm) &^ 1
	b.regFile.WriteReg(rd, link)
	b.regFile.PC = target
}
