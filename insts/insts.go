// Package insts provides RV32I instruction definitions, encoding, and
// decoding.
//
// This package implements the 37 instructions of the RV32I base integer
// instruction set as structured representations. It supports:
//   - R-type register-register arithmetic: ADD, SUB, SLL, SLT, SLTU, XOR,
//     SRL, SRA, OR, AND
//   - I-type immediate arithmetic and shifts: ADDI, SLTI, SLTIU, XORI, ORI,
//     ANDI, SLLI, SRLI, SRAI
//   - Loads and stores: LB, LH, LW, LBU, LHU, SB, SH, SW
//   - Branches: BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - Jumps: JAL, JALR
//   - Upper immediates: LUI, AUIPC
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00A30293) // addi x5, x6, 10
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts
