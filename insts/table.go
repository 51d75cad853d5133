package insts

// Desc describes how a mnemonic is encoded: its format plus the fixed
// opcode/funct fields of the instruction word.
type Desc struct {
	Op     Op
	Format Format

	opcode uint32
	funct3 uint32
	funct7 uint32
}

// mnemonicTable maps every canonical RV32I mnemonic to its encoding
// descriptor. Pseudo-instructions are not listed here; the assembler
// expands them before encoding.
var mnemonicTable = map[string]Desc{
	"add":  {OpADD, FormatR, opcodeOpReg, 0b000, 0b0000000},
	"sub":  {OpSUB, FormatR, opcodeOpReg, 0b000, 0b0100000},
	"sll":  {OpSLL, FormatR, opcodeOpReg, 0b001, 0b0000000},
	"slt":  {OpSLT, FormatR, opcodeOpReg, 0b010, 0b0000000},
	"sltu": {OpSLTU, FormatR, opcodeOpReg, 0b011, 0b0000000},
	"xor":  {OpXOR, FormatR, opcodeOpReg, 0b100, 0b0000000},
	"srl":  {OpSRL, FormatR, opcodeOpReg, 0b101, 0b0000000},
	"sra":  {OpSRA, FormatR, opcodeOpReg, 0b101, 0b0100000},
	"or":   {OpOR, FormatR, opcodeOpReg, 0b110, 0b0000000},
	"and":  {OpAND, FormatR, opcodeOpReg, 0b111, 0b0000000},

	"addi":  {OpADDI, FormatI, opcodeOpImm, 0b000, 0},
	"slti":  {OpSLTI, FormatI, opcodeOpImm, 0b010, 0},
	"sltiu": {OpSLTIU, FormatI, opcodeOpImm, 0b011, 0},
	"xori":  {OpXORI, FormatI, opcodeOpImm, 0b100, 0},
	"ori":   {OpORI, FormatI, opcodeOpImm, 0b110, 0},
	"andi":  {OpANDI, FormatI, opcodeOpImm, 0b111, 0},
	"slli":  {OpSLLI, FormatI, opcodeOpImm, 0b001, 0b0000000},
	"srli":  {OpSRLI, FormatI, opcodeOpImm, 0b101, 0b0000000},
	"srai":  {OpSRAI, FormatI, opcodeOpImm, 0b101, 0b0100000},

	"lb":  {OpLB, FormatLoad, opcodeLoad, 0b000, 0},
	"lh":  {OpLH, FormatLoad, opcodeLoad, 0b001, 0},
	"lw":  {OpLW, FormatLoad, opcodeLoad, 0b010, 0},
	"lbu": {OpLBU, FormatLoad, opcodeLoad, 0b100, 0},
	"lhu": {OpLHU, FormatLoad, opcodeLoad, 0b101, 0},

	"sb": {OpSB, FormatStore, opcodeStore, 0b000, 0},
	"sh": {OpSH, FormatStore, opcodeStore, 0b001, 0},
	"sw": {OpSW, FormatStore, opcodeStore, 0b010, 0},

	"beq":  {OpBEQ, FormatBranch, opcodeBranch, 0b000, 0},
	"bne":  {OpBNE, FormatBranch, opcodeBranch, 0b001, 0},
	"blt":  {OpBLT, FormatBranch, opcodeBranch, 0b100, 0},
	"bge":  {OpBGE, FormatBranch, opcodeBranch, 0b101, 0},
	"bltu": {OpBLTU, FormatBranch, opcodeBranch, 0b110, 0},
	"bgeu": {OpBGEU, FormatBranch, opcodeBranch, 0b111, 0},

	"jal":  {OpJAL, FormatJ, opcodeJAL, 0, 0},
	"jalr": {OpJALR, FormatJALR, opcodeJALR, 0b000, 0},

	"lui":   {OpLUI, FormatU, opcodeLUI, 0, 0},
	"auipc": {OpAUIPC, FormatU, opcodeAUIPC, 0, 0},
}

// opNames is the reverse of mnemonicTable, used by Op.String and the
// disassembler.
var opNames = make(map[Op]string, len(mnemonicTable))

func init() {
	for name, desc := range mnemonicTable {
		opNames[desc.Op] = name
	}
}

// Lookup returns the encoding descriptor for a canonical mnemonic.
func Lookup(mnemonic string) (Desc, bool) {
	desc, ok := mnemonicTable[mnemonic]
	return desc, ok
}

// EncodeR encodes a register-register instruction.
func EncodeR(d Desc, rd, rs1, rs2 uint8) uint32 {
	return d.funct7<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		d.funct3<<12 |
		uint32(rd&0x1F)<<7 |
		d.opcode
}

// EncodeI encodes an I-type instruction (immediate arithmetic, loads,
// JALR). The immediate must fit in 12 signed bits; the caller validates.
func EncodeI(d Desc, rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		d.funct3<<12 |
		uint32(rd&0x1F)<<7 |
		d.opcode
}

// EncodeShift encodes SLLI, SRLI, and SRAI. The shift amount occupies the
// low five bits of the immediate field with funct7 above it.
func EncodeShift(d Desc, rd, rs1 uint8, shamt uint32) uint32 {
	return d.funct7<<25 |
		(shamt&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		d.funct3<<12 |
		uint32(rd&0x1F)<<7 |
		d.opcode
}

// EncodeS encodes a store instruction.
func EncodeS(d Desc, rs1, rs2 uint8, imm int32) uint32 {
	uimm := uint32(imm) & 0xFFF
	return (uimm>>5)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		d.funct3<<12 |
		(uimm&0x1F)<<7 |
		d.opcode
}

// EncodeB encodes a conditional branch with a byte offset relative to the
// branch's own address. The offset must be even and fit in 13 signed bits.
func EncodeB(d Desc, rs1, rs2 uint8, offset int32) uint32 {
	uimm := uint32(offset) & 0x1FFF
	return (uimm>>12)<<31 |
		((uimm>>5)&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		d.funct3<<12 |
		((uimm>>1)&0xF)<<8 |
		((uimm>>11)&0x1)<<7 |
		d.opcode
}

// EncodeU encodes LUI and AUIPC. The immediate is the raw 20-bit upper
// value as written in assembly, not yet shifted.
func EncodeU(d Desc, rd uint8, imm int32) uint32 {
	return uint32(imm&0xFFFFF)<<12 |
		uint32(rd&0x1F)<<7 |
		d.opcode
}

// EncodeJ encodes JAL with a byte offset relative to the jump's own
// address. The offset must be even and fit in 21 signed bits.
func EncodeJ(d Desc, rd uint8, offset int32) uint32 {
	uimm := uint32(offset) & 0x1FFFFF
	return (uimm>>20)<<31 |
		((uimm>>1)&0x3FF)<<21 |
		((uimm>>11)&0x1)<<20 |
		((uimm>>12)&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		d.opcode
}
