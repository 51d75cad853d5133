// Package insts provides RV32I instruction definitions, encoding, and decoding.
package insts

// Op represents an RV32I opcode.
type Op uint16

// RV32I opcodes.
const (
	OpUnknown Op = iota

	// R-type register-register
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// I-type immediate
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// Loads
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// Stores
	OpSB
	OpSH
	OpSW

	// Branches
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Jumps
	OpJAL
	OpJALR

	// Upper immediates
	OpLUI
	OpAUIPC
)

// String returns the lowercase assembly mnemonic for the opcode.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR             // Register-register arithmetic
	FormatI             // Immediate arithmetic and shifts
	FormatLoad          // Loads (I-type layout, memory operand)
	FormatStore         // Stores (S-type layout)
	FormatBranch        // Conditional branches (B-type layout)
	FormatJ             // JAL (J-type layout)
	FormatJALR          // JALR (I-type layout, indirect jump)
	FormatU             // LUI, AUIPC
)

// Major opcode values, bits [6:0] of the instruction word.
const (
	opcodeOpReg  = 0b0110011
	opcodeOpImm  = 0b0010011
	opcodeLoad   = 0b0000011
	opcodeStore  = 0b0100011
	opcodeBranch = 0b1100011
	opcodeJAL    = 0b1101111
	opcodeJALR   = 0b1100111
	opcodeLUI    = 0b0110111
	opcodeAUIPC  = 0b0010111
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	// Imm is the decoded immediate. Its meaning depends on the format:
	// sign-extended value for I/Load/Store formats, a byte offset for
	// Branch/J formats, the shift amount for SLLI/SRLI/SRAI, and the raw
	// 20-bit upper immediate (not yet shifted) for the U format.
	Imm int32
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word. It is total: words that
// do not match any RV32I encoding come back with Op set to OpUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown}

	switch word & 0x7F {
	case opcodeOpReg:
		d.decodeRType(word, inst)
	case opcodeOpImm:
		d.decodeOpImm(word, inst)
	case opcodeLoad:
		d.decodeLoad(word, inst)
	case opcodeStore:
		d.decodeStore(word, inst)
	case opcodeBranch:
		d.decodeBranch(word, inst)
	case opcodeJAL:
		d.decodeJAL(word, inst)
	case opcodeJALR:
		d.decodeJALR(word, inst)
	case opcodeLUI, opcodeAUIPC:
		d.decodeUType(word, inst)
	}

	return inst
}

// Field extraction helpers. Field positions are shared by every format.
func rdField(word uint32) uint8      { return uint8((word >> 7) & 0x1F) }
func rs1Field(word uint32) uint8     { return uint8((word >> 15) & 0x1F) }
func rs2Field(word uint32) uint8     { return uint8((word >> 20) & 0x1F) }
func funct3Field(word uint32) uint32 { return (word >> 12) & 0x7 }
func funct7Field(word uint32) uint32 { return word >> 25 }

// signExtend interprets the low bits of v as a signed bits-wide value.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// decodeRType decodes register-register arithmetic instructions.
// Format: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func (d *Decoder) decodeRType(word uint32, inst *Instruction) {
	funct3 := funct3Field(word)
	funct7 := funct7Field(word)

	var op Op
	switch {
	case funct3 == 0b000 && funct7 == 0b0000000:
		op = OpADD
	case funct3 == 0b000 && funct7 == 0b0100000:
		op = OpSUB
	case funct3 == 0b001 && funct7 == 0b0000000:
		op = OpSLL
	case funct3 == 0b010 && funct7 == 0b0000000:
		op = OpSLT
	case funct3 == 0b011 && funct7 == 0b0000000:
		op = OpSLTU
	case funct3 == 0b100 && funct7 == 0b0000000:
		op = OpXOR
	case funct3 == 0b101 && funct7 == 0b0000000:
		op = OpSRL
	case funct3 == 0b101 && funct7 == 0b0100000:
		op = OpSRA
	case funct3 == 0b110 && funct7 == 0b0000000:
		op = OpOR
	case funct3 == 0b111 && funct7 == 0b0000000:
		op = OpAND
	default:
		return
	}

	inst.Op = op
	inst.Format = FormatR
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
}

// decodeOpImm decodes immediate arithmetic and shift instructions.
// Format: imm[11:0] | rs1 | funct3 | rd | 0010011
// Shifts reuse the funct7 position: funct7 | shamt | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	funct3 := funct3Field(word)
	funct7 := funct7Field(word)

	switch funct3 {
	case 0b000:
		inst.Op = OpADDI
	case 0b010:
		inst.Op = OpSLTI
	case 0b011:
		inst.Op = OpSLTIU
	case 0b100:
		inst.Op = OpXORI
	case 0b110:
		inst.Op = OpORI
	case 0b111:
		inst.Op = OpANDI
	case 0b001:
		if funct7 != 0b0000000 {
			return
		}
		inst.Op = OpSLLI
	case 0b101:
		switch funct7 {
		case 0b0000000:
			inst.Op = OpSRLI
		case 0b0100000:
			inst.Op = OpSRAI
		default:
			return
		}
	}

	inst.Format = FormatI
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)

	if inst.Op == OpSLLI || inst.Op == OpSRLI || inst.Op == OpSRAI {
		inst.Imm = int32((word >> 20) & 0x1F) // shamt
	} else {
		inst.Imm = signExtend(word>>20, 12)
	}
}

// decodeLoad decodes load instructions.
// Format: imm[11:0] | rs1 | funct3 | rd | 0000011
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	switch funct3Field(word) {
	case 0b000:
		inst.Op = OpLB
	case 0b001:
		inst.Op = OpLH
	case 0b010:
		inst.Op = OpLW
	case 0b100:
		inst.Op = OpLBU
	case 0b101:
		inst.Op = OpLHU
	default:
		return
	}

	inst.Format = FormatLoad
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = signExtend(word>>20, 12)
}

// decodeStore decodes store instructions.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | 0100011
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	switch funct3Field(word) {
	case 0b000:
		inst.Op = OpSB
	case 0b001:
		inst.Op = OpSH
	case 0b010:
		inst.Op = OpSW
	default:
		return
	}

	inst.Format = FormatStore
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)

	imm := (word >> 25 << 5) | ((word >> 7) & 0x1F)
	inst.Imm = signExtend(imm, 12)
}

// decodeBranch decodes conditional branch instructions.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | 1100011
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	switch funct3Field(word) {
	case 0b000:
		inst.Op = OpBEQ
	case 0b001:
		inst.Op = OpBNE
	case 0b100:
		inst.Op = OpBLT
	case 0b101:
		inst.Op = OpBGE
	case 0b110:
		inst.Op = OpBLTU
	case 0b111:
		inst.Op = OpBGEU
	default:
		return
	}

	inst.Format = FormatBranch
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)

	imm := ((word >> 31) << 12) |
		(((word >> 7) & 0x1) << 11) |
		(((word >> 25) & 0x3F) << 5) |
		(((word >> 8) & 0xF) << 1)
	inst.Imm = signExtend(imm, 13)
}

// decodeJAL decodes the JAL instruction.
// Format: imm[20|10:1|11|19:12] | rd | 1101111
func (d *Decoder) decodeJAL(word uint32, inst *Instruction) {
	inst.Op = OpJAL
	inst.Format = FormatJ
	inst.Rd = rdField(word)

	imm := ((word >> 31) << 20) |
		(((word >> 12) & 0xFF) << 12) |
		(((word >> 20) & 0x1) << 11) |
		(((word >> 21) & 0x3FF) << 1)
	inst.Imm = signExtend(imm, 21)
}

// decodeJALR decodes the JALR instruction.
// Format: imm[11:0] | rs1 | 000 | rd | 1100111
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) {
	if funct3Field(word) != 0b000 {
		return
	}

	inst.Op = OpJALR
	inst.Format = FormatJALR
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = signExtend(word>>20, 12)
}

// decodeUType decodes LUI and AUIPC.
// Format: imm[31:12] | rd | opcode
func (d *Decoder) decodeUType(word uint32, inst *Instruction) {
	if word&0x7F == opcodeLUI {
		inst.Op = OpLUI
	} else {
		inst.Op = OpAUIPC
	}

	inst.Format = FormatU
	inst.Rd = rdField(word)
	inst.Imm = int32(word >> 12)
}
