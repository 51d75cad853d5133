package insts

import "fmt"

var disasmDecoder = NewDecoder()

// Disassemble renders a 32-bit word as canonical assembly text. It is
// total over all inputs: the zero word renders as an empty string (memory
// that was never written), and words that do not decode as RV32I render
// in ".word" form. addr is the byte address the word sits at; it is used
// to render branch and jump targets as absolute addresses.
func Disassemble(word uint32, addr uint32) string {
	if word == 0 {
		return ""
	}

	inst := disasmDecoder.Decode(word)

	switch inst.Format {
	case FormatR:
		return fmt.Sprintf("%v x%d, x%d, x%d", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	case FormatI:
		return fmt.Sprintf("%v x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
	case FormatLoad:
		return fmt.Sprintf("%v x%d, %d(x%d)", inst.Op, inst.Rd, inst.Imm, inst.Rs1)
	case FormatStore:
		return fmt.Sprintf("%v x%d, %d(x%d)", inst.Op, inst.Rs2, inst.Imm, inst.Rs1)
	case FormatBranch:
		target := addr + uint32(inst.Imm)
		return fmt.Sprintf("%v x%d, x%d, 0x%04x", inst.Op, inst.Rs1, inst.Rs2, target)
	case FormatJ:
		target := addr + uint32(inst.Imm)
		return fmt.Sprintf("%v x%d, 0x%04x", inst.Op, inst.Rd, target)
	case FormatJALR:
		return fmt.Sprintf("%v x%d, %d(x%d)", inst.Op, inst.Rd, inst.Imm, inst.Rs1)
	case FormatU:
		return fmt.Sprintf("%v x%d, %d", inst.Op, inst.Rd, inst.Imm)
	default:
		return fmt.Sprintf(".word 0x%08x", word)
	}
}
