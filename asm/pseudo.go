package asm

import (
	"fmt"
	"strconv"
)

// pseudoOperands lists the operand count of every pseudo-instruction
// expanded by rewriting. la and call produce PC-relative pairs and are
// handled by the assembler directly.
var pseudoOperands = map[string]int{
	"nop":  0,
	"mv":   2,
	"not":  2,
	"neg":  2,
	"seqz": 2,
	"snez": 2,
	"sltz": 2,
	"sgtz": 2,
	"li":   2,
	"j":    1,
	"jr":   1,
	"ret":  0,
	"beqz": 2,
	"bnez": 2,
	"blez": 2,
	"bgez": 2,
	"bltz": 2,
	"bgtz": 2,
	"bgt":  3,
	"ble":  3,
	"bgtu": 3,
	"bleu": 3,
}

// expandPseudo rewrites a pseudo-instruction into canonical statements on
// the same source line. The second return value is false when the
// mnemonic is not a pseudo-instruction.
func expandPseudo(st statement) ([]statement, bool, error) {
	want, ok := pseudoOperands[st.mnemonic]
	if !ok {
		return nil, false, nil
	}
	if len(st.operands) != want {
		return nil, true, &SyntaxError{
			Line: st.line,
			Msg: fmt.Sprintf("%s expects %d operands, got %d",
				st.mnemonic, want, len(st.operands)),
		}
	}

	ops := st.operands
	canon := func(mnemonic string, operands ...string) statement {
		return statement{line: st.line, mnemonic: mnemonic, operands: operands}
	}

	switch st.mnemonic {
	case "nop":
		return []statement{canon("addi", "x0", "x0", "0")}, true, nil
	case "mv":
		return []statement{canon("addi", ops[0], ops[1], "0")}, true, nil
	case "not":
		return []statement{canon("xori", ops[0], ops[1], "-1")}, true, nil
	case "neg":
		return []statement{canon("sub", ops[0], "x0", ops[1])}, true, nil
	case "seqz":
		return []statement{canon("sltiu", ops[0], ops[1], "1")}, true, nil
	case "snez":
		return []statement{canon("sltu", ops[0], "x0", ops[1])}, true, nil
	case "sltz":
		return []statement{canon("slt", ops[0], ops[1], "x0")}, true, nil
	case "sgtz":
		return []statement{canon("slt", ops[0], "x0", ops[1])}, true, nil
	case "li":
		exp, err := expandLI(st)
		return exp, true, err
	case "j":
		return []statement{canon("jal", "x0", ops[0])}, true, nil
	case "jr":
		return []statement{canon("jalr", "x0", "0("+ops[0]+")")}, true, nil
	case "ret":
		return []statement{canon("jalr", "x0", "0(ra)")}, true, nil
	case "beqz":
		return []statement{canon("beq", ops[0], "x0", ops[1])}, true, nil
	case "bnez":
		return []statement{canon("bne", ops[0], "x0", ops[1])}, true, nil
	case "blez":
		return []statement{canon("bge", "x0", ops[0], ops[1])}, true, nil
	case "bgez":
		return []statement{canon("bge", ops[0], "x0", ops[1])}, true, nil
	case "bltz":
		return []statement{canon("blt", ops[0], "x0", ops[1])}, true, nil
	case "bgtz":
		return []statement{canon("blt", "x0", ops[0], ops[1])}, true, nil
	case "bgt":
		return []statement{canon("blt", ops[1], ops[0], ops[2])}, true, nil
	case "ble":
		return []statement{canon("bge", ops[1], ops[0], ops[2])}, true, nil
	case "bgtu":
		return []statement{canon("bltu", ops[1], ops[0], ops[2])}, true, nil
	case "bleu":
		return []statement{canon("bgeu", ops[1], ops[0], ops[2])}, true, nil
	}

	return nil, false, nil
}

// expandLI materializes a 32-bit constant. Values fitting 12 signed bits
// become a single addi; otherwise a lui carries the upper 20 bits,
// rounded up when the low half is negative, with a compensating addi when
// the low half is nonzero. The split is a pure function of the value, so
// the instruction count never changes between passes.
func expandLI(st statement) ([]statement, error) {
	rd := st.operands[0]

	v, err := parseImm(st.line, st.operands[1])
	if err != nil {
		return nil, err
	}

	canon := func(mnemonic string, operands ...string) statement {
		return statement{line: st.line, mnemonic: mnemonic, operands: operands}
	}

	if fitsSigned(v, 12) {
		return []statement{
			canon("addi", rd, "x0", strconv.FormatInt(int64(v), 10)),
		}, nil
	}

	hi := (v + 0x800) >> 12
	lo := v - hi<<12
	hiStr := strconv.FormatInt(int64(uint32(hi)&0xFFFFF), 10)

	if lo == 0 {
		return []statement{canon("lui", rd, hiStr)}, nil
	}
	return []statement{
		canon("lui", rd, hiStr),
		canon("addi", rd, rd, strconv.FormatInt(int64(lo), 10)),
	}, nil
}
