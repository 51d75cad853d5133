// Package asm implements a two-pass RV32I assembler. The first pass
// expands pseudo-instructions, collects label definitions, and parses
// operands; the second pass resolves label references and encodes
// machine-code words.
package asm

import (
	"fmt"
	"strings"

	"github.com/sarchlab/rvsim/insts"
)

// Program is the output of a successful assembly.
type Program struct {
	// MachineCode holds one encoded word per instruction, in address
	// order starting at 0.
	MachineCode []uint32

	// Symbols maps each label to its byte address. A label with no
	// following instruction points one past the last emitted word.
	Symbols map[string]uint32

	// ExpansionLog records every pseudo-instruction expansion as
	// "original => replacement[; replacement]", in source order.
	ExpansionLog []string
}

// relocKind tells the second pass how to turn a label address into an
// immediate.
type relocKind uint8

const (
	relocNone relocKind = iota

	// relocBranch and relocJAL produce the byte offset from the
	// instruction to the label.
	relocBranch
	relocJAL

	// relocPCRelHi produces the rounded upper 20 bits of the offset from
	// the auipc to the label. relocPCRelLo produces the matching low 12
	// bits, measured from the auipc one word earlier.
	relocPCRelHi
	relocPCRelLo
)

// instr is one word pending encoding.
type instr struct {
	line int
	addr uint32

	desc         insts.Desc
	rd, rs1, rs2 uint8
	imm          int32
	label        string
	reloc        relocKind

	// .word directives carry the payload directly.
	isWord bool
	word   uint32
}

// Assemble translates RV32I assembly source into a Program. The first
// error encountered stops assembly; errors carry 1-based line numbers.
func Assemble(src string) (*Program, error) {
	a := &assembler{symbols: make(map[string]uint32)}

	if err := a.firstPass(src); err != nil {
		return nil, err
	}

	code, err := a.secondPass()
	if err != nil {
		return nil, err
	}

	return &Program{
		MachineCode:  code,
		Symbols:      a.symbols,
		ExpansionLog: a.log,
	}, nil
}

type assembler struct {
	symbols map[string]uint32
	insts   []instr
	log     []string
}

func (a *assembler) nextAddr() uint32 {
	return uint32(len(a.insts)) * 4
}

func (a *assembler) emit(it instr) {
	it.addr = a.nextAddr()
	a.insts = append(a.insts, it)
}

func (a *assembler) defineLabel(lineNo int, name string) error {
	if _, exists := a.symbols[name]; exists {
		return &SyntaxError{
			Line: lineNo,
			Msg:  fmt.Sprintf("duplicate label %q", name),
		}
	}
	a.symbols[name] = a.nextAddr()
	return nil
}

func (a *assembler) firstPass(src string) error {
	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1

		labels, rest, err := splitLabels(lineNo, stripComment(raw))
		if err != nil {
			return err
		}
		for _, label := range labels {
			if err := a.defineLabel(lineNo, label); err != nil {
				return err
			}
		}
		if rest == "" {
			continue
		}

		st, err := parseStatement(lineNo, rest)
		if err != nil {
			return err
		}

		if err := a.assembleStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) assembleStatement(st statement) error {
	switch st.mnemonic {
	case ".word":
		return a.emitWord(st)
	case "la":
		return a.emitLoadAddress(st)
	case "call":
		return a.emitCall(st)
	}

	expanded, isPseudo, err := expandPseudo(st)
	if err != nil {
		return err
	}
	if !isPseudo {
		it, err := a.parseCanonical(st)
		if err != nil {
			return err
		}
		a.emit(it)
		return nil
	}

	rendered := make([]string, len(expanded))
	for i, exp := range expanded {
		it, err := a.parseCanonical(exp)
		if err != nil {
			return err
		}
		a.emit(it)
		rendered[i] = exp.render()
	}
	a.logExpansion(st, strings.Join(rendered, "; "))
	return nil
}

func (a *assembler) logExpansion(st statement, replacement string) {
	a.log = append(a.log, st.render()+" => "+replacement)
}

// emitWord handles the .word directive: a raw 32-bit value placed in the
// instruction stream.
func (a *assembler) emitWord(st statement) error {
	if len(st.operands) != 1 {
		return &SyntaxError{Line: st.line, Msg: ".word expects 1 operand"}
	}
	v, err := parseImm(st.line, st.operands[0])
	if err != nil {
		return err
	}
	a.emit(instr{line: st.line, isWord: true, word: uint32(v)})
	return nil
}

// emitLoadAddress expands "la rd, label" into an auipc/addi pair carrying
// PC-relative relocations, so the loaded address is position-correct
// wherever the label lands.
func (a *assembler) emitLoadAddress(st statement) error {
	if len(st.operands) != 2 {
		return &SyntaxError{Line: st.line, Msg: "la expects 2 operands"}
	}
	rd, err := parseReg(st.line, st.operands[0])
	if err != nil {
		return err
	}
	label := st.operands[1]
	if !isValidLabel(label) {
		return &SyntaxError{
			Line: st.line,
			Msg:  fmt.Sprintf("invalid label %q", label),
		}
	}

	auipc, _ := insts.Lookup("auipc")
	addi, _ := insts.Lookup("addi")
	a.emit(instr{
		line: st.line, desc: auipc, rd: rd,
		label: label, reloc: relocPCRelHi,
	})
	a.emit(instr{
		line: st.line, desc: addi, rd: rd, rs1: rd,
		label: label, reloc: relocPCRelLo,
	})

	rdName := st.operands[0]
	a.logExpansion(st, fmt.Sprintf(
		"auipc %s, %%pcrel_hi(%s); addi %s, %s, %%pcrel_lo(%s)",
		rdName, label, rdName, rdName, label))
	return nil
}

// emitCall expands "call label" into an auipc/jalr pair linking through
// ra, reaching targets beyond the jal range.
func (a *assembler) emitCall(st statement) error {
	if len(st.operands) != 1 {
		return &SyntaxError{Line: st.line, Msg: "call expects 1 operand"}
	}
	label := st.operands[0]
	if !isValidLabel(label) {
		return &SyntaxError{
			Line: st.line,
			Msg:  fmt.Sprintf("invalid label %q", label),
		}
	}

	ra, _ := insts.RegisterIndex("ra")
	auipc, _ := insts.Lookup("auipc")
	jalr, _ := insts.Lookup("jalr")
	a.emit(instr{
		line: st.line, desc: auipc, rd: ra,
		label: label, reloc: relocPCRelHi,
	})
	a.emit(instr{
		line: st.line, desc: jalr, rd: ra, rs1: ra,
		label: label, reloc: relocPCRelLo,
	})

	a.logExpansion(st, fmt.Sprintf(
		"auipc ra, %%pcrel_hi(%s); jalr ra, %%pcrel_lo(%s)(ra)",
		label, label))
	return nil
}

// parseCanonical parses the operands of a canonical instruction into an
// instr pending encoding. Immediate range checks happen in the second
// pass, where label-derived offsets are also known.
func (a *assembler) parseCanonical(st statement) (instr, error) {
	desc, ok := insts.Lookup(st.mnemonic)
	if !ok {
		return instr{}, &SyntaxError{
			Line: st.line,
			Msg:  fmt.Sprintf("unknown instruction %q", st.mnemonic),
		}
	}

	it := instr{line: st.line, desc: desc}
	ops := st.operands

	operandErr := func(want string) error {
		return &SyntaxError{
			Line: st.line,
			Msg:  fmt.Sprintf("%s expects operands %q", st.mnemonic, want),
		}
	}

	var err error
	switch desc.Format {
	case insts.FormatR:
		if len(ops) != 3 {
			return instr{}, operandErr("rd, rs1, rs2")
		}
		if it.rd, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.rs1, err = parseReg(st.line, ops[1]); err != nil {
			return instr{}, err
		}
		if it.rs2, err = parseReg(st.line, ops[2]); err != nil {
			return instr{}, err
		}

	case insts.FormatI:
		if len(ops) != 3 {
			return instr{}, operandErr("rd, rs1, imm")
		}
		if it.rd, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.rs1, err = parseReg(st.line, ops[1]); err != nil {
			return instr{}, err
		}
		if it.imm, err = parseImm(st.line, ops[2]); err != nil {
			return instr{}, err
		}

	case insts.FormatLoad:
		if len(ops) != 2 {
			return instr{}, operandErr("rd, offset(base)")
		}
		if it.rd, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.imm, it.rs1, err = parseMem(st.line, ops[1]); err != nil {
			return instr{}, err
		}

	case insts.FormatStore:
		if len(ops) != 2 {
			return instr{}, operandErr("rs2, offset(base)")
		}
		if it.rs2, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.imm, it.rs1, err = parseMem(st.line, ops[1]); err != nil {
			return instr{}, err
		}

	case insts.FormatBranch:
		if len(ops) != 3 {
			return instr{}, operandErr("rs1, rs2, target")
		}
		if it.rs1, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.rs2, err = parseReg(st.line, ops[1]); err != nil {
			return instr{}, err
		}
		if it.imm, it.label, err = parseTarget(st.line, ops[2]); err != nil {
			return instr{}, err
		}
		if it.label != "" {
			it.reloc = relocBranch
		}

	case insts.FormatJ:
		// "jal target" implicitly links through ra.
		switch len(ops) {
		case 1:
			it.rd, _ = insts.RegisterIndex("ra")
			if it.imm, it.label, err = parseTarget(st.line, ops[0]); err != nil {
				return instr{}, err
			}
		case 2:
			if it.rd, err = parseReg(st.line, ops[0]); err != nil {
				return instr{}, err
			}
			if it.imm, it.label, err = parseTarget(st.line, ops[1]); err != nil {
				return instr{}, err
			}
		default:
			return instr{}, operandErr("rd, target")
		}
		if it.label != "" {
			it.reloc = relocJAL
		}

	case insts.FormatJALR:
		// Both "jalr rd, offset(rs1)" and "jalr rd, rs1, imm" are
		// accepted.
		switch {
		case len(ops) == 2 && strings.ContainsRune(ops[1], '('):
			if it.rd, err = parseReg(st.line, ops[0]); err != nil {
				return instr{}, err
			}
			if it.imm, it.rs1, err = parseMem(st.line, ops[1]); err != nil {
				return instr{}, err
			}
		case len(ops) == 3:
			if it.rd, err = parseReg(st.line, ops[0]); err != nil {
				return instr{}, err
			}
			if it.rs1, err = parseReg(st.line, ops[1]); err != nil {
				return instr{}, err
			}
			if it.imm, err = parseImm(st.line, ops[2]); err != nil {
				return instr{}, err
			}
		default:
			return instr{}, operandErr("rd, offset(rs1)")
		}

	case insts.FormatU:
		if len(ops) != 2 {
			return instr{}, operandErr("rd, imm")
		}
		if it.rd, err = parseReg(st.line, ops[0]); err != nil {
			return instr{}, err
		}
		if it.imm, err = parseImm(st.line, ops[1]); err != nil {
			return instr{}, err
		}
	}

	return it, nil
}

func (a *assembler) secondPass() ([]uint32, error) {
	code := make([]uint32, 0, len(a.insts))
	for _, it := range a.insts {
		word, err := a.encode(it)
		if err != nil {
			return nil, err
		}
		code = append(code, word)
	}
	return code, nil
}

// resolve turns a label reference into the instruction's immediate.
func (a *assembler) resolve(it instr) (int32, error) {
	if it.label == "" {
		return it.imm, nil
	}

	sym, ok := a.symbols[it.label]
	if !ok {
		return 0, &UndefinedLabelError{Line: it.line, Label: it.label}
	}

	switch it.reloc {
	case relocBranch, relocJAL:
		return int32(sym) - int32(it.addr), nil
	case relocPCRelHi:
		d := int32(sym) - int32(it.addr)
		return (d + 0x800) >> 12, nil
	case relocPCRelLo:
		d := int32(sym) - int32(it.addr-4)
		return d - ((d+0x800)>>12)<<12, nil
	}
	return it.imm, nil
}

func (a *assembler) encode(it instr) (uint32, error) {
	if it.isWord {
		return it.word, nil
	}

	imm, err := a.resolve(it)
	if err != nil {
		return 0, err
	}

	switch it.desc.Format {
	case insts.FormatR:
		return insts.EncodeR(it.desc, it.rd, it.rs1, it.rs2), nil

	case insts.FormatI:
		switch it.desc.Op {
		case insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
			if imm < 0 || imm > 31 {
				return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 5}
			}
			return insts.EncodeShift(it.desc, it.rd, it.rs1, uint32(imm)), nil
		}
		if !fitsSigned(imm, 12) {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 12}
		}
		return insts.EncodeI(it.desc, it.rd, it.rs1, imm), nil

	case insts.FormatLoad, insts.FormatJALR:
		if !fitsSigned(imm, 12) {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 12}
		}
		return insts.EncodeI(it.desc, it.rd, it.rs1, imm), nil

	case insts.FormatStore:
		if !fitsSigned(imm, 12) {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 12}
		}
		return insts.EncodeS(it.desc, it.rs1, it.rs2, imm), nil

	case insts.FormatBranch:
		if !fitsSigned(imm, 13) {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 13}
		}
		if imm&1 != 0 {
			return 0, &SyntaxError{
				Line: it.line,
				Msg:  fmt.Sprintf("branch offset %d is odd", imm),
			}
		}
		return insts.EncodeB(it.desc, it.rs1, it.rs2, imm), nil

	case insts.FormatJ:
		if !fitsSigned(imm, 21) {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 21}
		}
		if imm&1 != 0 {
			return 0, &SyntaxError{
				Line: it.line,
				Msg:  fmt.Sprintf("jump offset %d is odd", imm),
			}
		}
		return insts.EncodeJ(it.desc, it.rd, imm), nil

	case insts.FormatU:
		if imm < -(1<<19) || imm > 0xFFFFF {
			return 0, &ImmediateRangeError{Line: it.line, Value: imm, Bits: 20}
		}
		return insts.EncodeU(it.desc, it.rd, imm), nil
	}

	return 0, &SyntaxError{Line: it.line, Msg: "unencodable instruction"}
}
