package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sarchlab/rvsim/insts"
)

// statement is one instruction or directive after comment stripping and
// label extraction.
type statement struct {
	line     int
	mnemonic string
	operands []string
}

// render reconstructs the statement in canonical spelling, used for the
// expansion log.
func (s statement) render() string {
	if len(s.operands) == 0 {
		return s.mnemonic
	}
	return s.mnemonic + " " + strings.Join(s.operands, ", ")
}

// stripComment removes a trailing '#' comment.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return line
}

// splitLabels peels leading "name:" definitions off a line and returns
// the remaining instruction text. A line may carry several labels ahead
// of one instruction, or labels alone.
func splitLabels(lineNo int, line string) (labels []string, rest string, err error) {
	rest = line
	for {
		i := strings.IndexByte(rest, ':')
		if i < 0 {
			return labels, strings.TrimSpace(rest), nil
		}

		name := strings.TrimSpace(rest[:i])
		if !isValidLabel(name) {
			return nil, "", &SyntaxError{
				Line: lineNo,
				Msg:  fmt.Sprintf("invalid label %q", name),
			}
		}

		labels = append(labels, name)
		rest = rest[i+1:]
	}
}

// isValidLabel reports whether s is a well-formed label name: a letter or
// underscore followed by letters, digits, and underscores.
func isValidLabel(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parseStatement splits an instruction line into a mnemonic and its
// comma-separated operands.
func parseStatement(lineNo int, text string) (statement, error) {
	mnemonic := text
	operandText := ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		mnemonic = text[:i]
		operandText = strings.TrimSpace(text[i+1:])
	}

	st := statement{
		line:     lineNo,
		mnemonic: strings.ToLower(mnemonic),
	}

	if operandText == "" {
		return st, nil
	}

	for _, op := range strings.Split(operandText, ",") {
		op = strings.TrimSpace(op)
		if op == "" {
			return statement{}, &SyntaxError{
				Line: lineNo,
				Msg:  fmt.Sprintf("empty operand in %q", text),
			}
		}
		st.operands = append(st.operands, op)
	}

	return st, nil
}

// parseReg resolves a register operand, accepting both ABI names and xN
// aliases.
func parseReg(lineNo int, tok string) (uint8, error) {
	reg, ok := insts.RegisterIndex(strings.ToLower(tok))
	if !ok {
		return 0, &SyntaxError{
			Line: lineNo,
			Msg:  fmt.Sprintf("unknown register %q", tok),
		}
	}
	return reg, nil
}

// parseImm parses a decimal or 0x-prefixed immediate. Values between
// 2^31 and 2^32-1 are accepted and reinterpreted as their two's-complement
// 32-bit form, so 0xFFFFF000 and -4096 spell the same word.
func parseImm(lineNo int, tok string) (int32, error) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil || v < math.MinInt32 || v > math.MaxUint32 {
		return 0, &SyntaxError{
			Line: lineNo,
			Msg:  fmt.Sprintf("invalid immediate %q", tok),
		}
	}
	return int32(uint32(v)), nil
}

// parseMem parses an "offset(base)" memory operand. The offset part may
// be omitted, defaulting to zero.
func parseMem(lineNo int, tok string) (imm int32, base uint8, err error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return 0, 0, &SyntaxError{
			Line: lineNo,
			Msg:  fmt.Sprintf("expected offset(base) operand, got %q", tok),
		}
	}

	if off := tok[:open]; off != "" {
		imm, err = parseImm(lineNo, off)
		if err != nil {
			return 0, 0, err
		}
	}

	base, err = parseReg(lineNo, tok[open+1:len(tok)-1])
	if err != nil {
		return 0, 0, err
	}
	return imm, base, nil
}

// parseTarget parses a branch or jump target: either a numeric byte
// offset or a label reference left for the second pass.
func parseTarget(lineNo int, tok string) (imm int32, label string, err error) {
	c := tok[0]
	if c == '-' || c == '+' || (c >= '0' && c <= '9') {
		imm, err = parseImm(lineNo, tok)
		return imm, "", err
	}
	if !isValidLabel(tok) {
		return 0, "", &SyntaxError{
			Line: lineNo,
			Msg:  fmt.Sprintf("invalid branch target %q", tok),
		}
	}
	return 0, tok, nil
}

// fitsSigned reports whether v is representable in the given number of
// two's-complement bits.
func fitsSigned(v int32, bits uint) bool {
	limit := int32(1) << (bits - 1)
	return v >= -limit && v < limit
}
