package asm

import "fmt"

// SyntaxError reports a malformed source line: unknown mnemonic or
// register, bad operand shape, duplicate label, and the like. Line is
// 1-based.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// UndefinedLabelError reports an instruction referencing a label that was
// never defined.
type UndefinedLabelError struct {
	Line  int
	Label string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("line %d: undefined label %q", e.Line, e.Label)
}

// ImmediateRangeError reports an immediate or offset that does not fit
// the encodable range of its instruction format.
type ImmediateRangeError struct {
	Line  int
	Value int32
	Bits  uint
}

func (e *ImmediateRangeError) Error() string {
	return fmt.Sprintf("line %d: immediate %d does not fit in %d bits", e.Line, e.Value, e.Bits)
}
