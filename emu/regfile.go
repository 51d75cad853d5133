// Package emu provides functional RV32I emulation.
package emu

// RegFile represents the RV32I register file: 32 signed 32-bit
// general-purpose registers plus the program counter. Register x0 is the
// hardwired zero register.
type RegFile struct {
	// X holds general-purpose registers x0-x31. X[0] always reads as 0;
	// writes to it are ignored.
	X [32]int32

	// PC is the program counter, a byte address into memory.
	PC uint32
}

// ReadReg reads a register value. Out-of-range indices read as 0.
func (r *RegFile) ReadReg(reg uint8) int32 {
	if reg >= 32 {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to x0 and out-of-range
// indices are discarded.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.X[reg] = value
}
