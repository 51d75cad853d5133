package insts

import "strconv"

// ABINames maps each register index to its RISC-V calling-convention name.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// abiIndex is the reverse lookup, populated with both the ABI names and
// the numeric xN aliases so either spelling resolves to the same index.
var abiIndex = make(map[string]uint8, 2*len(ABINames)+1)

func init() {
	for i, name := range ABINames {
		abiIndex[name] = uint8(i)
		abiIndex["x"+strconv.Itoa(i)] = uint8(i)
	}
	abiIndex["fp"] = 8 // frame pointer alias for s0
}

// RegisterName returns the ABI name of a register index.
func RegisterName(reg uint8) string {
	if int(reg) >= len(ABINames) {
		return "?"
	}
	return ABINames[reg]
}

// RegisterIndex resolves a register spelled as an ABI name ("sp") or a
// numeric alias ("x2") to its index.
func RegisterIndex(name string) (uint8, bool) {
	reg, ok := abiIndex[name]
	return reg, ok
}
