// Package main provides the entry point for rvsim.
// rvsim assembles an RV32I program and executes it on the emulated core.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/cache"
)

var (
	disasmOnly = flag.Bool("disasm", false, "Print the assembled program and exit")
	cacheStats = flag.Bool("cache", false, "Model an L1 data cache and report statistics")
	memSize    = flag.Uint("mem", emu.DefaultMemSize, "Memory image size in bytes")
	cycleLimit = flag.Uint("limit", emu.DefaultCycleLimit, "Cycle ceiling")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <program.s>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	src, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}

	prog, err := asm.Assemble(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programPath, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Assembled: %s (%d words)\n", programPath, len(prog.MachineCode))
		for _, entry := range prog.ExpansionLog {
			fmt.Printf("  expanded: %s\n", entry)
		}
	}

	if *disasmOnly {
		printDisassembly(prog)
		return
	}

	run(prog)
}

// printDisassembly lists the assembled words with their decoded form.
func printDisassembly(prog *asm.Program) {
	for i, word := range prog.MachineCode {
		addr := uint32(i) * 4
		fmt.Printf("0x%04x: %08x  %s\n", addr, word, insts.Disassemble(word, addr))
	}
}

func run(prog *asm.Program) {
	opts := []emu.CoreOption{
		emu.WithMemSize(uint32(*memSize)),
		emu.WithCycleLimit(uint32(*cycleLimit)),
	}

	var monitor *cache.Monitor
	if *cacheStats {
		monitor = cache.NewMonitor(cache.New(cache.DefaultL1DConfig()))
		opts = append(opts, emu.WithMemTracer(monitor))
	}

	core := emu.NewCore(opts...)
	core.LoadProgram(prog.MachineCode)
	core.Run()

	printRegisters(core)
	if *verbose {
		printDataSegment(core)
	}

	if monitor != nil {
		printCacheStats(monitor.Cache())
	}
}

func printRegisters(core *emu.Core) {
	fmt.Printf("pc=0x%04x cycles=%d\n", core.PC(), core.Cycles())
	for reg := uint8(0); reg < 32; reg++ {
		fmt.Printf("%-4s %11d", insts.RegisterName(reg), core.RegFile().ReadReg(reg))
		if reg%4 == 3 {
			fmt.Println()
		} else {
			fmt.Print("  ")
		}
	}
}

// printDataSegment dumps the nonzero words of the data region.
func printDataSegment(core *emu.Core) {
	end := uint32(emu.DataSegmentBase + emu.DataSegmentSize)
	if end > core.Memory().Size() {
		end = core.Memory().Size()
	}
	for addr := uint32(emu.DataSegmentBase); addr < end; addr += 4 {
		if word := core.Memory().Read32(addr); word != 0 {
			fmt.Printf("mem[0x%04x] = 0x%08x\n", addr, word)
		}
	}
}

func printCacheStats(c *cache.Cache) {
	stats := c.Stats()
	fmt.Printf("\nL1D: loads=%d stores=%d hits=%d misses=%d hit-rate=%.2f\n",
		stats.Loads, stats.Stores, stats.Hits, stats.Misses, stats.HitRate())
	fmt.Printf("     evictions=%d writebacks=%d modeled-cycles=%d\n",
		stats.Evictions, stats.Writebacks, stats.Cycles)
}
