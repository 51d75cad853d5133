package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/emu"
)

// spyTracer records observed data-side accesses.
type spyTracer struct {
	loads  []uint32
	stores []uint32
}

func (t *spyTracer) OnLoad(addr uint32, size int)  { t.loads = append(t.loads, addr) }
func (t *spyTracer) OnStore(addr uint32, size int) { t.stores = append(t.stores, addr) }

var _ = Describe("Core", func() {
	var core *emu.Core

	BeforeEach(func() {
		core = emu.NewCore()
	})

	Describe("NewCore", func() {
		It("should create a core with initialized components", func() {
			Expect(core.RegFile()).NotTo(BeNil())
			Expect(core.Memory()).NotTo(BeNil())
			Expect(core.PC()).To(Equal(uint32(0)))
			Expect(core.Cycles()).To(Equal(uint32(0)))
		})
	})

	Describe("LoadProgram", func() {
		It("should place words little-endian from address 0", func() {
			core.LoadProgram([]uint32{0xDEADBEEF, 0x00000013})

			Expect(core.Memory().Read8(0)).To(Equal(uint8(0xEF)))
			Expect(core.Memory().Read8(3)).To(Equal(uint8(0xDE)))
			Expect(core.Memory().Read32(4)).To(Equal(uint32(0x13)))
		})

		It("should point sp at the top of memory", func() {
			core.LoadProgram([]uint32{0x00000013})

			Expect(core.RegFile().ReadReg(2)).To(Equal(int32(emu.DefaultMemSize)))
		})

		It("should clear registers, PC, and the cycle counter", func() {
			core.RegFile().WriteReg(5, 99)
			core.LoadProgram([]uint32{0x00000013})
			core.Step()

			core.LoadProgram([]uint32{0x00000013})

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(0)))
			Expect(core.PC()).To(Equal(uint32(0)))
			Expect(core.Cycles()).To(Equal(uint32(0)))
		})
	})

	Describe("Step", func() {
		It("should run the addi chain", func() {
			// addi x5, x0, 10; addi x6, x5, 5
			core.LoadProgram([]uint32{0x00A00293, 0x00528313})

			core.Step()
			core.Step()

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(10)))
			Expect(core.RegFile().ReadReg(6)).To(Equal(int32(15)))
			Expect(core.PC()).To(Equal(uint32(8)))
			Expect(core.Cycles()).To(Equal(uint32(2)))
		})

		It("should execute lui x5, 1 as 4096", func() {
			core.LoadProgram([]uint32{0x000012B7})

			core.Step()

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(4096)))
		})

		It("should round-trip a store and a load", func() {
			// addi x1, x0, 77; addi x2, x0, 512; sw x1, 0(x2); lw x3, 0(x2)
			core.LoadProgram([]uint32{
				0x04D00093, 0x20000113, 0x00112023, 0x00012183,
			})

			for i := 0; i < 4; i++ {
				core.Step()
			}

			Expect(core.RegFile().ReadReg(3)).To(Equal(int32(77)))
			Expect(core.RegFile().ReadReg(3)).To(Equal(core.RegFile().ReadReg(1)))
			Expect(core.Memory().Read32(512)).To(Equal(uint32(77)))
		})

		It("should not take beq when the operands differ", func() {
			// beq x0, x1, +8
			core.LoadProgram([]uint32{0x00100463})
			core.RegFile().WriteReg(1, 5)

			core.Step()

			Expect(core.PC()).To(Equal(uint32(4)))
		})

		It("should take beq when the operands are equal", func() {
			core.LoadProgram([]uint32{0x00100463})

			core.Step()

			Expect(core.PC()).To(Equal(uint32(8)))
		})

		It("should link and jump on jal", func() {
			// jal x1, +8
			core.LoadProgram([]uint32{0x008000EF})

			core.Step()

			Expect(core.RegFile().ReadReg(1)).To(Equal(int32(4)))
			Expect(core.PC()).To(Equal(uint32(8)))
		})

		It("should jump through a register on jalr", func() {
			// jalr x0, 0(x1)
			core.LoadProgram([]uint32{0x00008067})
			core.RegFile().WriteReg(1, 16)

			core.Step()

			Expect(core.PC()).To(Equal(uint32(16)))
		})

		It("should discard writes to register 0", func() {
			// addi x0, x0, 99
			core.LoadProgram([]uint32{0x06300013})

			core.Step()

			Expect(core.RegFile().ReadReg(0)).To(Equal(int32(0)))
		})

		It("should warn on an undecodable word and keep going", func() {
			core.LoadProgram([]uint32{0xFFFFFFFF, 0x00A00293})

			result := core.Step()

			Expect(result.Halted).To(BeFalse())
			Expect(result.Warn).To(HaveOccurred())
			Expect(core.PC()).To(Equal(uint32(4)))
			Expect(core.Cycles()).To(Equal(uint32(1)))

			core.Step()
			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(10)))
		})

		It("should halt once the cycle ceiling is reached", func() {
			small := emu.NewCore(emu.WithCycleLimit(2))
			small.LoadProgram([]uint32{0x00000063}) // beq x0, x0, 0

			Expect(small.Step().Halted).To(BeFalse())
			Expect(small.Step().Halted).To(BeFalse())
			Expect(small.Step().Halted).To(BeTrue())
			Expect(small.Cycles()).To(Equal(uint32(2)))
		})
	})

	Describe("Run", func() {
		It("should halt a branch-to-self exactly at the ceiling", func() {
			core.LoadProgram([]uint32{0x00000063}) // beq x0, x0, 0

			core.Run()

			Expect(core.Cycles()).To(Equal(uint32(emu.DefaultCycleLimit)))
			Expect(core.PC()).To(Equal(uint32(0)))
		})

		It("should halt when the PC runs past the end of memory", func() {
			core.LoadProgram([]uint32{0x00A00293})

			core.Run()

			Expect(core.Cycles()).To(Equal(uint32(emu.DefaultMemSize / 4)))
			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(10)))
		})
	})

	Describe("Reset", func() {
		It("should zero registers, memory, PC, and cycles", func() {
			core.LoadProgram([]uint32{0x00A00293})
			core.Step()

			core.Reset()

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(0)))
			Expect(core.RegFile().ReadReg(2)).To(Equal(int32(0)))
			Expect(core.Memory().Read32(0)).To(Equal(uint32(0)))
			Expect(core.PC()).To(Equal(uint32(0)))
			Expect(core.Cycles()).To(Equal(uint32(0)))
		})

		It("should be idempotent", func() {
			core.LoadProgram([]uint32{0x00A00293})
			core.Step()

			core.Reset()
			core.Reset()

			Expect(core.PC()).To(Equal(uint32(0)))
			Expect(core.Cycles()).To(Equal(uint32(0)))
		})
	})

	Describe("memory tracing", func() {
		It("should report loads and stores to the tracer", func() {
			tracer := &spyTracer{}
			traced := emu.NewCore(emu.WithMemTracer(tracer))

			// addi x2, x0, 512; sw x2, 0(x2); lw x3, 4(x2)
			traced.LoadProgram([]uint32{0x20000113, 0x00212023, 0x00412183})
			for i := 0; i < 3; i++ {
				traced.Step()
			}

			Expect(tracer.stores).To(Equal([]uint32{512}))
			Expect(tracer.loads).To(Equal([]uint32{516}))
		})
	})

	Describe("assembled programs", func() {
		It("should execute the li pseudo-instruction", func() {
			prog, err := asm.Assemble("li x5, 2000")
			Expect(err).NotTo(HaveOccurred())

			core.LoadProgram(prog.MachineCode)
			for range prog.MachineCode {
				core.Step()
			}

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(2000)))
		})

		It("should execute a wide li split across lui and addi", func() {
			prog, err := asm.Assemble("li x5, -4097")
			Expect(err).NotTo(HaveOccurred())

			core.LoadProgram(prog.MachineCode)
			for range prog.MachineCode {
				core.Step()
			}

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(-4097)))
		})

		It("should run a counting loop to completion", func() {
			prog, err := asm.Assemble(
				"addi x5, x0, 3\n" +
					"loop: addi x5, x5, -1\n" +
					"bnez x5, loop")
			Expect(err).NotTo(HaveOccurred())

			core.LoadProgram(prog.MachineCode)
			for i := 0; i < 7; i++ {
				core.Step()
			}

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(0)))
			Expect(core.PC()).To(Equal(uint32(12)))
		})

		It("should load a data address with la", func() {
			prog, err := asm.Assemble("la x5, data\ndata: .word 42")
			Expect(err).NotTo(HaveOccurred())

			core.LoadProgram(prog.MachineCode)
			core.Step()
			core.Step()

			Expect(core.RegFile().ReadReg(5)).To(Equal(int32(8)))
			Expect(core.Memory().Read32(8)).To(Equal(uint32(42)))
		})
	})
})
