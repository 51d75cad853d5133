package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory(emu.DefaultMemSize)
	})

	It("should start zero-filled", func() {
		Expect(memory.Read32(0)).To(Equal(uint32(0)))
		Expect(memory.Read8(emu.DefaultMemSize - 1)).To(Equal(uint8(0)))
	})

	It("should store words little-endian", func() {
		memory.Write32(0, 0xDEADBEEF)

		Expect(memory.Read8(0)).To(Equal(uint8(0xEF)))
		Expect(memory.Read8(1)).To(Equal(uint8(0xBE)))
		Expect(memory.Read8(2)).To(Equal(uint8(0xAD)))
		Expect(memory.Read8(3)).To(Equal(uint8(0xDE)))
	})

	It("should round-trip halfwords", func() {
		memory.Write16(10, 0xBEEF)

		Expect(memory.Read16(10)).To(Equal(uint16(0xBEEF)))
		Expect(memory.Read8(10)).To(Equal(uint8(0xEF)))
		Expect(memory.Read8(11)).To(Equal(uint8(0xBE)))
	})

	It("should read zero outside the image", func() {
		Expect(memory.Read8(emu.DefaultMemSize)).To(Equal(uint8(0)))
		Expect(memory.Read32(emu.DefaultMemSize * 2)).To(Equal(uint32(0)))
	})

	It("should drop writes outside the image", func() {
		memory.Write32(emu.DefaultMemSize, 0xFFFFFFFF)

		Expect(memory.Read32(emu.DefaultMemSize)).To(Equal(uint32(0)))
	})

	It("should clear to zero", func() {
		memory.Write32(100, 0x12345678)
		memory.Clear()

		Expect(memory.Read32(100)).To(Equal(uint32(0)))
	})
})
