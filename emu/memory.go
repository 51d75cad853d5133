package emu

// Memory layout constants. The instruction stream is loaded at address 0,
// the data segment sits at a fixed offset above it, and the stack grows
// down from the top of memory.
const (
	// DefaultMemSize is the size of the flat memory image in bytes.
	DefaultMemSize = 1024

	// DataSegmentBase is the conventional start of the data region.
	DataSegmentBase = 512

	// DataSegmentSize is the size of the data region in bytes.
	DataSegmentSize = 256
)

// Memory is a flat, zero-initialized, byte-addressable memory image.
// All multi-byte accesses are little-endian. Accesses outside the image
// are dropped: loads read 0 and stores are ignored, so execution stays
// total over arbitrary addresses.
type Memory struct {
	data []byte
}

// NewMemory creates a zero-filled memory image of the given size.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the size of the memory image in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Bytes returns the underlying byte image, for display.
func (m *Memory) Bytes() []byte {
	return m.data
}

// Clear zeroes the entire memory image.
func (m *Memory) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	if int(addr) >= len(m.data) {
		return 0
	}
	return m.data[addr]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	if int(addr) >= len(m.data) {
		return
	}
	m.data[addr] = value
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}
