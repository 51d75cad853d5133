// Package cache models a small L1 data cache using Akita cache
// components. The model is observational: it watches the data-side
// traffic of a core and tracks tags, LRU state, and statistics without
// ever serving architectural reads or writes itself.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache geometry and latency parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes the memory round trip)
	MissLatency uint64
}

// DefaultL1DConfig returns a small teaching-scale data cache: 128 bytes,
// 2-way, 16-byte lines. With a 1KB memory image this is enough to show
// hits, misses, and evictions on short programs.
func DefaultL1DConfig() Config {
	return Config{
		Size:          128,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    1,
		MissLatency:   10,
	}
}

// AccessResult describes one observed access.
type AccessResult struct {
	// Hit indicates whether the line was already resident.
	Hit bool
	// Latency is the modeled cycle cost of this access.
	Latency uint64
	// Evicted is true when a resident line was displaced.
	Evicted bool
	// EvictedAddr is the block address of the displaced line.
	EvictedAddr uint32
}

// Statistics accumulates counters over the observed traffic.
type Statistics struct {
	Loads      uint64
	Stores     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64

	// Cycles is the summed modeled latency of every access.
	Cycles uint64
}

// HitRate returns hits over total accesses, or 0 when nothing was
// observed.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache tracks the residency of 32-bit addressed lines. Tag and LRU
// state live in an Akita cache directory; the model is write-allocate
// and write-back, with dirty lines counted as writebacks on eviction.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a cache with the given geometry.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache geometry.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the accumulated statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Load observes a load access.
func (c *Cache) Load(addr uint32, size int) AccessResult {
	c.stats.Loads++
	return c.access(addr, false)
}

// Store observes a store access. The touched line turns dirty.
func (c *Cache) Store(addr uint32, size int) AccessResult {
	c.stats.Stores++
	return c.access(addr, true)
}

func (c *Cache) access(addr uint32, isStore bool) AccessResult {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.stats.Cycles += c.config.HitLatency
		c.directory.Visit(block)
		if isStore {
			block.IsDirty = true
		}
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	c.stats.Cycles += c.config.MissLatency
	result := AccessResult{Latency: c.config.MissLatency}

	victim := c.directory.FindVictim(uint64(blockAddr))
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)
		if victim.IsDirty {
			c.stats.Writebacks++
		}
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = isStore
	c.directory.Visit(victim)

	return result
}

// Flush counts a writeback for every dirty line and invalidates all
// lines. Statistics other than the writeback counter are kept.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all lines and clears the statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint32) uint32 {
	return addr / uint32(c.config.BlockSize) * uint32(c.config.BlockSize)
}
