package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/cache"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	// 128 bytes, 2-way, 16-byte lines: 4 sets. Block addresses 512, 576,
	// and 640 all land in set 0, so two ways overflow on the third.
	BeforeEach(func() {
		c = cache.New(cache.DefaultL1DConfig())
	})

	Describe("Load", func() {
		It("should miss on the first access to a line", func() {
			result := c.Load(512, 4)

			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(cache.DefaultL1DConfig().MissLatency))
		})

		It("should hit on a repeated access", func() {
			c.Load(512, 4)
			result := c.Load(512, 4)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(cache.DefaultL1DConfig().HitLatency))
		})

		It("should hit anywhere within a resident line", func() {
			c.Load(512, 4)

			Expect(c.Load(524, 4).Hit).To(BeTrue())
			Expect(c.Load(513, 1).Hit).To(BeTrue())
		})

		It("should miss on a different line in the same set", func() {
			c.Load(512, 4)

			Expect(c.Load(576, 4).Hit).To(BeFalse())
		})
	})

	Describe("eviction", func() {
		It("should evict the least recently used way on set overflow", func() {
			c.Load(512, 4)
			c.Load(576, 4)

			result := c.Load(640, 4)

			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint32(512)))
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should keep a recently revisited line resident", func() {
			c.Load(512, 4)
			c.Load(576, 4)
			c.Load(512, 4) // refresh LRU order

			result := c.Load(640, 4)

			Expect(result.EvictedAddr).To(Equal(uint32(576)))
			Expect(c.Load(512, 4).Hit).To(BeTrue())
		})

		It("should count a writeback when the victim is dirty", func() {
			c.Store(512, 4)
			c.Load(576, 4)
			c.Load(640, 4)

			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})

		It("should not count a writeback for a clean victim", func() {
			c.Load(512, 4)
			c.Load(576, 4)
			c.Load(640, 4)

			Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
		})
	})

	Describe("statistics", func() {
		It("should track accesses and the hit rate", func() {
			c.Load(512, 4)
			c.Load(512, 4)
			c.Store(516, 4)
			c.Load(576, 4)

			stats := c.Stats()
			Expect(stats.Loads).To(Equal(uint64(3)))
			Expect(stats.Stores).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(2)))
			Expect(stats.HitRate()).To(BeNumerically("~", 0.5))
		})

		It("should accumulate modeled cycles", func() {
			config := cache.DefaultL1DConfig()
			c.Load(512, 4)
			c.Load(512, 4)

			Expect(c.Stats().Cycles).To(
				Equal(config.MissLatency + config.HitLatency))
		})

		It("should report a zero hit rate with no accesses", func() {
			Expect(c.Stats().HitRate()).To(BeZero())
		})
	})

	Describe("Flush", func() {
		It("should write back dirty lines and invalidate everything", func() {
			c.Store(512, 4)
			c.Load(576, 4)

			c.Flush()

			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
			Expect(c.Load(512, 4).Hit).To(BeFalse())
			Expect(c.Load(576, 4).Hit).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should clear residency and statistics", func() {
			c.Store(512, 4)
			c.Load(512, 4)

			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Load(512, 4).Hit).To(BeFalse())
		})
	})
})

var _ = Describe("Monitor", func() {
	var _ emu.MemTracer = (*cache.Monitor)(nil)

	It("should feed core traffic into the cache", func() {
		monitor := cache.NewMonitor(cache.New(cache.DefaultL1DConfig()))

		core := emu.NewCore(emu.WithMemTracer(monitor))
		// addi x2, x0, 512; sw x2, 0(x2); lw x3, 0(x2); lw x4, 4(x2)
		core.LoadProgram([]uint32{
			0x20000113, 0x00212023, 0x00012183, 0x00412203,
		})
		for i := 0; i < 4; i++ {
			core.Step()
		}

		stats := monitor.Cache().Stats()
		Expect(stats.Stores).To(Equal(uint64(1)))
		Expect(stats.Loads).To(Equal(uint64(2)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(2)))
	})
})
