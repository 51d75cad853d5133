package cache

// Monitor bridges a core's data-side traffic into a Cache. It satisfies
// emu.MemTracer, so it can be attached with emu.WithMemTracer.
type Monitor struct {
	cache *Cache
}

// NewMonitor creates a monitor feeding the given cache.
func NewMonitor(c *Cache) *Monitor {
	return &Monitor{cache: c}
}

// Cache returns the observed cache model.
func (m *Monitor) Cache() *Cache {
	return m.cache
}

// OnLoad records a load access.
func (m *Monitor) OnLoad(addr uint32, size int) {
	m.cache.Load(addr, size)
}

// OnStore records a store access.
func (m *Monitor) OnStore(addr uint32, size int) {
	m.cache.Store(addr, size)
}
