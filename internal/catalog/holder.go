package catalog

import "sync/atomic"

// Holder publishes the current catalog snapshot. A query reads one snapshot and
// keeps using it even if a reload swaps in a newer one.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a holder publishing c.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap publishes c and returns the previous snapshot.
func (h *Holder) Swap(c *Catalog) *Catalog {
	return h.current.Swap(c)
}
