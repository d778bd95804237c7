package tcp

import (
	"flowbuf/buffer"
	"flowbuf/config"
	"flowbuf/util/pool"
)

// newFlatPool specializes the teacher's generic bounded pool.Pool to
// recycle *buffer.Flat scratch buffers, replacing the sync.Pool of
// *bytes.Buffer the teacher kept in tcp/buffer_pool.go.
func newFlatPool(settings *config.BufferSettings) *pool.Pool {
	return pool.Empty(settings.RelayPoolCapacity, func() interface{} {
		return buffer.NewFlat(settings.FlatMaxSize)
	})
}

// getFlat borrows a Flat from p, resetting it before handing it back so
// leftover data from a previous borrower never leaks into a new one.
func getFlat(p *pool.Pool) *buffer.Flat {
	f := p.Get().(*buffer.Flat)
	f.Clear()
	return f
}

func putFlat(p *pool.Pool, f *buffer.Flat) {
	p.Put(f)
}
