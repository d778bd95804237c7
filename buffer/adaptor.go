package buffer

// Adaptor wraps an existing Resizable and superimposes a second,
// possibly tighter, max_size cap — spec.md §4.G. It holds no storage of
// its own and forwards every operation to inner, applying
// min(its own cap, inner's intrinsic cap) before any overflow check.
type Adaptor struct {
	inner  Resizable
	maxCap int
}

// NewAdaptor wraps inner, capping max_size at maxSize (or inner's own
// max_size, whichever is smaller).
func NewAdaptor(inner Resizable, maxSize int) *Adaptor {
	return &Adaptor{inner: inner, maxCap: maxSize}
}

func (a *Adaptor) Size() int     { return a.inner.Size() }
func (a *Adaptor) Capacity() int { return a.inner.Capacity() }

func (a *Adaptor) MaxSize() int { return a.effectiveMax() }

// SetMaxSize changes the adaptor's own cap; the effective max_size
// still clamps to inner's, whichever is tighter.
func (a *Adaptor) SetMaxSize(n int) { a.maxCap = n }

func (a *Adaptor) effectiveMax() int {
	if m := a.inner.MaxSize(); m < a.maxCap {
		return m
	}
	return a.maxCap
}

func (a *Adaptor) Prepare(n int) (Sequence, error) {
	if max := a.effectiveMax(); a.Size()+n > max {
		return nil, tooBig(a.Size()+n, max)
	}
	return a.inner.Prepare(n)
}

func (a *Adaptor) Commit(n int)  { a.inner.Commit(n) }
func (a *Adaptor) Consume(n int) { a.inner.Consume(n) }

func (a *Adaptor) Grow(n int) error {
	if max := a.effectiveMax(); a.Size()+n > max {
		return tooBig(a.Size()+n, max)
	}
	return a.inner.Grow(n)
}

func (a *Adaptor) Shrink(n int) { a.inner.Shrink(n) }
func (a *Adaptor) Clear()       { a.inner.Clear() }

func (a *Adaptor) Data() Sequence                { return a.inner.Data() }
func (a *Adaptor) DataRange(pos, n int) Sequence { return a.inner.DataRange(pos, n) }

func (a *Adaptor) Reserve(n int) error {
	if max := a.effectiveMax(); n > max {
		return tooBig(n, max)
	}
	return a.inner.Reserve(n)
}

func (a *Adaptor) ShrinkToFit() error { return a.inner.ShrinkToFit() }
