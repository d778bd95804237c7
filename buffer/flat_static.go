package buffer

// FlatStatic is the fixed-capacity counterpart of Flat: it is backed by
// caller-provided storage whose length never changes. When the writable
// tail is exhausted but total free bytes suffice, it reclaims the
// consumed prefix with a memmove instead of reallocating — the same
// compaction the teacher's RingBuffer.transfer performs, specialized to
// a non-wrapping layout.
type FlatStatic struct {
	storage []byte
	in      int
	out     int
	last    int
	maxSize int
}

// NewFlatStatic wraps storage as a fixed-capacity buffer. capacity() and
// max_size() both start out as len(storage); SetMaxSize can lower the
// effective cap further but never past the physical storage.
func NewFlatStatic(storage []byte) *FlatStatic {
	return &FlatStatic{storage: storage, maxSize: len(storage)}
}

func (f *FlatStatic) Size() int     { return f.out - f.in }
func (f *FlatStatic) Capacity() int { return len(f.storage) }
func (f *FlatStatic) MaxSize() int  { return f.maxSize }

// SetMaxSize changes the cap Prepare/Reserve enforce. It never throws;
// n is clamped to len(storage) since this buffer's storage never grows.
func (f *FlatStatic) SetMaxSize(n int) {
	if n > len(f.storage) {
		n = len(f.storage)
	}
	f.maxSize = n
}

func (f *FlatStatic) Prepare(n int) (Sequence, error) {
	sz := f.Size()
	if sz+n > f.maxSize {
		return nil, tooBig(sz+n, f.maxSize)
	}
	if n <= len(f.storage)-f.out {
		f.last = f.out + n
		return Sequence{f.storage[f.out:f.last]}, nil
	}
	// Tail insufficient but total free bytes suffice: reclaim the
	// consumed prefix in place.
	copy(f.storage, f.storage[f.in:f.out])
	f.out = sz
	f.in = 0
	f.last = f.out + n
	return Sequence{f.storage[f.out:f.last]}, nil
}

func (f *FlatStatic) Commit(n int) {
	if f.out+n > f.last {
		n = f.last - f.out
	}
	f.out += n
	f.last = f.out
}

func (f *FlatStatic) Consume(n int) {
	if n >= f.Size() {
		f.in, f.out = 0, 0
		return
	}
	f.in += n
}

func (f *FlatStatic) Data() Sequence { return Sequence{f.storage[f.in:f.out]} }

func (f *FlatStatic) DataRange(pos, n int) Sequence {
	sz := f.Size()
	if pos > sz {
		return Sequence{}
	}
	if n > sz-pos {
		n = sz - pos
	}
	start := f.in + pos
	return Sequence{f.storage[start : start+n]}
}

func (f *FlatStatic) Grow(n int) error {
	if _, err := f.Prepare(n); err != nil {
		return err
	}
	f.out = f.last
	return nil
}

func (f *FlatStatic) Shrink(n int) {
	sz := f.Size()
	if n > sz {
		n = sz
	}
	f.out -= n
	f.last = f.out
}

func (f *FlatStatic) Clear() {
	f.in, f.out, f.last = 0, 0, 0
}

// ShrinkToFit is a no-op: FlatStatic never reallocates.
func (f *FlatStatic) ShrinkToFit() error { return nil }

// Reserve succeeds only when n already fits within the current max size.
func (f *FlatStatic) Reserve(n int) error {
	if n > f.maxSize {
		return tooBig(n, f.maxSize)
	}
	return nil
}
