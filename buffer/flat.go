package buffer

// Flat is a linear dynamic buffer: a single contiguous heap allocation
// split into a readable prefix and a writable suffix, bounded by a
// configurable max size. It grows by reallocating (never in place),
// grounded on the exponential-growth, strong-guarantee reallocation
// shape of the teacher's RingBuffer.grow/transfer.
//
// Markers (spec.md §3): begin is always index 0 of storage; in <= out <=
// last <= len(storage). R = storage[in:out], W = storage[out:last],
// free = storage[last:].
type Flat struct {
	allocHandle
	storage []byte
	in      int
	out     int
	last    int
	maxSize int
}

// NewFlat returns an empty Flat with the given max size.
func NewFlat(maxSize int) *Flat {
	return &Flat{allocHandle: newAllocHandle(nil, AllocPolicy{}), maxSize: maxSize}
}

// NewFlatAlloc returns an empty Flat using a custom Allocator and
// propagation policy.
func NewFlatAlloc(maxSize int, a Allocator, p AllocPolicy) *Flat {
	return &Flat{allocHandle: newAllocHandle(a, p), maxSize: maxSize}
}

func (f *Flat) Size() int     { return f.out - f.in }
func (f *Flat) Capacity() int { return len(f.storage) }
func (f *Flat) MaxSize() int  { return f.maxSize }

// SetMaxSize changes the cap future Prepare/Grow/Reserve calls enforce.
// It never throws and does not touch existing storage, even when n is
// smaller than the current size or capacity.
func (f *Flat) SetMaxSize(n int) { f.maxSize = n }

// Prepare reserves n writable bytes, growing or reallocating storage as
// needed. Any prior readable/writable sequence is invalidated.
func (f *Flat) Prepare(n int) (Sequence, error) {
	sz := f.Size()
	if sz+n > f.maxSize {
		return nil, tooBig(sz+n, f.maxSize)
	}
	cap_ := len(f.storage)
	if n <= cap_-f.out {
		f.last = f.out + n
		return Sequence{f.storage[f.out:f.last]}, nil
	}
	if n <= cap_-sz {
		f.compact()
		f.last = f.out + n
		return Sequence{f.storage[f.out:f.last]}, nil
	}
	newCap := sz + n
	if d := 2 * cap_; d > newCap {
		newCap = d
	}
	if newCap > f.maxSize {
		newCap = f.maxSize
	}
	if newCap < sz+n {
		return nil, tooBig(sz+n, f.maxSize)
	}
	if err := f.reallocate(newCap); err != nil {
		return nil, err
	}
	f.last = f.out + n
	return Sequence{f.storage[f.out:f.last]}, nil
}

// compact memmoves the readable region to the front of storage,
// reclaiming the consumed prefix without reallocating.
func (f *Flat) compact() {
	sz := f.Size()
	copy(f.storage, f.storage[f.in:f.out])
	f.in = 0
	f.out = sz
}

// reallocate grows storage to newCap, copying the readable region to
// the front of the new allocation before releasing the old one (strong
// exception/error guarantee).
func (f *Flat) reallocate(newCap int) error {
	next, err := f.allocateChecked(newCap)
	if err != nil {
		return err
	}
	sz := f.Size()
	copy(next, f.storage[f.in:f.out])
	old := f.storage
	f.storage = next
	f.in = 0
	f.out = sz
	f.release(old)
	return nil
}

// Commit promotes up to n bytes of the pending writable region to
// readable; any unconsumed writable bytes are discarded.
func (f *Flat) Commit(n int) {
	if f.out+n > f.last {
		n = f.last - f.out
	}
	f.out += n
	f.last = f.out
}

// Consume discards up to n bytes from the front of the readable region.
func (f *Flat) Consume(n int) {
	if n >= f.Size() {
		f.in, f.out = 0, 0
		return
	}
	f.in += n
}

// Data returns the whole readable sequence.
func (f *Flat) Data() Sequence { return Sequence{f.storage[f.in:f.out]} }

// DataRange returns a windowed view [pos, pos+n) of the readable region,
// saturated at the current size.
func (f *Flat) DataRange(pos, n int) Sequence {
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

// Grow is Prepare(n) followed by immediately committing all n bytes.
func (f *Flat) Grow(n int) error {
	if _, err := f.Prepare(n); err != nil {
		return err
	}
	f.out = f.last
	return nil
}

// Shrink truncates the readable tail by n bytes, capped at size().
func (f *Flat) Shrink(n int) {
	sz := f.Size()
	if n > sz {
		n = sz
	}
	f.out -= n
	f.last = f.out
}

// Clear empties the buffer while preserving its allocated capacity.
func (f *Flat) Clear() {
	f.in, f.out, f.last = 0, 0, 0
}

// Reserve ensures capacity() >= n, reallocating if necessary.
func (f *Flat) Reserve(n int) error {
	if n > f.maxSize {
		return tooBig(n, f.maxSize)
	}
	if n <= len(f.storage) {
		return nil
	}
	return f.reallocate(n)
}

// ShrinkToFit reallocates storage down to exactly size(), releasing
// storage entirely when the buffer is empty.
func (f *Flat) ShrinkToFit() error {
	sz := f.Size()
	if sz == 0 {
		f.release(f.storage)
		f.storage = nil
		f.in, f.out, f.last = 0, 0, 0
		return nil
	}
	return f.reallocate(sz)
}

// Clone copy-constructs a new Flat with the same readable content.
// Allocator propagation: always uses its own allocator for the new
// storage (C++ select_on_container_copy_construction semantics).
func (f *Flat) Clone() *Flat {
	out := &Flat{allocHandle: f.allocHandle, maxSize: f.maxSize}
	sz := f.Size()
	if sz > 0 {
		out.storage = out.allocate(sz)
		copy(out.storage, f.storage[f.in:f.out])
		out.out = sz
	}
	return out
}

// Move transfers storage from src to f, leaving src empty. Prior
// readable/writable sequences obtained from src remain valid per the
// move-preserves-references exception to the invalidation rule.
func (f *Flat) Move(src *Flat) {
	f.moveFrom(src.allocHandle)
	f.storage, f.in, f.out, f.last, f.maxSize = src.storage, src.in, src.out, src.last, src.maxSize
	src.storage, src.in, src.out, src.last = nil, 0, 0, 0
}

// Swap exchanges storage (and, per policy, allocators) with other.
func (f *Flat) Swap(other *Flat) {
	f.swapWith(&other.allocHandle)
	f.storage, other.storage = other.storage, f.storage
	f.in, other.in = other.in, f.in
	f.out, other.out = other.out, f.out
	f.last, other.last = other.last, f.last
	f.maxSize, other.maxSize = other.maxSize, f.maxSize
}
