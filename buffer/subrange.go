package buffer

import "math"

// Subrange is a buffers_subrange view: a [pos, pos+n) window over an
// underlying buffer sequence, trimmed at its first and last element and
// consumable from the front without ever touching the underlying
// storage. It does not own the sequence it views; the sequence must
// outlive the Subrange.
type Subrange struct {
	seq      IndexedSequence
	d0       int // elements skipped before beginIdx, for bookkeeping
	beginIdx int
	endIdx   int
	trim     int // bytes dropped from the first included element
	chop     int // bytes kept from the last included element before trim; 0 means "use it whole"
	ord      int // number of included elements
}

// NewSubrange returns a view over the whole of seq.
func NewSubrange(seq IndexedSequence) *Subrange {
	return newSubrange(seq, 0, math.MaxInt)
}

// NewSubrangePrefix returns a view over the first n bytes of seq.
func NewSubrangePrefix(seq IndexedSequence, n int) *Subrange {
	return newSubrange(seq, 0, n)
}

// NewSubrangeWindow returns a view over [pos, pos+n) of seq.
func NewSubrangeWindow(seq IndexedSequence, pos, n int) *Subrange {
	return newSubrange(seq, pos, n)
}

func newSubrange(seq IndexedSequence, pos, n int) *Subrange {
	total := seq.Len()
	i, d0 := 0, 0
	for i < total {
		sz := len(seq.At(i))
		if pos < sz {
			break
		}
		pos -= sz
		i++
		d0++
	}
	if i >= total || n <= 0 {
		return &Subrange{seq: seq, d0: d0, beginIdx: i, endIdx: i}
	}

	beginIdx := i
	trim := pos
	remaining := n
	firstAvail := len(seq.At(i)) - trim
	ord := 1
	chop := 0

	if remaining <= firstAvail {
		chop = trim + remaining
		i++
	} else {
		remaining -= firstAvail
		i++
		for i < total {
			sz := len(seq.At(i))
			ord++
			if remaining <= sz {
				if remaining < sz {
					chop = remaining
				}
				i++
				break
			}
			remaining -= sz
			i++
		}
	}
	return &Subrange{seq: seq, d0: d0, beginIdx: beginIdx, endIdx: i, trim: trim, chop: chop, ord: ord}
}

// Len returns the number of elements currently included in the view.
func (v *Subrange) Len() int { return v.ord }

// At returns the i-th element of the view, trimmed at the extremities
// per the construction algorithm: the last included element is reduced
// to its first chop bytes (when chop != 0), then the first included
// element has trim bytes dropped from its front.
func (v *Subrange) At(i int) []byte {
	b := v.seq.At(v.beginIdx + i)
	if i == v.ord-1 && v.chop != 0 {
		b = b[:v.chop]
	}
	if i == 0 {
		b = b[v.trim:]
	}
	return b
}

// Size is ByteCount(v); kept as a method for convenience since it is the
// operation callers reach for most.
func (v *Subrange) Size() int { return ByteCount(v) }

// Sequence materializes the view as a concrete Sequence, suitable for
// handing to scatter/gather I/O.
func (v *Subrange) Sequence() Sequence {
	out := make(Sequence, v.ord)
	for i := 0; i < v.ord; i++ {
		out[i] = v.At(i)
	}
	return out
}

// Consume removes a prefix of k bytes from the front of the view,
// adjusting beginIdx/d0/trim/ord only — it never touches the underlying
// sequence and never reallocates.
func (v *Subrange) Consume(k int) {
	if k <= 0 || v.ord == 0 {
		return
	}
	if v.ord == 1 {
		avail := v.chop
		if avail == 0 {
			avail = len(v.seq.At(v.beginIdx))
		}
		avail -= v.trim
		if k < avail {
			v.trim += k
		} else {
			v.clear()
		}
		return
	}

	firstSize := len(v.seq.At(v.beginIdx)) - v.trim
	if k < firstSize {
		v.trim += k
		return
	}
	k -= firstSize
	v.beginIdx++
	v.ord--
	v.d0++
	v.trim = 0

	for v.ord > 0 {
		if v.ord == 1 {
			avail := v.chop
			if avail == 0 {
				avail = len(v.seq.At(v.beginIdx))
			}
			if k < avail {
				v.trim = k
			} else {
				v.clear()
			}
			return
		}
		sz := len(v.seq.At(v.beginIdx))
		if k < sz {
			v.trim = k
			return
		}
		k -= sz
		v.beginIdx++
		v.ord--
		v.d0++
	}
}

func (v *Subrange) clear() {
	v.beginIdx = v.endIdx
	v.ord = 0
	v.trim = 0
	v.chop = 0
}
