package buffer

// IndexedSequence is the minimal shape Component A and the Subrange view
// need from "any readable sequence": a fixed number of elements, each a
// contiguous byte span, accessible by position. Sequence (below) and
// Subrange both satisfy it, so subranges can be taken over either one.
type IndexedSequence interface {
	Len() int
	At(i int) []byte
}

// Sequence is an ordered list of byte spans — a readable or writable
// buffer sequence suitable for scatter/gather I/O. Its layout matches
// net.Buffers so a Sequence can be handed straight to vectored writes.
type Sequence [][]byte

func (s Sequence) Len() int { return len(s) }

func (s Sequence) At(i int) []byte { return s[i] }

// Size reports the total number of bytes across every span.
func (s Sequence) Size() int { return ByteCount(s) }

// Empty reports whether every span is zero length, short-circuiting on
// the first non-empty span.
func (s Sequence) Empty() bool { return IsEmpty(s) }

// ByteCount sums the size of every element of seq. It is Component A's
// byte_count operation, exposed as a free function so it applies to any
// IndexedSequence, not just the concrete Sequence type.
func ByteCount(seq IndexedSequence) int {
	total := 0
	for i, n := 0, seq.Len(); i < n; i++ {
		total += len(seq.At(i))
	}
	return total
}

// IsEmpty reports whether seq carries zero bytes. It short-circuits on
// the first non-empty element and is therefore cheaper than ByteCount
// for sequences with early non-empty spans.
func IsEmpty(seq IndexedSequence) bool {
	for i, n := 0, seq.Len(); i < n; i++ {
		if len(seq.At(i)) != 0 {
			return false
		}
	}
	return true
}

// Copy copies bytes span-by-span from src into dst, stopping when either
// is exhausted, and returns the number of bytes copied. Span boundaries
// in dst and src need not line up.
func Copy(dst, src Sequence) int {
	total := 0
	di, si := 0, 0
	var d, s []byte
	for di < len(dst) && si < len(src) {
		if d == nil {
			d = dst[di]
		}
		if s == nil {
			s = src[si]
		}
		n := copy(d, s)
		total += n
		d = d[n:]
		s = s[n:]
		if len(d) == 0 {
			di++
			d = nil
		}
		if len(s) == 0 {
			si++
			s = nil
		}
	}
	return total
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
