package buffer

// Multi is a segmented dynamic buffer: a singly linked list of
// independently allocated nodes rather than one contiguous allocation.
// Prepare, Commit and Consume never memmove or reallocate existing data;
// it grows by appending nodes and shrinks by dropping consumed ones,
// reusing detached nodes across Prepare calls whenever it can. Only
// ShrinkToFit copies bytes, into exactly-sized replacement nodes. There is no idiomatic Go
// equivalent of an intrusive list, so the list is built from plain
// pointer-linked nodes rather than an arena of integer handles — Go's
// GC already reclaims a dropped node's backing array once released.
//
// State mirrors spec.md's own field list: in_pos/in_size describe the
// readable region starting at head; out/out_pos describe the boundary
// between readable and everything else (out == nil means that boundary
// sits exactly at the end of the last node, i.e. zero spare capacity);
// res_end/res_end_pos describe the far edge of the most recent Prepare's
// reservation, needed by Commit to know when it has walked off the end
// of what was actually reserved.
type Multi struct {
	allocHandle
	head, tail *node
	inPos      int
	inSize     int
	out        *node
	outPos     int
	resEnd     *node
	resEndPos  int
	pending    int
	maxSize    int
	nodeSize   int
	growth     int
}

type node struct {
	buf  []byte
	next *node
}

const (
	defaultNodeSize = 512
	defaultGrowth   = 1
)

// NewMulti returns an empty Multi with the given max size.
func NewMulti(maxSize int) *Multi {
	return &Multi{allocHandle: newAllocHandle(nil, AllocPolicy{}), maxSize: maxSize, nodeSize: defaultNodeSize, growth: defaultGrowth}
}

// NewMultiAlloc returns an empty Multi using a custom Allocator and
// propagation policy.
func NewMultiAlloc(maxSize int, a Allocator, p AllocPolicy) *Multi {
	return &Multi{allocHandle: newAllocHandle(a, p), maxSize: maxSize, nodeSize: defaultNodeSize, growth: defaultGrowth}
}

// NewMultiTuned is NewMulti with the node floor and growth multiplier
// exposed, for callers sizing a Multi from measured traffic rather than
// accepting the defaults — a zero nodeSize or growth falls back to the
// default rather than degenerating to no floor or no growth at all.
func NewMultiTuned(maxSize, nodeSize, growth int) *Multi {
	if nodeSize <= 0 {
		nodeSize = defaultNodeSize
	}
	if growth <= 0 {
		growth = defaultGrowth
	}
	return &Multi{allocHandle: newAllocHandle(nil, AllocPolicy{}), maxSize: maxSize, nodeSize: nodeSize, growth: growth}
}

func (m *Multi) Size() int    { return m.inSize }
func (m *Multi) MaxSize() int { return m.maxSize }

// SetMaxSize changes the cap Prepare/Grow/Reserve enforce. It never
// throws and does not touch the node list, even when n is smaller than
// the current size.
func (m *Multi) SetMaxSize(n int) { m.maxSize = n }

// Capacity is in_size plus whatever spare room exists in and after the
// *out node; when out is nil there is none.
func (m *Multi) Capacity() int {
	if m.out == nil {
		return m.inSize
	}
	total := m.inSize + (len(m.out.buf) - m.outPos)
	for n := m.out.next; n != nil; n = n.next {
		total += len(n.buf)
	}
	return total
}

// Prepare reserves n writable bytes, reusing any free-reserve nodes
// after the current boundary before allocating new ones. Any prior,
// uncommitted reservation is discarded and its nodes recycled.
func (m *Multi) Prepare(n int) (Sequence, error) {
	if m.inSize+n > m.maxSize {
		return nil, tooBig(m.inSize+n, m.maxSize)
	}

	var anchor *node
	var anchorPos int
	switch {
	case m.out != nil:
		anchor, anchorPos = m.out, m.outPos
	case m.tail != nil:
		anchor, anchorPos = m.tail, len(m.tail.buf)
	}

	// Detach everything after the anchor — free reserve and any
	// not-yet-committed reservation from a previous Prepare alike —
	// onto a reuse list.
	var reuse *node
	if anchor != nil {
		reuse = anchor.next
		anchor.next = nil
		m.tail = anchor
	}

	if n == 0 {
		m.reattach(anchor, reuse)
		m.resEnd, m.resEndPos, m.pending = anchor, anchorPos, 0
		if m.out == nil {
			m.out, m.outPos = anchor, anchorPos
		}
		return Sequence{}, nil
	}

	remaining := n
	var spans Sequence
	cur, curPos := anchor, anchorPos

	if cur != nil {
		if free := len(cur.buf) - curPos; free > 0 {
			take := minInt(free, remaining)
			spans = append(spans, cur.buf[curPos:curPos+take])
			curPos += take
			remaining -= take
		}
	}

	for remaining > 0 && reuse != nil {
		next := reuse
		reuse = reuse.next
		next.next = nil
		if cur == nil {
			m.head = next
		} else {
			cur.next = next
		}
		m.tail = next
		cur = next
		take := minInt(len(cur.buf), remaining)
		spans = append(spans, cur.buf[0:take])
		curPos = take
		remaining -= take
	}

	if remaining > 0 {
		used := m.inSize + (n - remaining)
		grow := m.inSize * m.growth
		if grow < m.nodeSize {
			grow = m.nodeSize
		}
		if grow < remaining {
			grow = remaining
		}
		size := grow
		if room := m.maxSize - used; size > room {
			size = room
		}
		if size < remaining {
			size = remaining
		}
		freshBuf, err := m.allocateChecked(size)
		if err != nil {
			for reuse != nil {
				next := reuse.next
				m.release(reuse.buf)
				reuse = next
			}
			return nil, err
		}
		fresh := &node{buf: freshBuf}
		if cur == nil {
			m.head = fresh
		} else {
			cur.next = fresh
		}
		m.tail = fresh
		cur = fresh
		curPos = remaining
		spans = append(spans, fresh.buf[0:remaining])
		remaining = 0
	}

	// Anything left in the reuse list wasn't needed this round; release it.
	for reuse != nil {
		next := reuse.next
		m.release(reuse.buf)
		reuse = next
	}

	if m.out == nil {
		if anchor != nil {
			m.out, m.outPos = anchor, anchorPos
		} else {
			m.out, m.outPos = m.head, 0
		}
	}
	m.resEnd, m.resEndPos = cur, curPos
	m.pending = n
	return spans, nil
}

// reattach restores a detached reuse chain after a zero-length Prepare,
// which reserves nothing and so must leave capacity untouched.
func (m *Multi) reattach(anchor, reuse *node) {
	if anchor == nil || reuse == nil {
		return
	}
	anchor.next = reuse
	t := reuse
	for t.next != nil {
		t = t.next
	}
	m.tail = t
}

// Commit promotes up to n bytes of the pending reservation to readable,
// walking forward from out one node at a time. Reaching res_end ends
// the reservation; whether out lands on res_end itself (spare tail
// capacity still unreserved beyond res_end_pos) or advances past it
// (res_end_pos was the physical end of that node's storage) depends on
// which is actually true, so a fresh node's over-allocation beyond what
// this reservation asked for isn't stranded as unreachable capacity.
func (m *Multi) Commit(n int) {
	if n > m.pending {
		n = m.pending
	}
	for n > 0 && m.out != nil {
		bound := len(m.out.buf)
		if m.out == m.resEnd {
			bound = m.resEndPos
		}
		avail := bound - m.outPos
		if n < avail {
			m.outPos += n
			m.inSize += n
			m.pending -= n
			return
		}
		m.inSize += avail
		m.pending -= avail
		n -= avail
		m.outPos += avail
		if m.out == m.resEnd {
			if m.outPos >= len(m.out.buf) {
				m.out, m.outPos = m.out.next, 0
			}
			m.resEnd, m.resEndPos = nil, 0
			return
		}
		m.out = m.out.next
		m.outPos = 0
	}
}

// Consume discards up to n bytes from the front of the readable region,
// deallocating any node it fully drains save for the one at the
// read/write boundary, which is retained as the next write head.
func (m *Multi) Consume(n int) {
	if n > m.inSize {
		n = m.inSize
	}
	for n > 0 && m.head != nil {
		var readable int
		if m.head == m.out {
			readable = m.outPos - m.inPos
		} else {
			readable = len(m.head.buf) - m.inPos
		}
		if readable > n {
			m.inPos += n
			m.inSize -= n
			return
		}
		m.inSize -= readable
		n -= readable
		if m.head == m.out {
			if m.pending > 0 || m.outPos < len(m.head.buf) {
				m.inPos = m.outPos
			} else {
				m.inPos, m.outPos = 0, 0
			}
			return
		}
		next := m.head.next
		m.release(m.head.buf)
		m.head = next
		m.inPos = 0
		if m.head == nil {
			m.tail = nil
		}
	}
}

// Data returns the readable region as a materialized Sequence, one span
// per node it spans.
func (m *Multi) Data() Sequence {
	var out Sequence
	remaining := m.inSize
	n := m.head
	pos := m.inPos
	for remaining > 0 && n != nil {
		take := minInt(len(n.buf)-pos, remaining)
		out = append(out, n.buf[pos:pos+take])
		remaining -= take
		pos = 0
		n = n.next
	}
	return out
}

func (m *Multi) DataRange(pos, n int) Sequence {
	return NewSubrangeWindow(m.Readable(), pos, n).Sequence()
}

// Readable exposes the current readable region as a bidirectionally
// indexable, size-reporting view (spec.md's "readable_bytes"), so a
// Subrange can be windowed over it without materializing a Sequence
// first. It is a snapshot: further Commit/Consume calls do not update
// an already-obtained ReadableView.
func (m *Multi) Readable() *ReadableView { return &ReadableView{spans: m.Data()} }

// ReadableView is the segmented, non-owning view of Multi's readable
// region named by spec.md §4.F.
type ReadableView struct{ spans Sequence }

func (v *ReadableView) Len() int      { return len(v.spans) }
func (v *ReadableView) At(i int) []byte { return v.spans[i] }
func (v *ReadableView) Size() int     { return ByteCount(v) }

// Grow is Prepare(n) followed by immediately committing all n bytes.
func (m *Multi) Grow(n int) error {
	if _, err := m.Prepare(n); err != nil {
		return err
	}
	m.Commit(n)
	return nil
}

// Shrink truncates the readable tail by n bytes. The nodes that used to
// hold those bytes are not freed — they become free reserve, available
// to the next Prepare.
func (m *Multi) Shrink(n int) {
	if n > m.inSize {
		n = m.inSize
	}
	newSize := m.inSize - n

	pos := m.inPos
	cur := m.head
	remaining := newSize
	for cur != nil {
		avail := len(cur.buf) - pos
		if remaining <= avail {
			break
		}
		remaining -= avail
		pos = 0
		cur = cur.next
	}

	m.inSize = newSize
	m.resEnd, m.resEndPos, m.pending = nil, 0, 0
	if cur == nil {
		m.out, m.outPos = nil, 0
		return
	}
	m.out = cur
	m.outPos = pos + remaining
}

// Clear resets position state to empty and retains every node as free
// reserve for the next Prepare, without releasing any storage.
func (m *Multi) Clear() {
	m.inPos, m.inSize = 0, 0
	m.out, m.outPos = m.head, 0
	m.resEnd, m.resEndPos, m.pending = nil, 0, 0
}

// Reserve is a hint; Multi grows node-by-node on demand and has no
// single allocation to pre-size, so Reserve only range-checks n.
func (m *Multi) Reserve(n int) error {
	if n > m.maxSize {
		return tooBig(n, m.maxSize)
	}
	return nil
}

// ShrinkToFit drops every free-reserve node, trims the out node down to
// exactly its readable contribution (or drops it if it has none), and
// trims the head node's consumed prefix — releasing every byte of spare
// capacity currently held.
func (m *Multi) ShrinkToFit() error {
	if m.inSize == 0 {
		m.freeAll()
		return nil
	}

	if m.out != nil {
		trailing := m.out.next
		m.out.next = nil
		m.tail = m.out
		m.releaseChain(trailing)
		m.resEnd, m.resEndPos, m.pending = nil, 0, 0
	}

	if m.head == m.tail {
		end := len(m.head.buf)
		if m.out == m.head {
			end = m.outPos
		}
		if end-m.inPos != len(m.head.buf) {
			fresh := &node{buf: m.allocate(end - m.inPos)}
			copy(fresh.buf, m.head.buf[m.inPos:end])
			m.release(m.head.buf)
			m.head, m.tail = fresh, fresh
		}
		m.inPos, m.outPos = 0, 0
		m.out = nil
		return nil
	}

	if m.out != nil {
		switch {
		case m.outPos == 0:
			prev := m.head
			for prev.next != m.out {
				prev = prev.next
			}
			prev.next = nil
			m.release(m.out.buf)
			m.tail = prev
			m.out = nil
		case m.outPos < len(m.out.buf):
			fresh := &node{buf: m.allocate(m.outPos)}
			copy(fresh.buf, m.out.buf[:m.outPos])
			if m.out == m.head {
				m.head = fresh
			} else {
				prev := m.head
				for prev.next != m.out {
					prev = prev.next
				}
				prev.next = fresh
			}
			m.release(m.out.buf)
			m.tail = fresh
			m.out = nil
		default:
			m.out = nil
		}
	}

	if m.inPos > 0 {
		fresh := &node{buf: m.allocate(len(m.head.buf) - m.inPos)}
		copy(fresh.buf, m.head.buf[m.inPos:])
		old := m.head
		fresh.next = old.next
		m.release(old.buf)
		m.head = fresh
		if m.tail == old {
			m.tail = fresh
		}
		m.inPos = 0
	}
	return nil
}

func (m *Multi) freeAll() {
	m.releaseChain(m.head)
	m.head, m.tail, m.out, m.resEnd = nil, nil, nil, nil
	m.inPos, m.outPos, m.resEndPos, m.inSize, m.pending = 0, 0, 0, 0, 0
}

func (m *Multi) releaseChain(n *node) {
	for n != nil {
		next := n.next
		m.release(n.buf)
		n = next
	}
}

func (m *Multi) reset() { m.freeAll() }

// Clone deep-copies the readable content into a fresh Multi using its
// own allocator (C++ select_on_container_copy_construction semantics).
func (m *Multi) Clone() *Multi {
	out := &Multi{allocHandle: m.allocHandle, maxSize: m.maxSize, nodeSize: m.nodeSize, growth: m.growth}
	data := m.Data()
	if total := ByteCount(data); total > 0 {
		w, _ := out.Prepare(total)
		Copy(w, data)
		out.Commit(total)
	}
	return out
}

func sameAllocator(a, b Allocator) bool {
	defer func() { recover() }()
	return a == b
}

// Move transfers src's node list to m in O(1) when the two share an
// allocator or m's policy propagates on move; otherwise it deep-copies
// src's readable content using m's own allocator. Either way src ends
// up empty.
func (m *Multi) Move(src *Multi) {
	if m.policy.PropagateOnMove || sameAllocator(m.alloc, src.alloc) {
		m.moveFrom(src.allocHandle)
		m.head, m.tail = src.head, src.tail
		m.out, m.resEnd = src.out, src.resEnd
		m.inPos, m.outPos, m.resEndPos = src.inPos, src.outPos, src.resEndPos
		m.inSize, m.pending, m.maxSize = src.inSize, src.pending, src.maxSize
		m.nodeSize, m.growth = src.nodeSize, src.growth
		src.reset()
		return
	}

	tmp := &Multi{allocHandle: m.allocHandle, maxSize: src.maxSize, nodeSize: src.nodeSize, growth: src.growth}
	data := src.Data()
	if total := ByteCount(data); total > 0 {
		w, _ := tmp.Prepare(total)
		Copy(w, data)
		tmp.Commit(total)
	}
	m.head, m.tail, m.out, m.resEnd = tmp.head, tmp.tail, tmp.out, tmp.resEnd
	m.inPos, m.outPos, m.resEndPos = tmp.inPos, tmp.outPos, tmp.resEndPos
	m.inSize, m.pending, m.maxSize = tmp.inSize, tmp.pending, tmp.maxSize
	src.reset()
}

// Swap exchanges node lists (and, per policy, allocators) with other.
func (m *Multi) Swap(other *Multi) {
	m.swapWith(&other.allocHandle)
	m.head, other.head = other.head, m.head
	m.tail, other.tail = other.tail, m.tail
	m.out, other.out = other.out, m.out
	m.resEnd, other.resEnd = other.resEnd, m.resEnd
	m.inPos, other.inPos = other.inPos, m.inPos
	m.outPos, other.outPos = other.outPos, m.outPos
	m.resEndPos, other.resEndPos = other.resEndPos, m.resEndPos
	m.inSize, other.inSize = other.inSize, m.inSize
	m.pending, other.pending = other.pending, m.pending
	m.maxSize, other.maxSize = other.maxSize, m.maxSize
	m.nodeSize, other.nodeSize = other.nodeSize, m.nodeSize
	m.growth, other.growth = other.growth, m.growth
}
