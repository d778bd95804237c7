package buffer

import (
	"strings"
	"testing"
)

// trackingAllocator counts Alloc calls so tests can assert a node's
// spare tail capacity was reused rather than triggering a fresh
// allocation.
type trackingAllocator struct{ allocs int }

func (a *trackingAllocator) Alloc(n int) []byte { a.allocs++; return make([]byte, n) }
func (a *trackingAllocator) Free([]byte)        {}

func TestMulti_PrepareCommitSingleNode(t *testing.T) {
	m := NewMulti(1 << 20)
	w, err := m.Prepare(11)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	fillSpans(w, "hello world")
	m.Commit(11)
	if got := seqString(m.Data()); got != "hello world" {
		t.Logf("expect %q, got %q", "hello world", got)
		t.FailNow()
	}
	if m.Size() != 11 {
		t.Logf("expect size 11, got %d", m.Size())
		t.FailNow()
	}
}

func TestMulti_TooBigRejectsPastMaxSize(t *testing.T) {
	m := NewMulti(8)
	if _, err := m.Prepare(9); err == nil {
		t.Log("expected TooBig")
		t.FailNow()
	} else if _, ok := err.(*TooBig); !ok {
		t.Logf("expect *TooBig, got %T", err)
		t.FailNow()
	}
}

func TestMulti_SetMaxSizeRoundTrips(t *testing.T) {
	m := NewMulti(16)
	m.SetMaxSize(32)
	if got := m.MaxSize(); got != 32 {
		t.Logf("expect max_size 32 after SetMaxSize(32), got %d", got)
		t.FailNow()
	}
	if _, err := m.Prepare(20); err != nil {
		t.Logf("expected Prepare(20) to fit under the raised max_size, got %v", err)
		t.FailNow()
	}
}

// A freshly allocated node is commonly larger than what the current
// Prepare call actually asked for (the 512-byte growth floor); once
// committed, that leftover tail must remain reachable as free reserve
// for the next Prepare instead of being stranded.
func TestMulti_LeftoverNodeTailIsReusedNotStranded(t *testing.T) {
	alloc := &trackingAllocator{}
	m := NewMultiAlloc(1<<20, alloc, AllocPolicy{})

	w1, err := m.Prepare(300)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	fillSpans(w1, strings.Repeat("a", 300))
	m.Commit(300)
	if alloc.allocs != 1 {
		t.Logf("expect exactly one allocation for the first reservation, got %d", alloc.allocs)
		t.FailNow()
	}

	w2, err := m.Prepare(50)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	fillSpans(w2, strings.Repeat("b", 50))
	m.Commit(50)
	if alloc.allocs != 1 {
		t.Log("expected the second reservation to reuse the first node's spare tail instead of allocating a new node")
		t.FailNow()
	}
	if m.Size() != 350 {
		t.Logf("expect size 350, got %d", m.Size())
		t.FailNow()
	}
	want := strings.Repeat("a", 300) + strings.Repeat("b", 50)
	if got := seqString(m.Data()); got != want {
		t.Logf("expect %q, got %q", want, got)
		t.FailNow()
	}
}

func TestMulti_PrepareWithoutCommitDiscardsPreviousReservation(t *testing.T) {
	m := NewMulti(1 << 20)
	w1, _ := m.Prepare(10)
	fillSpans(w1, "0123456789")
	// no Commit: the next Prepare must discard this reservation entirely

	w2, err := m.Prepare(5)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	fillSpans(w2, "ABCDE")
	m.Commit(5)

	if m.Size() != 5 {
		t.Logf("expect size 5, got %d", m.Size())
		t.FailNow()
	}
	if got := seqString(m.Data()); got != "ABCDE" {
		t.Logf("expect %q, got %q", "ABCDE", got)
		t.FailNow()
	}
}

// Forces a single Prepare reservation to span two nodes (a near-full
// first node plus a freshly allocated second one) and Commits across
// both in one call.
func TestMulti_CommitSpansMultipleNodes(t *testing.T) {
	m := NewMulti(1 << 20)
	w1, _ := m.Prepare(510)
	fillSpans(w1, strings.Repeat("A", 510))
	m.Commit(510) // node1 has 512 bytes total, 2 spare

	w2, err := m.Prepare(10)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	if len(w2) != 2 {
		t.Logf("expect the 10-byte reservation to span the node boundary (2 segments), got %d", len(w2))
		t.FailNow()
	}
	fillSpans(w2, "BBCCCCCCCC") // 2 bytes finish node1, 8 start node2
	m.Commit(10)

	want := strings.Repeat("A", 510) + "BB" + "CCCCCCCC"
	if got := seqString(m.Data()); got != want {
		t.Logf("expect %q, got %q", want, got)
		t.FailNow()
	}
	if m.Size() != 520 {
		t.Logf("expect size 520, got %d", m.Size())
		t.FailNow()
	}
}

// Consume must retain the node at the read/write boundary rather than
// release it whenever a reservation is still pending against it.
func TestMulti_ConsumeRetainsWriteHeadWhilePending(t *testing.T) {
	alloc := &trackingAllocator{}
	m := NewMultiAlloc(1<<20, alloc, AllocPolicy{})

	w, _ := m.Prepare(100)
	fillSpans(w, strings.Repeat("x", 100))
	m.Commit(40) // 60 bytes of this reservation remain pending
	if alloc.allocs != 1 {
		t.Logf("expect one allocation so far, got %d", alloc.allocs)
		t.FailNow()
	}

	m.Consume(40) // drains every committed byte while 60 is still pending
	if m.Size() != 0 {
		t.Logf("expect size 0 after consuming every committed byte, got %d", m.Size())
		t.FailNow()
	}

	m.Commit(60)
	if m.Size() != 60 {
		t.Logf("expect size 60, got %d", m.Size())
		t.FailNow()
	}
	if got := seqString(m.Data()); got != strings.Repeat("x", 60) {
		t.Logf("expect the remaining 60 x's, got %q", got)
		t.FailNow()
	}

	// A further small Prepare must reuse the same node's spare tail: the
	// node read/write boundary straddled during Consume was never
	// released.
	if _, err := m.Prepare(5); err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	if alloc.allocs != 1 {
		t.Log("expected the write-head node to have been retained across Consume, not reallocated")
		t.FailNow()
	}
}

func TestMulti_SpansManyNodesConsumeAndAppend(t *testing.T) {
	m := NewMulti(1 << 20)
	data := strings.Repeat("n", 1300) // several growth-floor-sized nodes
	written := 0
	for written < len(data) {
		chunk := 97
		if written+chunk > len(data) {
			chunk = len(data) - written
		}
		w, err := m.Prepare(chunk)
		if err != nil {
			t.Logf("unexpected error: %v", err)
			t.FailNow()
		}
		fillSpans(w, data[written:written+chunk])
		m.Commit(chunk)
		written += chunk
	}
	if got := seqString(m.Data()); got != data {
		t.Log("data mismatch after writing across many nodes")
		t.FailNow()
	}

	m.Consume(600)
	if got := seqString(m.Data()); got != data[600:] {
		t.Log("data mismatch after consuming across a node boundary")
		t.FailNow()
	}

	m.Consume(len(data) - 600)
	if m.Size() != 0 {
		t.Logf("expect size 0, got %d", m.Size())
		t.FailNow()
	}
}

func TestMulti_ShrinkRetainsNodesAsFreeReserve(t *testing.T) {
	alloc := &trackingAllocator{}
	m := NewMultiAlloc(1<<20, alloc, AllocPolicy{})
	w, _ := m.Prepare(300)
	fillSpans(w, strings.Repeat("q", 300))
	m.Commit(300)
	allocsBefore := alloc.allocs

	m.Shrink(100)
	if m.Size() != 200 {
		t.Logf("expect size 200 after Shrink(100), got %d", m.Size())
		t.FailNow()
	}
	if got := seqString(m.Data()); got != strings.Repeat("q", 200) {
		t.Log("data mismatch after Shrink")
		t.FailNow()
	}

	// Growing back into the shrunk region must not allocate: it was
	// retained as free reserve, not released.
	w2, err := m.Prepare(50)
	if err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	fillSpans(w2, strings.Repeat("r", 50))
	m.Commit(50)
	if alloc.allocs != allocsBefore {
		t.Log("expected Shrink's freed bytes to be reused without a new allocation")
		t.FailNow()
	}
	if got := seqString(m.Data()); got != strings.Repeat("q", 200)+strings.Repeat("r", 50) {
		t.Log("data mismatch after regrowing into shrunk region")
		t.FailNow()
	}
}

func TestMulti_ShrinkToFitEmpty(t *testing.T) {
	m := NewMulti(1 << 20)
	w, _ := m.Prepare(100)
	fillSpans(w, strings.Repeat("z", 100))
	m.Commit(100)
	m.Consume(100)
	if err := m.ShrinkToFit(); err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	if m.Capacity() != 0 {
		t.Logf("expect capacity 0 after ShrinkToFit on an empty buffer, got %d", m.Capacity())
		t.FailNow()
	}
}

func TestMulti_ShrinkToFitSingleNodeTrimsConsumedPrefix(t *testing.T) {
	m := NewMulti(1 << 20)
	w, _ := m.Prepare(20)
	fillSpans(w, "01234567890123456789")
	m.Commit(20)
	m.Consume(5)

	if err := m.ShrinkToFit(); err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	if m.Capacity() != m.Size() {
		t.Logf("expect capacity == size after ShrinkToFit, got cap=%d size=%d", m.Capacity(), m.Size())
		t.FailNow()
	}
	if got := seqString(m.Data()); got != "567890123456789" {
		t.Logf("expect %q, got %q", "567890123456789", got)
		t.FailNow()
	}
}

func TestMulti_ShrinkToFitTrimsSpareTailOfLastNode(t *testing.T) {
	m := NewMulti(1 << 20)
	w1, _ := m.Prepare(510)
	fillSpans(w1, strings.Repeat("A", 510))
	m.Commit(510)
	w2, _ := m.Prepare(10)
	fillSpans(w2, "BBCCCCCCCC")
	m.Commit(10) // node1 full (512), node2 has 8/512 used

	if err := m.ShrinkToFit(); err != nil {
		t.Logf("unexpected error: %v", err)
		t.FailNow()
	}
	if m.Capacity() != m.Size() {
		t.Logf("expect capacity == size after ShrinkToFit, got cap=%d size=%d", m.Capacity(), m.Size())
		t.FailNow()
	}
	want := strings.Repeat("A", 510) + "BB" + "CCCCCCCC"
	if got := seqString(m.Data()); got != want {
		t.Logf("expect %q, got %q", want, got)
		t.FailNow()
	}
}

func TestMulti_CloneIsIndependent(t *testing.T) {
	m := NewMulti(1 << 20)
	w, _ := m.Prepare(5)
	fillSpans(w, "hello")
	m.Commit(5)

	clone := m.Clone()
	if got := seqString(clone.Data()); got != "hello" {
		t.Logf("expect %q, got %q", "hello", got)
		t.FailNow()
	}
	w2, _ := m.Prepare(1)
	fillSpans(w2, "!")
	m.Commit(1)
	if got := seqString(clone.Data()); got != "hello" {
		t.Log("mutating the original must not affect the clone")
		t.FailNow()
	}
}

func TestMulti_MoveSharedAllocatorEmptiesSource(t *testing.T) {
	alloc := &trackingAllocator{}
	src := NewMultiAlloc(1<<20, alloc, AllocPolicy{})
	w, _ := src.Prepare(5)
	fillSpans(w, "hello")
	src.Commit(5)

	dst := NewMultiAlloc(1<<20, alloc, AllocPolicy{})
	dst.Move(src)

	if got := seqString(dst.Data()); got != "hello" {
		t.Logf("expect %q, got %q", "hello", got)
		t.FailNow()
	}
	if src.Size() != 0 || src.Capacity() != 0 {
		t.Logf("expect src empty after Move, got size=%d cap=%d", src.Size(), src.Capacity())
		t.FailNow()
	}
}

func TestMulti_MoveDifferentAllocatorsDeepCopies(t *testing.T) {
	allocA := &trackingAllocator{}
	allocB := &trackingAllocator{}
	src := NewMultiAlloc(1<<20, allocA, AllocPolicy{})
	w, _ := src.Prepare(5)
	fillSpans(w, "hello")
	src.Commit(5)

	dst := NewMultiAlloc(1<<20, allocB, AllocPolicy{})
	dst.Move(src)

	if got := seqString(dst.Data()); got != "hello" {
		t.Logf("expect %q, got %q", "hello", got)
		t.FailNow()
	}
	if src.Size() != 0 {
		t.Logf("expect src emptied after Move even when allocators differ, got size %d", src.Size())
		t.FailNow()
	}
	if allocB.allocs == 0 {
		t.Log("expected dst's own allocator to have been used for the deep copy")
		t.FailNow()
	}
}

func TestMulti_Swap(t *testing.T) {
	a := NewMulti(1 << 20)
	wa, _ := a.Prepare(3)
	fillSpans(wa, "aaa")
	a.Commit(3)

	b := NewMulti(1 << 20)
	wb, _ := b.Prepare(4)
	fillSpans(wb, "bbbb")
	b.Commit(4)

	a.Swap(b)

	if got := seqString(a.Data()); got != "bbbb" {
		t.Logf("expect a to hold %q after swap, got %q", "bbbb", got)
		t.FailNow()
	}
	if got := seqString(b.Data()); got != "aaa" {
		t.Logf("expect b to hold %q after swap, got %q", "aaa", got)
		t.FailNow()
	}
}

func TestMulti_DataRangeOverNodeBoundary(t *testing.T) {
	m := NewMulti(1 << 20)
	w1, _ := m.Prepare(510)
	fillSpans(w1, strings.Repeat("A", 510))
	m.Commit(510)
	w2, _ := m.Prepare(10)
	fillSpans(w2, "BBCCCCCCCC")
	m.Commit(10)

	// Window straddling the node1/node2 boundary at offset 510.
	got := seqString(m.DataRange(505, 10))
	want := strings.Repeat("A", 5) + "BB" + "CCC"
	if got != want {
		t.Logf("expect %q, got %q", want, got)
		t.FailNow()
	}
}
