package buffer

// Allocator is the seam growable buffers obtain storage through. The
// buffer core never assumes anything about thread-safety here — per the
// concurrency model, that is the allocator's responsibility.
type Allocator interface {
	Alloc(n int) []byte
	Free([]byte)
}

// defaultAllocator is a plain make()/no-op-free allocator, used whenever
// a buffer is constructed without an explicit Allocator.
type defaultAllocator struct{}

func (defaultAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (defaultAllocator) Free([]byte)        {}

var stdAllocator Allocator = defaultAllocator{}

// AllocPolicy models the allocator-propagation traits a C++ allocator
// carries (propagate_on_container_copy_assignment / move_assignment /
// swap), per design note "Allocator propagation flags." Buffers without
// an explicit policy behave as if all three flags are false: the
// allocator never moves with the container.
type AllocPolicy struct {
	PropagateOnCopy bool
	PropagateOnMove bool
	PropagateOnSwap bool
}

// allocHandle bundles an Allocator with its propagation policy and is
// embedded by every growable/poolable buffer variant.
type allocHandle struct {
	alloc  Allocator
	policy AllocPolicy
}

func newAllocHandle(a Allocator, p AllocPolicy) allocHandle {
	if a == nil {
		a = stdAllocator
	}
	return allocHandle{alloc: a, policy: p}
}

func (h allocHandle) allocate(n int) []byte { return h.alloc.Alloc(n) }
func (h allocHandle) release(b []byte)      { h.alloc.Free(b) }

// allocateChecked is used on the reallocation paths where a custom
// Allocator (e.g. a pooled one) may legitimately fail to produce n
// bytes even though n is within max_size, distinct from the TooBig
// case — spec.md §7's "buffer unchanged, strong guarantee" applies to
// both, but only this one isn't a size-policy violation.
func (h allocHandle) allocateChecked(n int) ([]byte, error) {
	b := h.alloc.Alloc(n)
	if len(b) < n {
		return nil, allocationFailed(n)
	}
	return b, nil
}

// assignFrom applies propagate_on_container_copy_assignment: the
// destination adopts the source's allocator only when its own policy
// says to.
func (h *allocHandle) assignFrom(src allocHandle) {
	if h.policy.PropagateOnCopy {
		h.alloc = src.alloc
	}
}

// moveFrom applies propagate_on_container_move_assignment.
func (h *allocHandle) moveFrom(src allocHandle) {
	if h.policy.PropagateOnMove {
		h.alloc = src.alloc
	}
}

// swapWith applies propagate_on_container_swap: when false, the two
// handles keep their own allocators even though storage swaps.
func (h *allocHandle) swapWith(o *allocHandle) {
	if h.policy.PropagateOnSwap {
		h.alloc, o.alloc = o.alloc, h.alloc
	}
}
