package buffer

import "fmt"

// TooBig is returned by Prepare, Grow and Reserve when satisfying the
// request would push size() past max_size(). The Allocator interface
// carries no size limit of its own, so an allocator is never the source
// of a TooBig; one that returns fewer bytes than asked for is reported
// as AllocationFailed instead.
type TooBig struct {
	Requested int
	MaxSize   int
}

func (e *TooBig) Error() string {
	return fmt.Sprintf("buffer: requested %d bytes exceeds max size %d", e.Requested, e.MaxSize)
}

// Is reports whether target is any *TooBig, regardless of its
// Requested/MaxSize fields, so callers can write errors.Is(err,
// buffer.ErrTooBig) instead of a type assertion.
func (e *TooBig) Is(target error) bool {
	_, ok := target.(*TooBig)
	return ok
}

// AllocationFailed is returned when the underlying allocator cannot
// satisfy a request that would otherwise fit within max_size(). Callers
// should treat it identically to TooBig: the buffer is left unchanged.
type AllocationFailed struct {
	Requested int
}

func (e *AllocationFailed) Error() string {
	return fmt.Sprintf("buffer: allocation of %d bytes failed", e.Requested)
}

// Is reports whether target is any *AllocationFailed, regardless of its
// Requested field, so callers can write errors.Is(err,
// buffer.ErrAllocationFailed) instead of a type assertion.
func (e *AllocationFailed) Is(target error) bool {
	_, ok := target.(*AllocationFailed)
	return ok
}

// ErrTooBig and ErrAllocationFailed are sentinels for use with
// errors.Is; every *TooBig/*AllocationFailed value returned by this
// package matches them regardless of its own field values.
var (
	ErrTooBig           = &TooBig{}
	ErrAllocationFailed = &AllocationFailed{}
)

func tooBig(requested, maxSize int) error {
	return &TooBig{Requested: requested, MaxSize: maxSize}
}

func allocationFailed(requested int) error {
	return &AllocationFailed{Requested: requested}
}
