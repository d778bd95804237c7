//go:build !linux

package netio

import "flowbuf/buffer"

// writevSequence has no portable equivalent outside linux; callers fall
// back to net.Buffers.WriteTo, which picks whatever vectored write the
// platform's net package already knows how to do.
func writevSequence(conn syscallConn, seq buffer.Sequence) (n int, err error, handled bool) {
	return 0, nil, false
}
