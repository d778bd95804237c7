// Package netio drains a buffer.Sequence onto a socket with a single
// vectored write instead of looping Write calls span by span. Because
// buffer.Sequence is laid out exactly like net.Buffers, both platform
// paths in this package accept it directly, matching the teacher's
// server_linux.go / server_others.go build-tag split.
package netio

import (
	"net"
	"syscall"

	"flowbuf/buffer"
)

// syscallConn is satisfied by *net.TCPConn and *net.UnixConn; it is the
// seam the linux fast path uses to reach the raw file descriptor.
type syscallConn interface {
	SyscallConn() (syscall.RawConn, error)
}

// WriteSequence writes every span of seq to conn, retrying partial
// writes, and returns the total number of bytes written. On linux, when
// conn exposes a raw file descriptor, the whole sequence goes out as a
// single writev(2) call per retry round instead of one Write per span.
func WriteSequence(conn net.Conn, seq buffer.Sequence) (int, error) {
	if sc, ok := conn.(syscallConn); ok {
		if n, err, handled := writevSequence(sc, seq); handled {
			return n, err
		}
	}
	bufs := net.Buffers(seq)
	n64, err := bufs.WriteTo(conn)
	return int(n64), err
}
