//go:build linux

package netio

import (
	"syscall"

	"golang.org/x/sys/unix"

	"flowbuf/buffer"
)

// writevSequence drains seq with unix.Writev over conn's raw file
// descriptor, looping to finish any span writev leaves partially
// written. handled is false only when conn's RawConn.Write callback
// never got a chance to run (a transient control-path error), in which
// case the caller falls back to net.Buffers.WriteTo.
func writevSequence(conn syscallConn, seq buffer.Sequence) (n int, err error, handled bool) {
	raw, ctrlErr := conn.SyscallConn()
	if ctrlErr != nil {
		return 0, nil, false
	}

	total := 0
	remaining := trimEmpty(seq)
	var writeErr error
	ranAtAll := false

	for len(remaining) > 0 {
		iovErr := raw.Write(func(fd uintptr) bool {
			ranAtAll = true
			wrote, e := unix.Writev(int(fd), remaining)
			if wrote > 0 {
				total += wrote
				remaining = advance(remaining, wrote)
			}
			if e == syscall.EAGAIN {
				return false // ask runtime to wait for writability, then retry
			}
			writeErr = e
			return true
		})
		if iovErr != nil {
			writeErr = iovErr
			break
		}
		if writeErr != nil {
			break
		}
	}
	if !ranAtAll {
		return 0, nil, false
	}
	return total, writeErr, true
}

// advance drops the first n written bytes from seq, trimming a
// partially-consumed leading span in place.
func advance(seq buffer.Sequence, n int) buffer.Sequence {
	for n > 0 && len(seq) > 0 {
		if n < len(seq[0]) {
			seq[0] = seq[0][n:]
			return seq
		}
		n -= len(seq[0])
		seq = seq[1:]
	}
	return seq
}

func trimEmpty(seq buffer.Sequence) buffer.Sequence {
	out := make(buffer.Sequence, 0, len(seq))
	for _, s := range seq {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}
