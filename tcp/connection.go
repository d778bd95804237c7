package tcp

import (
	"net"
	"sync"
	"sync/atomic"

	"flowbuf/buffer"
	"flowbuf/config"
	"flowbuf/netio"
	"flowbuf/util/pool"
)

var connSeq uint64

const readChunk = 4096

// Connection relays one socket: bytes read from it are accumulated in a
// buffer.Multi and flushed back out through the same buffer's readable
// view, exercising Prepare/Commit/Consume against real socket reads and
// vectored writes rather than an in-memory harness. Grounded on the
// teacher's tcp/connection.go read/write-loop split; the reply channel
// that used to carry RESP replies now just carries a flush signal.
type Connection struct {
	id      uint64
	conn    net.Conn
	buf     *buffer.Multi
	scratch *pool.Pool
	flushCh chan struct{}
	closeCh chan struct{}
	flushMu sync.Mutex
	active  atomic.Bool
}

// NewConnection wraps conn with a Multi accumulation buffer sized from
// settings. scratch is the server's shared pool of recycled Flat read
// buffers; ReadLoop borrows one for the lifetime of the connection.
func NewConnection(conn net.Conn, scratch *pool.Pool, settings *config.BufferSettings) *Connection {
	c := &Connection{
		id:      atomic.AddUint64(&connSeq, 1),
		conn:    conn,
		buf:     buffer.NewMultiTuned(settings.MultiMaxSize, settings.MultiNodeSize, settings.MultiGrowthFactor),
		scratch: scratch,
		flushCh: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
	c.active.Store(true)
	return c
}

// ReadLoop reads from the socket into a scratch buffer borrowed from
// the connection pool, copies whatever arrived into buf, and signals
// WriteLoop, until the connection errors or is closed. Reading into a
// pooled scratch buffer first — rather than reading straight into buf's
// own Prepare region — means buf.Prepare only ever needs to size for
// bytes that actually arrived, and the read syscall's target buffer is
// reused across every iteration instead of walking buf's own storage.
func (c *Connection) ReadLoop() error {
	scratch := getFlat(c.scratch)
	defer putFlat(c.scratch, scratch)

	for c.active.Load() {
		scratch.Clear()
		w, err := scratch.Prepare(readChunk)
		if err != nil {
			return err
		}
		n, rErr := c.conn.Read(w[0])
		if n > 0 {
			scratch.Commit(n)
			c.flushMu.Lock()
			dst, pErr := c.buf.Prepare(n)
			if pErr == nil {
				buffer.Copy(dst, scratch.Data())
				c.buf.Commit(n)
			}
			c.flushMu.Unlock()
			if pErr != nil {
				return pErr
			}
			c.signalFlush()
		}
		if rErr != nil {
			return rErr
		}
	}
	return nil
}

// signalFlush wakes WriteLoop without blocking; a full channel already
// means a flush is pending, so the send is safely dropped.
func (c *Connection) signalFlush() {
	select {
	case c.flushCh <- struct{}{}:
	default:
	}
}

// WriteLoop drains whatever ReadLoop has committed back out to the peer
// each time it is signaled, until the connection is closed.
func (c *Connection) WriteLoop() {
	for {
		select {
		case <-c.flushCh:
			c.writeBack()
		case <-c.closeCh:
			return
		}
	}
}

// writeBack drains the currently readable region out to the peer.
// flushMu guards buf against ReadLoop's own Prepare/Commit calls, which
// run on a different goroutine.
func (c *Connection) writeBack() {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	data := c.buf.Data()
	if len(data) == 0 {
		return
	}
	n, err := netio.WriteSequence(c.conn, data)
	if n > 0 {
		c.buf.Consume(n)
	}
	if err != nil {
		c.Close()
	}
}

// Shrink reclaims spare buffer capacity accumulated by bursty traffic.
// The relay server calls this periodically across every active
// connection via its worker pool rather than on every flush, since
// ShrinkToFit's node reallocation isn't free.
func (c *Connection) Shrink() {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	_ = c.buf.ShrinkToFit()
}

func (c *Connection) Close() {
	if !c.active.CompareAndSwap(true, false) {
		return
	}
	close(c.closeCh)
	_ = c.conn.Close()
}

func (c *Connection) Active() bool { return c.active.Load() }

func (c *Connection) RemoteAddr() string { return c.conn.RemoteAddr().String() }
