package redisserver

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	r       *resp.Reader
	w       *resp.Writer

	closed atomic.Bool
}

func newConn(id string, c net.Conn, opts ...resp.ReaderOption) *Conn {
	return &Conn{
		id:      id,
		netConn: c,
		r:       resp.NewReader(bufio.NewReader(c), opts...),
		w:       resp.NewWriter(bufio.NewWriter(c)),
	}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) setReadDeadline(d time.Duration) error {
	return c.netConn.SetReadDeadline(deadline(d))
}

// flush writes pending replies under the write deadline.
func (c *Conn) flush(d time.Duration) error {
	if c.w.Buffered() == 0 {
		return nil
	}
	if err := c.netConn.SetWriteDeadline(deadline(d)); err != nil {
		return err
	}
	return c.w.Flush()
}

// deadline converts a timeout into an absolute deadline. Zero disables it.
func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// clientIP returns the host part of the remote address.
func clientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
