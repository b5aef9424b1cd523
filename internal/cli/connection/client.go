package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

// DefaultTimeout bounds dialing and each request when the context has no
// deadline.
const DefaultTimeout = 5 * time.Second

// ErrClientBroken is returned by Do after an earlier transport failure.
var ErrClientBroken = errors.New("connection: client is broken")

// Options configure a client.
type Options struct {
	// Timeout bounds dialing and each request. Zero uses DefaultTimeout.
	Timeout time.Duration
	// TLS enables TLS with the given config when non-nil.
	TLS *tls.Config
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Client is a single RESP connection. It is not safe for concurrent use.
type Client struct {
	addr   string
	conn   net.Conn
	r      *resp.Reader
	w      *resp.Writer
	opts   Options
	broken bool
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	d := &net.Dialer{Timeout: opts.timeout()}

	var (
		conn net.Conn
		err  error
	)
	if opts.TLS != nil {
		td := &tls.Dialer{NetDialer: d, Config: opts.TLS}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{
		addr: addr,
		conn: conn,
		r:    resp.NewReader(bufio.NewReader(conn)),
		w:    resp.NewWriter(bufio.NewWriter(conn)),
		opts: opts,
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Healthy reports whether the client can still be used.
func (c *Client) Healthy() bool {
	return !c.broken
}

// Do sends one command and waits for its reply.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	return c.DoValue(ctx, resp.Command(args...))
}

// DoValue sends an arbitrary value and waits for one reply.
func (c *Client) DoValue(ctx context.Context, req resp.Value) (resp.Value, error) {
	if c.broken {
		return resp.Value{}, ErrClientBroken
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.opts.timeout())
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, c.fail(err)
	}

	if err := c.w.WriteValue(req); err != nil {
		return resp.Value{}, c.fail(err)
	}
	if err := c.w.Flush(); err != nil {
		return resp.Value{}, c.fail(err)
	}

	reply, err := c.r.ReadValue()
	if err != nil {
		return resp.Value{}, c.fail(err)
	}
	return reply, nil
}

func (c *Client) fail(err error) error {
	c.broken = true
	return fmt.Errorf("%s: %w", c.addr, err)
}

// Close closes the connection.
func (c *Client) Close() error {
	c.broken = true
	return c.conn.Close()
}

// ServerError is an error reply from the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ReplyError returns a *ServerError for error replies and nil otherwise.
func ReplyError(v resp.Value) error {
	if v.Kind == resp.KindError {
		return &ServerError{Message: v.Str}
	}
	return nil
}
