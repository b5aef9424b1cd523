package connection

import (
	"context"
	"errors"
	"fmt"

	pool "github.com/jolestar/go-commons-pool/v2"

	"github.com/yndnr/rudis/internal/protocol/resp"
)

// Pool shares a bounded set of clients between goroutines.
type Pool struct {
	addr string
	pool *pool.ObjectPool
}

// NewPool creates a pool of at most size clients to addr. Connections are
// dialed lazily on first borrow.
func NewPool(ctx context.Context, addr string, opts Options, size int) *Pool {
	if size < 1 {
		size = 1
	}

	cfg := pool.NewDefaultPoolConfig()
	cfg.MaxTotal = size
	cfg.MaxIdle = size
	cfg.TestOnBorrow = true
	cfg.BlockWhenExhausted = true

	return &Pool{
		addr: addr,
		pool: pool.NewObjectPool(ctx, &clientFactory{addr: addr, opts: opts}, cfg),
	}
}

// Do borrows a client, runs one command and returns the client. A client
// that failed is discarded instead of returned.
func (p *Pool) Do(ctx context.Context, args ...string) (resp.Value, error) {
	raw, err := p.pool.BorrowObject(ctx)
	if err != nil {
		return resp.Value{}, fmt.Errorf("borrow connection to %s: %w", p.addr, err)
	}
	c, ok := raw.(*Client)
	if !ok {
		return resp.Value{}, errors.New("connection: pool returned unexpected type")
	}

	reply, err := c.Do(ctx, args...)
	if err != nil {
		_ = p.pool.InvalidateObject(ctx, c)
		return resp.Value{}, err
	}
	if err := p.pool.ReturnObject(ctx, c); err != nil {
		return reply, fmt.Errorf("return connection: %w", err)
	}
	return reply, nil
}

// Active returns the number of clients currently borrowed.
func (p *Pool) Active() int {
	return p.pool.GetNumActive()
}

// Idle returns the number of clients waiting in the pool.
func (p *Pool) Idle() int {
	return p.pool.GetNumIdle()
}

// Close closes every idle client and rejects further borrows.
func (p *Pool) Close(ctx context.Context) {
	p.pool.Close(ctx)
}

// clientFactory adapts Dial to the pool's object lifecycle.
type clientFactory struct {
	addr string
	opts Options
}

func (f *clientFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	c, err := Dial(ctx, f.addr, f.opts)
	if err != nil {
		return nil, err
	}
	return pool.NewPooledObject(c), nil
}

func (f *clientFactory) DestroyObject(_ context.Context, obj *pool.PooledObject) error {
	if c, ok := obj.Object.(*Client); ok {
		return c.Close()
	}
	return nil
}

func (f *clientFactory) ValidateObject(_ context.Context, obj *pool.PooledObject) bool {
	c, ok := obj.Object.(*Client)
	return ok && c.Healthy()
}

func (f *clientFactory) ActivateObject(context.Context, *pool.PooledObject) error {
	return nil
}

func (f *clientFactory) PassivateObject(context.Context, *pool.PooledObject) error {
	return nil
}
