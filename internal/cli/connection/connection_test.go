package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/rudis/internal/command"
	"github.com/yndnr/rudis/internal/protocol/resp"
	"github.com/yndnr/rudis/internal/server/redisserver"
	"github.com/yndnr/rudis/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, command.NewDispatcher(memory.New()), nil, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func TestClient_Do(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, addr, Options{})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, addr, c.Addr())

	reply, err := c.Do(ctx, "SET", "greeting", "hello")
	require.NoError(t, err)
	assert.True(t, reply.Equal(resp.SimpleValue("OK")))

	reply, err = c.Do(ctx, "GET", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text())

	reply, err = c.Do(ctx, "GET", "missing")
	require.NoError(t, err)
	assert.True(t, reply.IsNull())
}

func TestClient_ErrorReply(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, addr, Options{})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Do(ctx, "NOPE")
	require.NoError(t, err, "error replies are values")

	rerr := ReplyError(reply)
	var se *ServerError
	require.ErrorAs(t, rerr, &se)
	assert.Equal(t, "ERR unsupported command 'NOPE'", se.Message)
	assert.True(t, c.Healthy(), "an error reply must not break the client")

	assert.NoError(t, ReplyError(resp.SimpleValue("OK")))
}

func TestClient_DoValue(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, addr, Options{})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.DoValue(ctx, resp.IntValue(1))
	require.NoError(t, err)
	assert.Equal(t, "ERR invalid command", ReplyError(reply).Error())
}

func TestClient_BrokenAfterServerClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	ctx := context.Background()
	c, err := Dial(ctx, ln.Addr().String(), Options{Timeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Do(ctx, "GET", "k")
	require.Error(t, err)
	assert.False(t, c.Healthy())

	_, err = c.Do(ctx, "GET", "k")
	assert.ErrorIs(t, err, ErrClientBroken)
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, Options{Timeout: time.Second})
	assert.Error(t, err)
}

func TestPool_ConcurrentDo(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()

	p := NewPool(ctx, addr, Options{}, 4)
	defer p.Close(ctx)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			if _, err := p.Do(ctx, "SET", key, "v"); err != nil {
				errs <- err
				return
			}
			reply, err := p.Do(ctx, "GET", key)
			if err != nil {
				errs <- err
				return
			}
			if reply.Text() != "v" {
				errs <- errors.New("unexpected value for " + key)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	assert.Equal(t, 0, p.Active())
	assert.LessOrEqual(t, p.Idle(), 4)
	assert.Greater(t, p.Idle(), 0)
}

func TestPool_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx := context.Background()
	p := NewPool(ctx, addr, Options{Timeout: time.Second}, 1)
	defer p.Close(ctx)

	_, err = p.Do(ctx, "GET", "k")
	assert.Error(t, err)
}
