package redisserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/rudis/internal/infra/tlsroots"
	"github.com/yndnr/rudis/internal/protocol/resp"
	"github.com/yndnr/rudis/internal/telemetry/logger"
	"github.com/yndnr/rudis/internal/telemetry/metric"
	"github.com/yndnr/rudis/pkg/cmap"
)

// DefaultAddress is the listen address used when none is configured.
const DefaultAddress = "127.0.0.1:6378"

// limiterSweepInterval is how often idle per-client limiters are dropped.
const limiterSweepInterval = time.Minute

// ErrServerClosed is returned by Start after Shutdown.
var ErrServerClosed = errors.New("redisserver: server closed")

// replyRateLimited is sent instead of dispatching a request over the limit.
var replyRateLimited = resp.ErrorValue("ERR rate limit exceeded")

// Config holds the server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// TLSCertFile and TLSKeyFile enable TLS when both are set. The pair is
	// reloaded when either file changes.
	TLSCertFile string
	TLSKeyFile  string
	// IdleTimeout bounds the wait for the first byte of a request.
	IdleTimeout time.Duration
	// ReadTimeout bounds reading the rest of a request once it has started.
	ReadTimeout time.Duration
	// WriteTimeout bounds each flush of replies.
	WriteTimeout time.Duration
	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit int
	// RateBurst is the limiter bucket size. Defaults to RateLimit.
	RateBurst int
	// MaxBulkLen and MaxArrayLen bound decoded frames. Zero keeps the
	// codec defaults.
	MaxBulkLen  int
	MaxArrayLen int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      DefaultAddress,
		IdleTimeout:  5 * time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxBulkLen:   resp.DefaultMaxBulkLen,
		MaxArrayLen:  resp.DefaultMaxArrayLen,
	}
}

// Handler turns one decoded request into one reply.
type Handler interface {
	Handle(ctx context.Context, v resp.Value) resp.Value
}

// Server is a RESP server.
type Server struct {
	cfg     *Config
	handler Handler
	logger  logger.Logger
	metrics *metric.Registry

	mu    sync.Mutex
	ln    net.Listener
	certs *tlsroots.Watcher

	running  atomic.Bool
	closed   atomic.Bool
	conns    *cmap.Map[*Conn]
	limiters *cmap.Map[*rate.Limiter]
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a server. A nil cfg uses DefaultConfig, a nil log discards
// output, and a nil metrics registry disables metrics.
func New(cfg *Config, h Handler, log logger.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		cfg:      cfg,
		handler:  h,
		logger:   log,
		metrics:  metrics,
		conns:    cmap.New[*Conn](),
		limiters: cmap.New[*rate.Limiter](),
		done:     make(chan struct{}),
	}
}

// Start binds the listener and serves connections in the background.
// Bind errors are returned directly. A server cannot be restarted after
// Shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("redisserver: already started")
	}

	ln, err := s.listen()
	if err != nil {
		s.running.Store(false)
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("redis server listening",
		"address", ln.Addr().String(),
		"tls", s.cfg.TLSCertFile != "",
		"rate_limit", s.cfg.RateLimit,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("accept loop stopped", "error", err)
		}
	}()

	if s.cfg.RateLimit > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweepLimiters()
		}()
	}

	return nil
}

func (s *Server) listen() (net.Listener, error) {
	addr := s.cfg.Address
	if addr == "" {
		addr = DefaultAddress
	}

	if s.cfg.TLSCertFile == "" && s.cfg.TLSKeyFile == "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		return ln, nil
	}

	certs, err := tlsroots.NewWatcher(s.cfg.TLSCertFile, s.cfg.TLSKeyFile, tlsroots.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	ln, err := tls.Listen("tcp", addr, certs.ServerConfig())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	s.certs = certs
	certs.StartAsync()
	return ln, nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnCount returns the number of open connections.
func (s *Server) ConnCount() int {
	return s.conns.Count()
}

// Shutdown stops accepting, closes every open connection and waits for
// the connection goroutines to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.closed.Store(true)
	close(s.done)

	var firstErr error
	s.mu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	if s.certs != nil {
		s.certs.Stop()
	}
	s.mu.Unlock()

	for _, c := range s.conns.Values() {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		c := newConn(ulid.Make().String(), nc, s.readerOptions()...)
		s.conns.Set(c.id, c)
		// Shutdown may have snapshotted conns before this Set.
		if !s.running.Load() {
			_ = c.Close()
			s.conns.Delete(c.id)
			return nil
		}
		s.metrics.ConnOpened()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				_ = c.Close()
				s.conns.Delete(c.id)
				s.metrics.ConnClosed()
			}()
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) readerOptions() []resp.ReaderOption {
	var opts []resp.ReaderOption
	if s.cfg.MaxBulkLen > 0 {
		opts = append(opts, resp.WithMaxBulkLen(s.cfg.MaxBulkLen))
	}
	if s.cfg.MaxArrayLen > 0 {
		opts = append(opts, resp.WithMaxArrayLen(s.cfg.MaxArrayLen))
	}
	return opts
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.WithContext(ctx)
	ctx = logger.WithLogger(ctx, log)

	ip := clientIP(c.RemoteAddr())
	log.Debug("connection opened", "remote", c.RemoteAddr().String())

	for {
		// Nothing pipelined behind the last request: send what we have
		// and wait for the client under the idle timeout.
		if c.r.Buffered() == 0 {
			if err := c.flush(s.cfg.WriteTimeout); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
			if err := c.setReadDeadline(s.cfg.IdleTimeout); err != nil {
				return
			}
			if err := c.r.Peek(); err != nil {
				s.logReadErr(log, err)
				return
			}
		}

		if err := c.setReadDeadline(s.cfg.ReadTimeout); err != nil {
			return
		}
		v, err := c.r.ReadValue()
		if err != nil {
			if errors.Is(err, resp.ErrProtocol) || errors.Is(err, resp.ErrLimitExceeded) {
				// Replies to earlier frames are still owed.
				_ = c.flush(s.cfg.WriteTimeout)
				s.metrics.IncDecodeError()
			}
			s.logReadErr(log, err)
			return
		}

		reply := replyRateLimited
		if s.allow(ip) {
			reply = s.handler.Handle(ctx, v)
		} else {
			s.metrics.IncRateLimited()
			log.Debug("request rate limited", "remote_ip", ip)
		}

		if err := c.w.WriteValue(reply); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

func (s *Server) logReadErr(log logger.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("connection closed by client")
	case errors.Is(err, resp.ErrLimitExceeded):
		log.Warn("protocol limit exceeded, closing connection", "error", err)
	case errors.Is(err, resp.ErrProtocol):
		log.Warn("malformed frame, closing connection", "error", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
	case errors.Is(err, net.ErrClosed):
		log.Debug("connection closed")
	default:
		log.Debug("connection read error", "error", err)
	}
}

// allow reports whether a request from ip fits the rate limit.
func (s *Server) allow(ip string) bool {
	if s.cfg.RateLimit <= 0 {
		return true
	}
	lim, _ := s.limiters.GetOrCreate(ip, func() *rate.Limiter {
		burst := s.cfg.RateBurst
		if burst <= 0 {
			burst = s.cfg.RateLimit
		}
		return rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)
	})
	return lim.Allow()
}

// sweepLimiters drops limiters whose bucket has refilled, so the map only
// holds clients that were recently active.
func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			var idle []string
			s.limiters.Range(func(ip string, lim *rate.Limiter) bool {
				if lim.Tokens() >= float64(lim.Burst()) {
					idle = append(idle, ip)
				}
				return true
			})
			for _, ip := range idle {
				s.limiters.Delete(ip)
			}
		}
	}
}
