package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/yndnr/rudis/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyRedis(&cfg.Server.Redis); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Server.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyRedis(cfg *RedisConfig) error {
	if err := verifyAddr("server.redis.addr", cfg.Addr); err != nil {
		return err
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("server.redis.tls_cert_file and server.redis.tls_key_file must be set together")
	}

	durations := []struct {
		name string
		v    time.Duration
	}{
		{"server.redis.idle_timeout", cfg.IdleTimeout},
		{"server.redis.read_timeout", cfg.ReadTimeout},
		{"server.redis.write_timeout", cfg.WriteTimeout},
	}
	for _, d := range durations {
		if d.v < 0 {
			return fmt.Errorf("%s must not be negative", d.name)
		}
	}

	ints := []struct {
		name string
		v    int
	}{
		{"server.redis.rate_limit", cfg.RateLimit},
		{"server.redis.rate_burst", cfg.RateBurst},
		{"server.redis.max_bulk_len", cfg.MaxBulkLen},
		{"server.redis.max_array_len", cfg.MaxArrayLen},
	}
	for _, n := range ints {
		if n.v < 0 {
			return fmt.Errorf("%s must not be negative", n.name)
		}
	}
	return nil
}

func verifyMetrics(cfg *MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("server.metrics.addr", cfg.Addr)
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	switch cfg.Backend {
	case logger.BackendSlog, logger.BackendZap:
	default:
		return fmt.Errorf("log.backend %q is not one of slog, zap", cfg.Backend)
	}
	switch cfg.Output {
	case "", "stderr", "stdout":
	default:
		return fmt.Errorf("log.output %q is not one of stderr, stdout", cfg.Output)
	}
	if cfg.File.MaxSizeMB < 0 || cfg.File.MaxBackups < 0 || cfg.File.MaxAgeDays < 0 {
		return errors.New("log.file limits must not be negative")
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("%s: invalid port %q", name, port)
	}
	return nil
}
