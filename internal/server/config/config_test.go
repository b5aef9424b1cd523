package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Server.Redis.Addr, DefaultRedisAddr)
	}
	if cfg.Server.Redis.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("IdleTimeout = %v, want %v", cfg.Server.Redis.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.Server.Redis.RateLimit != 0 {
		t.Errorf("RateLimit = %d, rate limiting should be off by default", cfg.Server.Redis.RateLimit)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Metrics should be disabled by default")
	}
	if cfg.Server.Metrics.Addr != DefaultMetricsAddr {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Server.Metrics.Addr, DefaultMetricsAddr)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Backend != DefaultLogBackend {
		t.Errorf("Log.Backend = %q, want %q", cfg.Log.Backend, DefaultLogBackend)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ServerConfig)
		wantErr string
	}{
		{"defaults", func(*ServerConfig) {}, ""},
		{"any port", func(c *ServerConfig) { c.Server.Redis.Addr = "0.0.0.0:0" }, ""},
		{"ipv6", func(c *ServerConfig) { c.Server.Redis.Addr = "[::1]:6378" }, ""},
		{"empty addr", func(c *ServerConfig) { c.Server.Redis.Addr = "" }, "server.redis.addr is required"},
		{"missing port", func(c *ServerConfig) { c.Server.Redis.Addr = "localhost" }, "server.redis.addr"},
		{"bad port", func(c *ServerConfig) { c.Server.Redis.Addr = "localhost:99999" }, "invalid port"},
		{"cert without key", func(c *ServerConfig) { c.Server.Redis.TLSCertFile = "cert.pem" }, "must be set together"},
		{"tls pair", func(c *ServerConfig) {
			c.Server.Redis.TLSCertFile = "cert.pem"
			c.Server.Redis.TLSKeyFile = "key.pem"
		}, ""},
		{"negative timeout", func(c *ServerConfig) { c.Server.Redis.ReadTimeout = -time.Second }, "server.redis.read_timeout"},
		{"zero timeout", func(c *ServerConfig) { c.Server.Redis.IdleTimeout = 0 }, ""},
		{"negative rate", func(c *ServerConfig) { c.Server.Redis.RateLimit = -1 }, "server.redis.rate_limit"},
		{"negative bulk len", func(c *ServerConfig) { c.Server.Redis.MaxBulkLen = -1 }, "server.redis.max_bulk_len"},
		{"metrics disabled ignores addr", func(c *ServerConfig) { c.Server.Metrics.Addr = "" }, ""},
		{"metrics enabled needs addr", func(c *ServerConfig) {
			c.Server.Metrics.Enabled = true
			c.Server.Metrics.Addr = ""
		}, "server.metrics.addr"},
		{"bad level", func(c *ServerConfig) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
		{"zap backend", func(c *ServerConfig) { c.Log.Backend = "zap" }, ""},
		{"bad backend", func(c *ServerConfig) { c.Log.Backend = "logrus" }, "log.backend"},
		{"bad output", func(c *ServerConfig) { c.Log.Output = "syslog" }, "log.output"},
		{"negative backups", func(c *ServerConfig) { c.Log.File.MaxBackups = -1 }, "log.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLogSection_LoggerConfig(t *testing.T) {
	s := Default().Log
	s.Level = "debug"
	s.Backend = "zap"
	s.File.Path = "/var/log/rudis.log"
	s.File.Compress = true

	cfg := s.LoggerConfig()
	if cfg.Level != "debug" || cfg.Backend != "zap" || cfg.Format != DefaultLogFormat {
		t.Errorf("LoggerConfig() = %+v", cfg)
	}
	if cfg.File.Path != "/var/log/rudis.log" || !cfg.File.Compress {
		t.Errorf("File = %+v", cfg.File)
	}
	if cfg.File.MaxSizeMB != DefaultLogMaxSizeMB {
		t.Errorf("File.MaxSizeMB = %d, want %d", cfg.File.MaxSizeMB, DefaultLogMaxSizeMB)
	}
	if cfg.Output != os.Stderr {
		t.Error("Output should default to stderr")
	}

	s.Output = "stdout"
	if s.LoggerConfig().Output != os.Stdout {
		t.Error("Output should be stdout")
	}
}
