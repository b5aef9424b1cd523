package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr    = "127.0.0.1:6378"
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultMaxBulkLen   = 16 << 20
	DefaultMaxArrayLen  = 64 << 10

	DefaultMetricsAddr = "127.0.0.1:9378"

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogBackend = "slog"
	DefaultLogOutput  = "stderr"

	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 30
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				IdleTimeout:  DefaultIdleTimeout,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				MaxBulkLen:   DefaultMaxBulkLen,
				MaxArrayLen:  DefaultMaxArrayLen,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    DefaultMetricsAddr,
			},
		},
		Log: LogSection{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			Backend: DefaultLogBackend,
			Output:  DefaultLogOutput,
			File: FileSection{
				MaxSizeMB:  DefaultLogMaxSizeMB,
				MaxBackups: DefaultLogMaxBackups,
				MaxAgeDays: DefaultLogMaxAgeDays,
			},
		},
	}
}
