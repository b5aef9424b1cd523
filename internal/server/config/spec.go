package config

import "time"

// ServerConfig is the root configuration for rudis-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
	RateBurst int `koanf:"rate_burst"`

	MaxBulkLen  int `koanf:"max_bulk_len"`
	MaxArrayLen int `koanf:"max_array_len"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level     string      `koanf:"level"`
	Format    string      `koanf:"format"`
	Backend   string      `koanf:"backend"`
	Output    string      `koanf:"output"`
	AddSource bool        `koanf:"add_source"`
	File      FileSection `koanf:"file"`
}

// FileSection configures rotating file output. Used when Path is set.
type FileSection struct {
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}
