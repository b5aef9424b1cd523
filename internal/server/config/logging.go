package config

import (
	"os"

	"github.com/yndnr/rudis/internal/telemetry/logger"
)

// LoggerConfig converts the log section into a logger configuration.
func (s LogSection) LoggerConfig() logger.Config {
	cfg := logger.Config{
		Level:     s.Level,
		Format:    s.Format,
		Backend:   s.Backend,
		Output:    os.Stderr,
		AddSource: s.AddSource,
		File: logger.FileConfig{
			Path:       s.File.Path,
			MaxSizeMB:  s.File.MaxSizeMB,
			MaxBackups: s.File.MaxBackups,
			MaxAgeDays: s.File.MaxAgeDays,
			Compress:   s.File.Compress,
		},
	}
	if s.Output == "stdout" {
		cfg.Output = os.Stdout
	}
	return cfg
}
