package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix prefixes every environment variable the server reads.
const DefaultEnvPrefix = "RUDIS_"

// A single underscore stays part of the key, so
// RUDIS_SERVER__REDIS__RATE_LIMIT maps to server.redis.rate_limit.
const envNestingSep = "__"

const delim = "."

// Layer names reported by Loader.Layers.
const (
	LayerFile      = "file"
	LayerEnv       = "env"
	LayerOverrides = "overrides"
)

// Loader merges the config file, the environment and explicit overrides
// into one koanf tree.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
	layers    []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML file read first.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithOverrides sets values applied after every other layer. Keys are
// dotted paths such as "server.redis.addr".
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader returns a Loader with an empty tree.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New(delim),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load applies file, env and overrides in that order, then decodes the
// tree into target. Fields no layer sets keep their current value, so
// target should arrive pre-filled with defaults.
func (l *Loader) Load(target any) error {
	steps := []struct {
		name  string
		skip  bool
		apply func() error
	}{
		{LayerFile, l.filePath == "", func() error { return l.LoadFile(l.filePath) }},
		{LayerEnv, false, l.LoadEnv},
		{LayerOverrides, len(l.overrides) == 0, func() error { return l.LoadMap(l.overrides) }},
	}

	for _, s := range steps {
		if s.skip {
			continue
		}
		if err := s.apply(); err != nil {
			return fmt.Errorf("config %s layer: %w", s.name, err)
		}
		l.layers = append(l.layers, s.name)
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML file. An empty path does nothing.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges every variable carrying the loader's prefix.
// RUDIS_LOG__LEVEL=debug sets log.level.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, delim, func(name string) string {
		return envKey(l.envPrefix, name)
	})
	return l.k.Load(provider, nil)
}

func envKey(prefix, name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, prefix))
	return strings.ReplaceAll(name, envNestingSep, delim)
}

// LoadMap merges values keyed by dotted path or nested map.
func (l *Loader) LoadMap(data map[string]any) error {
	return l.k.Load(mapProvider(data), nil)
}

// Unmarshal decodes the whole tree into target using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// String returns the value at a dotted key, or "" if unset.
func (l *Loader) String(key string) string {
	return l.k.String(key)
}

// Int returns the value at a dotted key, or 0 if unset.
func (l *Loader) Int(key string) int {
	return l.k.Int(key)
}

// Layers lists the layers Load applied, lowest priority first.
func (l *Loader) Layers() []string {
	return l.layers
}
