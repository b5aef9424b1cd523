package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis/internal/command"
	"github.com/yndnr/rudis/internal/infra/buildinfo"
	"github.com/yndnr/rudis/internal/infra/confloader"
	"github.com/yndnr/rudis/internal/infra/shutdown"
	"github.com/yndnr/rudis/internal/server/config"
	"github.com/yndnr/rudis/internal/server/httpserver"
	"github.com/yndnr/rudis/internal/server/redisserver"
	"github.com/yndnr/rudis/internal/storage/memory"
	"github.com/yndnr/rudis/internal/telemetry/logger"
	"github.com/yndnr/rudis/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "rudis-server",
		Usage:     "minimal RESP key-value server",
		ArgsUsage: "[ADDRESS]",
		Version:   buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML configuration file",
				EnvVars: []string{"RUDIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("expected at most one ADDRESS argument, got %d", c.NArg())
	}

	configFile := c.String("config")
	cfg, err := loadConfig(configFile, overrides(c.Args().First(), c.String("log-level")))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	info := buildinfo.Get()
	log.Info("starting rudis-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile,
	)

	store := memory.New()
	metrics := metric.NewRegistry()
	if err := metrics.RegisterStore(store); err != nil {
		return fmt.Errorf("register store metrics: %w", err)
	}
	dispatcher := command.NewDispatcher(store, command.WithMetrics(metrics))

	ctx := logger.WithLogger(c.Context, log)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	shutdownHandler.SetLogger(log)

	if cfg.Server.Metrics.Enabled {
		adminServer := httpserver.New(cfg.Server.Metrics.Addr,
			httpserver.NewRouter(httpserver.RouterConfig{Metrics: metrics, Logger: log}), log)
		if err := adminServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		shutdownHandler.OnShutdown("admin http server", adminServer.Shutdown)
	}

	srv := redisserver.New(redisConfig(&cfg.Server.Redis), dispatcher, log, metrics)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis server", srv.Shutdown)

	if configFile != "" {
		watcher, err := watchConfig(configFile, log)
		if err != nil {
			log.Warn("config reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	if err := shutdownHandler.Wait(c.Context); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully", "keys", store.Len())
	return nil
}

// overrides maps command-line values onto config keys.
func overrides(addr, level string) map[string]any {
	m := map[string]any{}
	if addr != "" {
		m["server.redis.addr"] = addr
	}
	if level != "" {
		m["log.level"] = level
	}
	return m
}

// loadConfig layers defaults, the config file, the environment and
// command-line overrides, then validates the result.
func loadConfig(configFile string, flagValues map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(configFile),
		confloader.WithOverrides(flagValues),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(cfg.Log.LoggerConfig())
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func redisConfig(rc *config.RedisConfig) *redisserver.Config {
	return &redisserver.Config{
		Address:      rc.Addr,
		TLSCertFile:  rc.TLSCertFile,
		TLSKeyFile:   rc.TLSKeyFile,
		IdleTimeout:  rc.IdleTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		RateLimit:    rc.RateLimit,
		RateBurst:    rc.RateBurst,
		MaxBulkLen:   rc.MaxBulkLen,
		MaxArrayLen:  rc.MaxArrayLen,
	}
}

// watchConfig re-reads the config file on change and applies the log
// level. Other settings need a restart.
func watchConfig(path string, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path, nil)
		if err != nil {
			log.Warn("ignoring config change", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
