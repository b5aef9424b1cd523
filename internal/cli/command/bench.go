package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/rudis/internal/cli/connection"
	"github.com/yndnr/rudis/internal/cli/output"
	"github.com/yndnr/rudis/internal/protocol/resp"
)

// BenchConfig configures a benchmark run.
type BenchConfig struct {
	Clients   int
	Requests  int
	Key       string
	ValueSize int
}

// BenchResult summarizes a benchmark run.
type BenchResult struct {
	Server     string        `json:"server" yaml:"server"`
	Clients    int           `json:"clients" yaml:"clients"`
	Requests   int           `json:"requests" yaml:"requests"`
	Errors     int64         `json:"errors" yaml:"errors"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	OpsPerSec  float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	Key        string        `json:"key" yaml:"key"`
	FinalValue string        `json:"final_value" yaml:"final_value"`
	// Consistent reports whether the final value is one that some client
	// wrote in full.
	Consistent bool `json:"consistent" yaml:"consistent"`
}

// BenchCommand returns the bench command.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run concurrent SET/GET traffic against one key",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "clients",
				Aliases: []string{"c"},
				Usage:   "number of concurrent connections",
				Value:   8,
			},
			&cli.IntFlag{
				Name:    "requests",
				Aliases: []string{"n"},
				Usage:   "total number of requests",
				Value:   10000,
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "key shared by all clients",
				Value: "bench:key",
			},
			&cli.IntFlag{
				Name:    "value-size",
				Aliases: []string{"d"},
				Usage:   "size of SET values in bytes",
				Value:   16,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not draw a progress bar",
			},
		},
		Action: func(c *cli.Context) error {
			g, err := getGlobalFlags(c)
			if err != nil {
				return err
			}
			opts, err := g.Options()
			if err != nil {
				return err
			}

			var progress io.Writer
			if !c.Bool("quiet") {
				progress = c.App.ErrWriter
			}

			res, err := RunBench(c.Context, g.Server, opts, BenchConfig{
				Clients:   c.Int("clients"),
				Requests:  c.Int("requests"),
				Key:       c.String("key"),
				ValueSize: c.Int("value-size"),
			}, progress)
			if err != nil {
				return err
			}
			return printResult(c, g, res)
		},
	}
}

// RunBench splits cfg.Requests across cfg.Clients pooled connections. Each
// client alternates SET and GET on cfg.Key, starting with SET. Error
// replies are counted; a transport failure aborts the run. A non-nil
// progress writer receives a progress bar.
func RunBench(ctx context.Context, addr string, opts connection.Options, cfg BenchConfig, progress io.Writer) (*BenchResult, error) {
	if cfg.Clients <= 0 {
		return nil, errors.New("bench: clients must be positive")
	}
	if cfg.Requests <= 0 {
		return nil, errors.New("bench: requests must be positive")
	}
	if cfg.Key == "" {
		return nil, errors.New("bench: key must not be empty")
	}
	if cfg.Clients > cfg.Requests {
		cfg.Clients = cfg.Requests
	}

	pool := connection.NewPool(ctx, addr, opts, cfg.Clients)
	defer pool.Close(context.Background())

	var bar *output.ProgressBar
	if progress != nil {
		bar = output.NewProgressBar(progress, "bench", int64(cfg.Requests))
	}

	var errCount atomic.Int64
	written := make([]map[string]struct{}, cfg.Clients)

	start := time.Now()
	grp, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Clients; w++ {
		w := w
		n := cfg.Requests / cfg.Clients
		if w < cfg.Requests%cfg.Clients {
			n++
		}
		written[w] = make(map[string]struct{}, n/2+1)

		grp.Go(func() error {
			for i := 0; i < n; i++ {
				args := []string{"GET", cfg.Key}
				if i%2 == 0 {
					val := benchValue(w, i, cfg.ValueSize)
					written[w][val] = struct{}{}
					args = []string{"SET", cfg.Key, val}
				}

				reply, err := pool.Do(gctx, args...)
				if err != nil {
					return err
				}
				if reply.Kind == resp.KindError {
					errCount.Add(1)
				}
				if bar != nil {
					bar.Increment(1)
				}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	elapsed := time.Since(start)
	if bar != nil {
		bar.Finish()
	}

	final, err := pool.Do(ctx, "GET", cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("bench: read final value: %w", err)
	}

	res := &BenchResult{
		Server:     addr,
		Clients:    cfg.Clients,
		Requests:   cfg.Requests,
		Errors:     errCount.Load(),
		Duration:   elapsed,
		Key:        cfg.Key,
		FinalValue: final.Text(),
	}
	if elapsed > 0 {
		res.OpsPerSec = float64(cfg.Requests) / elapsed.Seconds()
	}
	if final.Kind == resp.KindBulk {
		for _, set := range written {
			if _, ok := set[res.FinalValue]; ok {
				res.Consistent = true
				break
			}
		}
	}
	return res, nil
}

// benchValue returns a value unique to (client, op), padded to size.
func benchValue(client, op, size int) string {
	s := strconv.Itoa(client) + ":" + strconv.Itoa(op) + ":"
	if len(s) < size {
		s += strings.Repeat("x", size-len(s))
	}
	return s
}
