package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/rudis/internal/command"
	"github.com/yndnr/rudis/internal/server/redisserver"
	"github.com/yndnr/rudis/internal/storage/memory"
)

// KeyCounts are the store sizes used by size-sensitive benchmarks.
var KeyCounts = []int{1000, 10000, 100000, 1000000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// newKey returns a unique, roughly realistic key.
func newKey() string {
	return "user:" + strings.ToLower(ulid.Make().String())
}

// prefillStore fills store with count keys and returns them.
func prefillStore(store *memory.Store, count int, valueSize int) []string {
	value := strings.Repeat("v", valueSize)
	keys := make([]string, count)
	for i := range keys {
		keys[i] = newKey()
		store.Set(keys[i], value)
	}
	return keys
}

// startServer runs a server on loopback for the duration of the benchmark.
func startServer(b *testing.B, store *memory.Store) string {
	b.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, command.NewDispatcher(store), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start() error = %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs benchFn once per store size.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
