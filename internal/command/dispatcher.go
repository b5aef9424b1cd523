package command

import (
	"context"
	"time"

	"github.com/yndnr/rudis/internal/protocol/resp"
	"github.com/yndnr/rudis/internal/telemetry/logger"
	"github.com/yndnr/rudis/internal/telemetry/metric"
)

// Store is the key-value store a Dispatcher operates on. Implementations
// must make each call atomic with respect to every other call.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// handlerFunc executes a command whose arity has already been checked.
type handlerFunc func(s Store, args []string) resp.Value

// route is one entry of the routing table.
type route struct {
	minArgs int
	fn      handlerFunc
}

// Dispatcher routes commands to handlers. It holds no per-connection
// state and is safe for concurrent use.
type Dispatcher struct {
	store   Store
	routes  map[string]route
	metrics *metric.Registry
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records per-command counters and latencies in r.
func WithMetrics(r *metric.Registry) Option {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

// NewDispatcher creates a Dispatcher serving store.
func NewDispatcher(store Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store: store,
		routes: map[string]route{
			"GET": {minArgs: 1, fn: handleGet},
			"SET": {minArgs: 2, fn: handleSet},
			"DEL": {minArgs: 1, fn: handleDel},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Supported reports whether name (any case) is a routable command.
func (d *Dispatcher) Supported(name string) bool {
	_, ok := d.routes[normalizeName([]byte(name))]
	return ok
}

// Handle interprets a decoded request and dispatches it.
func (d *Dispatcher) Handle(ctx context.Context, v resp.Value) resp.Value {
	cmd, err := Interpret(v)
	if err != nil {
		logger.L(ctx).Debug("rejected request", "error", err, "kind", v.Kind.String())
		d.metrics.ObserveCommand("invalid", metric.ResultError, 0)
		return resp.ErrorValue(err.Error())
	}
	return d.Dispatch(ctx, cmd)
}

// Dispatch executes cmd and returns its reply. Argument checks run before
// the store is touched, so a rejected command never mutates state.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (reply resp.Value) {
	start := time.Now()
	log := logger.L(ctx)

	defer func() {
		if p := recover(); p != nil {
			log.Error("command handler panicked", "command", cmd.Name, "panic", p)
			reply = resp.ErrorValue(errInternal.Error())
		}
		result := metric.ResultOK
		if reply.Kind == resp.KindError {
			result = metric.ResultError
		}
		d.metrics.ObserveCommand(d.metricName(cmd.Name), result, time.Since(start))
	}()

	r, ok := d.routes[cmd.Name]
	if !ok {
		err := &UnsupportedError{Name: cmd.Name}
		log.Debug("unsupported command", "command", cmd.Name)
		return resp.ErrorValue(err.Error())
	}
	if len(cmd.Args) < r.minArgs {
		err := &ArityError{Name: cmd.Name, Min: r.minArgs}
		log.Debug("wrong number of arguments", "command", cmd.Name, "got", len(cmd.Args), "min", r.minArgs)
		return resp.ErrorValue(err.Error())
	}

	log.Debug("dispatching command", "command", cmd.Name, "args", cmd.Args)
	return r.fn(d.store, cmd.Args)
}

// metricName keeps label cardinality bounded: client-chosen names outside
// the routing table are reported as "unsupported".
func (d *Dispatcher) metricName(name string) string {
	if _, ok := d.routes[name]; ok {
		return name
	}
	return "unsupported"
}
