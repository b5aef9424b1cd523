package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/rudis/internal/infra/buildinfo"
	"github.com/yndnr/rudis/internal/telemetry/logger"
	"github.com/yndnr/rudis/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics is exposed on /metrics. Nil uses the global registry.
	Metrics *metric.Registry
	// Logger for request and panic logging.
	Logger logger.Logger
}

// NewRouter builds the admin routes.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.Global()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /version", handleVersion)

	return Chain(mux, RequestID(), Recover(log), AccessLog(log))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
