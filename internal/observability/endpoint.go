// Package observability provides the Prometheus metrics endpoint for
// monitoring the audiostream pipeline.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oliviamiller/audiostream/internal/logging"
	metricspkg "github.com/oliviamiller/audiostream/internal/observability/metrics"
)

// Endpoint serves pipeline metrics over HTTP in Prometheus format.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	registry      *prometheus.Registry
	Metrics       *metricspkg.AudioStreamMetrics
	logger        *slog.Logger
}

// NewEndpoint creates a metrics endpoint with a fresh registry and the
// pipeline metric set registered on it.
func NewEndpoint(listenAddress string) (*Endpoint, error) {
	registry := prometheus.NewRegistry()
	m, err := metricspkg.NewAudioStreamMetrics(registry)
	if err != nil {
		return nil, err
	}

	logger := logging.ForService("observability")
	if logger == nil {
		logger = slog.Default()
	}

	return &Endpoint{
		listenAddress: listenAddress,
		registry:      registry,
		Metrics:       m,
		logger:        logger,
	}, nil
}

// Start runs the HTTP server in a background goroutine.
func (e *Endpoint) Start() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))

	e.server = &http.Server{
		Addr:              e.listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		e.logger.Info("metrics endpoint listening", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("metrics endpoint failed", "error", err)
		}
	}()
}

// Stop shuts the HTTP server down gracefully.
func (e *Endpoint) Stop(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
