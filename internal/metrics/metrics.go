package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	namespace = "validator_dashboard"

	// DefaultAddress is where the exporter listens when none is configured
	DefaultAddress = ":9090"

	shutdownTimeout = 5 * time.Second
)

// Recorder keeps the monitor's prometheus series
type Recorder struct {
	registry *prometheus.Registry

	uptime      *prometheus.GaugeVec
	stake       *prometheus.GaugeVec
	commission  *prometheus.GaugeVec
	rewards     *prometheus.GaugeVec
	apr         *prometheus.GaugeVec
	alerts      *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
}

// Sample is one set of validator readings
type Sample struct {
	Validator   string
	Uptime      float64
	StakeAmount uint64
	Commission  uint8
	Rewards     uint64
	APR         float64
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	labels := []string{"validator"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		uptime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_percent",
			Help:      "Validator uptime derived from epoch credit history, in percent.",
		}, labels),
		stake: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stake_lamports",
			Help:      "Activated stake delegated to the validator vote account, in lamports.",
		}, labels),
		commission: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commission_percent",
			Help:      "Validator commission, in percent.",
		}, labels),
		rewards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rewards_credits",
			Help:      "Sum of epoch credits across the vote account history.",
		}, labels),
		apr: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "apr_percent",
			Help:      "Estimated annual percentage rate.",
		}, labels),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Number of uptime alerts raised.",
		}, labels),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Number of failed monitor ticks.",
		}, labels),
	}

	r.registry.MustRegister(
		r.uptime,
		r.stake,
		r.commission,
		r.rewards,
		r.apr,
		r.alerts,
		r.fetchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the series are registered in
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStats sets the validator gauges
func (r *Recorder) ObserveStats(s Sample) {
	r.uptime.WithLabelValues(s.Validator).Set(s.Uptime)
	r.stake.WithLabelValues(s.Validator).Set(float64(s.StakeAmount))
	r.commission.WithLabelValues(s.Validator).Set(float64(s.Commission))
	r.rewards.WithLabelValues(s.Validator).Set(float64(s.Rewards))
	r.apr.WithLabelValues(s.Validator).Set(s.APR)
}

// IncAlerts counts an uptime alert
func (r *Recorder) IncAlerts(validator string) {
	r.alerts.WithLabelValues(validator).Inc()
}

// IncFetchErrors counts a failed tick
func (r *Recorder) IncFetchErrors(validator string) {
	r.fetchErrors.WithLabelValues(validator).Inc()
}

// Handler returns the http handler serving the registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve exposes /metrics on address until ctx is done
func (r *Recorder) Serve(ctx context.Context, address string) error {
	if address == "" {
		address = DefaultAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", address).Msg("serving metrics")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		log.Debug().Msg("metrics server stopped")
		return nil
	}
}
