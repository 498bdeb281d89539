// Package metrics holds Prometheus instrumentation for one bot run.
//
// The bot is a short-lived process, so nothing is served over HTTP. At the end
// of a run the registry is written in text exposition format for the
// node-exporter textfile collector:
//   • kalshibot_orders_total{mode,result}    – order attempts (placed|failed)
//   • kalshibot_resolutions_total{outcome}   – settled trades (WIN|LOSS)
//   • kalshibot_gateway_errors_total{op}     – market/exec gateway failures
//   • kalshibot_candidates                   – qualifying sides seen this run
//   • kalshibot_bankroll_usd                 – bankroll at end of run
//   • kalshibot_open_trades                  – ledger size at end of run
//   • kalshibot_last_run_timestamp_seconds   – completion time
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder wraps a private registry so tests can build their own
type Recorder struct {
	registry *prometheus.Registry

	Orders        *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	GatewayErrors *prometheus.CounterVec
	Candidates    prometheus.Gauge
	Bankroll      prometheus.Gauge
	OpenTrades    prometheus.Gauge
	LastRun       prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalshibot_orders_total",
			Help: "Order attempts by execution mode and result",
		}, []string{"mode", "result"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalshibot_resolutions_total",
			Help: "Settled trades by outcome",
		}, []string{"outcome"}),
		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kalshibot_gateway_errors_total",
			Help: "Failed gateway calls by operation",
		}, []string{"op"}),
		Candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kalshibot_candidates",
			Help: "Market sides that met the probability threshold this run",
		}),
		Bankroll: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kalshibot_bankroll_usd",
			Help: "Bankroll in USD",
		}),
		OpenTrades: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kalshibot_open_trades",
			Help: "Open trades in the ledger",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kalshibot_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}

	r.registry.MustRegister(r.Orders, r.Resolutions, r.GatewayErrors,
		r.Candidates, r.Bankroll, r.OpenTrades, r.LastRun)
	return r
}

// Gatherer exposes the registry (tests use testutil against it)
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile stamps the run time and writes the registry to path
func (r *Recorder) WriteTextfile(path string) error {
	r.LastRun.Set(float64(time.Now().Unix()))
	return prometheus.WriteToTextfile(path, r.registry)
}
