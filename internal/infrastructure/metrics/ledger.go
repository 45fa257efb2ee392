// Package metrics exposes Prometheus series for ledger operations.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Ledger struct {
	reg      *prometheus.Registry
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewLedger builds its own registry so tests can create as many as they like.
func NewLedger() *Ledger {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Ledger{
		reg: reg,
		ops: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Serialized wallet operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Time spent holding or waiting for the wallet lock",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 3},
			},
			[]string{"operation"},
		),
	}
}

// Observe records one wallet operation. Safe on a nil receiver.
func (l *Ledger) Observe(op string, elapsed time.Duration, err error) {
	if l == nil {
		return
	}
	l.ops.WithLabelValues(op, Outcome(err)).Inc()
	l.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (l *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(l.reg, promhttp.HandlerOpts{Registry: l.reg})
}

// Outcome is the label value for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledgererr.ErrValidation):
		return "validation"
	case errors.Is(err, ledgererr.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ledgererr.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ledgererr.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledgererr.ErrBusy):
		return "busy"
	case errors.Is(err, ledgererr.ErrInvariantViolation):
		return "invariant"
	}
	return "error"
}
