package assess

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeLive     = "live"
	outcomeFallback = "fallback"
)

// metrics records per-endpoint call outcomes. The zero value records nothing.
type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return &metrics{}, nil
	}

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnforge",
			Subsystem: "assess",
			Name:      "calls_total",
			Help:      "Assessment operations by endpoint and outcome (live or fallback).",
		},
		[]string{"endpoint", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnforge",
			Subsystem: "assess",
			Name:      "call_duration_seconds",
			Help:      "Duration of assessment operations including fallback handling.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	var err error
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &metrics{calls: calls, duration: duration}, nil
}

// register registers c, reusing an identical collector that is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(e Endpoint, fallback bool, elapsed time.Duration) {
	if m.calls == nil {
		return
	}
	outcome := outcomeLive
	if fallback {
		outcome = outcomeFallback
	}
	m.calls.WithLabelValues(string(e), outcome).Inc()
	m.duration.WithLabelValues(string(e)).Observe(elapsed.Seconds())
}
