package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service collectors registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	uploadsTotal        *prometheus.CounterVec
	recognitionDuration *prometheus.HistogramVec
	fallbacksTotal      prometheus.Counter
	probesTotal         *prometheus.CounterVec
}

func newMetrics(engineWorking func() bool) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocrweb_uploads_total",
				Help: "Count of upload requests by outcome",
			},
			[]string{"outcome"},
		),
		recognitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ocrweb_recognition_duration_seconds",
				Help:    "Time spent in the OCR engine per upload, including any fallback attempt",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"engine"},
		),
		fallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ocrweb_recognition_fallbacks_total",
				Help: "Count of uploads recognized only after the fallback configuration",
			},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocrweb_engine_probes_total",
				Help: "Count of engine re-probes requested over HTTP",
			},
			[]string{"result"},
		),
	}

	engineGauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ocrweb_engine_working",
			Help: "1 when the last engine probe succeeded, 0 otherwise",
		},
		func() float64 {
			if engineWorking() {
				return 1
			}
			return 0
		},
	)

	m.Registry.MustRegister(
		m.uploadsTotal,
		m.recognitionDuration,
		m.fallbacksTotal,
		m.probesTotal,
		engineGauge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
