package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "scrape",
			Name:      "runs_total",
			Help:      "抓取次数, 按终态和失败类型统计",
		}, []string{"state", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Subsystem: "scrape",
			Name:      "duration_seconds",
			Help:      "单次抓取耗时",
			Buckets:   []float64{1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90},
		}, []string{"state"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Subsystem: "scrape",
			Name:      "inflight",
			Help:      "正在排队或执行的抓取数量",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.inflight)
	return m
}

func (m *Metrics) observe(state State, kind Kind, seconds float64) {
	m.runs.WithLabelValues(string(state), string(kind)).Inc()
	m.duration.WithLabelValues(string(state)).Observe(seconds)
}
