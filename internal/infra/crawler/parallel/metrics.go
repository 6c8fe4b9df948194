package parallel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics 采集时读取池的实时状态
func RegisterMetrics(reg prometheus.Registerer, p *Pool) error {
	size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "attendance",
		Subsystem: "pool",
		Name:      "workers",
		Help:      "worker 总数",
	}, func() float64 {
		return float64(p.Size())
	})
	busy := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "attendance",
		Subsystem: "pool",
		Name:      "busy_workers",
		Help:      "正在执行任务的 worker 数量",
	}, func() float64 {
		return float64(p.Busy())
	})
	for _, c := range []prometheus.Collector{size, busy} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
