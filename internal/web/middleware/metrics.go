package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsBuilder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetricsBuilder(reg prometheus.Registerer) *MetricsBuilder {
	return &MetricsBuilder{
		requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求数",
		}, []string{"method", "route", "code"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})),
	}
}

// register 已注册过同名指标时复用已有的
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (b *MetricsBuilder) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		b.requests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		b.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
