package parallel

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterMetricsReportsBusyWorkers(t *testing.T) {
	p := NewPool(3, zap.NewNop())
	p.Start()
	defer p.Shutdown()

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg, p))

	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Submit(context.Background(), p, func(ctx context.Context) (int, error) {
			<-release
			return 0, nil
		})
	}()

	require.Eventually(t, func() bool { return p.Busy() == 1 }, time.Second, 5*time.Millisecond)
	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP attendance_pool_busy_workers 正在执行任务的 worker 数量
# TYPE attendance_pool_busy_workers gauge
attendance_pool_busy_workers 1
# HELP attendance_pool_workers worker 总数
# TYPE attendance_pool_workers gauge
attendance_pool_workers 3
`))
	assert.NoError(t, err)

	close(release)
	<-done
	require.Eventually(t, func() bool { return p.Busy() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, p.Size())
}

func TestRegisterMetricsTwiceFails(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg, p))
	assert.Error(t, RegisterMetrics(reg, p))
}
