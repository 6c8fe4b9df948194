package ioc

import (
	"context"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/parallel"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/attendancecrawler/internal/service/attendance"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App 进程级共享的资源, 由 main 负责启动和关闭
type App struct {
	Pool    *parallel.Pool
	Service attendance.Service
}

func InitApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*App, error) {
	factory, err := chrome.InitSessionFactory(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool := parallel.NewPool(cfg.Pool.Size, logger)
	if err := parallel.RegisterMetrics(reg, pool); err != nil {
		return nil, err
	}
	pool.Start()

	svc := attendance.InitAttendanceService(cfg, factory, pool, InitRecorder(ctx, cfg, logger), attendance.NewMetrics(reg), logger)
	return &App{
		Pool:    pool,
		Service: svc,
	}, nil
}

// InitRecorder Elasticsearch 不可用时只记日志, 不影响抓取
func InitRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) es.RunRecorder {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	rec, err := es.InitRunRecorder(ctx, cfg, logger)
	if err != nil {
		logger.Warn("初始化运行记录失败, 不记录运行日志", zap.Error(err))
		return es.NoopRecorder{}
	}
	return rec
}

// Close 停止接收任务并等待运行记录写完
func (a *App) Close(ctx context.Context) error {
	a.Pool.Shutdown()
	return a.Service.Close(ctx)
}
