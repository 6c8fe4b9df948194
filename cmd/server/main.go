package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/attendancecrawler/internal/ioc"
	"github.com/LouYuanbo1/attendancecrawler/internal/logger"
	"github.com/LouYuanbo1/attendancecrawler/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfile := pflag.String("config", "", "配置文件路径, 为空时只使用默认值和环境变量")
	pflag.Parse()

	cfg, err := config.ParseConfig(*cfile)
	if err != nil {
		panic(err)
	}
	l, err := logger.InitLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := ioc.InitApp(ctx, cfg, reg, l)
	if err != nil {
		l.Fatal("初始化失败", zap.Error(err))
	}
	hdl := web.NewAttendanceHandler(app.Service, collector.InitPortalProbe(cfg, l), l)
	server := web.InitGinServer(cfg, hdl, reg, l)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("服务启动",
			zap.String("addr", server.Addr),
			zap.String("driver", cfg.Browser.Driver),
			zap.Int("pool_size", cfg.Pool.Size),
			zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		)
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("收到退出信号, 开始关闭")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			l.Warn("HTTP 服务关闭超时", zap.Error(err))
		}
		return app.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("服务异常退出", zap.Error(err))
	}
	l.Info("服务已退出")
}
