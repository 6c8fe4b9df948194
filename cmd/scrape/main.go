package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/LouYuanbo1/attendancecrawler/internal/ioc"
	"github.com/LouYuanbo1/attendancecrawler/internal/logger"
	"github.com/LouYuanbo1/attendancecrawler/internal/service/attendance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// 单次抓取, 便于在部署环境里排查浏览器和门户问题
func main() {
	cfile := pflag.String("config", "", "配置文件路径")
	username := pflag.String("username", os.Getenv("PORTAL_USERNAME"), "门户账号, 默认读取 PORTAL_USERNAME")
	password := pflag.String("password", os.Getenv("PORTAL_PASSWORD"), "门户密码, 默认读取 PORTAL_PASSWORD")
	pflag.Parse()

	cfg, err := config.ParseConfig(*cfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Pool.Size = 1
	l, err := logger.InitLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(run(cfg, l, model.Credentials{ID: *username, Secret: *password}))
}

func run(cfg *config.Config, l *zap.Logger, creds model.Credentials) int {
	defer func() { _ = l.Sync() }()
	if !creds.Valid() {
		fmt.Fprintln(os.Stderr, "需要 --username 和 --password")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := ioc.InitApp(ctx, cfg, prometheus.NewRegistry(), l)
	if err != nil {
		l.Error("初始化失败", zap.Error(err))
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Close(closeCtx)
	}()

	report, err := app.Service.GetAttendance(ctx, creds)
	if err != nil {
		fmt.Fprintln(os.Stderr, attendance.GenericMessage)
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		l.Error("输出结果失败", zap.Error(err))
		return 1
	}
	return 0
}
