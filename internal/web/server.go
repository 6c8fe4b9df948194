package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/web/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	srv    *http.Server
}

// Registry 同时用于注册和导出指标, *prometheus.Registry 满足该接口
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

func InitGinServer(cfg *config.Config, hdl *AttendanceHandler, reg Registry, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.AccessLog(logger),
		middleware.NewMetricsBuilder(reg).Build(),
		corsHdl(cfg.Cors.AllowOrigins),
	)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	hdl.RegisterRoutes(engine, middleware.NewRateLimitBuilder(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst).Build())

	return &Server{
		Engine: engine,
		Addr:   cfg.Addr(),
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func corsHdl(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// Start 阻塞直到服务关闭, 正常关闭时返回 nil
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
