package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog 只记录方法, 路径, 状态码和耗时, 不记录请求体
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.String("client_ip", ctx.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if ctx.Writer.Status() >= 500 {
			logger.Warn("请求处理失败", fields...)
			return
		}
		logger.Info("请求完成", fields...)
	}
}
