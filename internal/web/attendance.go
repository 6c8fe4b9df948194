package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/attendancecrawler/internal/service/attendance"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttendanceHandler struct {
	svc    attendance.Service
	probe  collector.PortalProbe
	logger *zap.Logger
}

func NewAttendanceHandler(svc attendance.Service, probe collector.PortalProbe, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		svc:    svc,
		probe:  probe,
		logger: logger,
	}
}

func (h *AttendanceHandler) RegisterRoutes(s *gin.Engine, limiter gin.HandlerFunc) {
	s.POST("/get_attendance", limiter, h.GetAttendance)
	s.GET("/get_attendance", h.Usage)
	s.GET("/health", h.Health)
	s.GET("/health/portal", h.PortalHealth)
	s.NoRoute(h.NotFound)
}

func (h *AttendanceHandler) GetAttendance(ctx *gin.Context) {
	var req AttendanceReq
	// 请求体无法解析时与缺少字段同样处理
	_ = ctx.ShouldBind(&req)
	creds := model.Credentials{
		ID:     strings.TrimSpace(req.Username),
		Secret: req.Password,
	}
	if !creds.Valid() {
		ctx.JSON(http.StatusBadRequest, ErrorResp{Error: "Username and password are required"})
		return
	}

	report, err := h.svc.GetAttendance(ctx.Request.Context(), creds)
	if err != nil {
		var f *attendance.Failure
		msg := attendance.GenericMessage
		if errors.As(err, &f) {
			msg = f.Message
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResp{Error: msg})
		return
	}
	// 先编码再写状态码, 编码失败时不会留下空的 200
	body, err := json.Marshal(report)
	if err != nil {
		h.logger.Error("编码出勤数据失败", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, ErrorResp{Error: attendance.GenericMessage})
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *AttendanceHandler) Usage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Please use POST method with username and password"})
}

func (h *AttendanceHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Service is running"})
}

func (h *AttendanceHandler) PortalHealth(ctx *gin.Context) {
	res := h.probe.Probe(ctx.Request.Context())
	status, code := "ok", http.StatusOK
	if !res.Healthy() {
		status, code = "degraded", http.StatusServiceUnavailable
		h.logger.Warn("门户探测异常",
			zap.String("url", res.URL),
			zap.Int("status_code", res.StatusCode),
			zap.String("error", res.Error),
		)
	}
	ctx.JSON(code, gin.H{
		"status":            status,
		"reachable":         res.Reachable,
		"login_entry_found": res.EntryFound,
		"latency_ms":        res.Latency.Milliseconds(),
	})
}

func (h *AttendanceHandler) NotFound(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, ErrorResp{
		Error: "The requested URL " + ctx.Request.URL.Path + " was not found on this server",
	})
}
