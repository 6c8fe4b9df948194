package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/types"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// PortalProbe 不启动浏览器, 只用静态 HTTP 请求确认门户在线以及登录入口仍然存在
type PortalProbe interface {
	Probe(ctx context.Context) *types.ProbeResult
}

type collyProbe struct {
	url       string
	entry     string
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

func InitPortalProbe(cfg *config.Config, logger *zap.Logger) PortalProbe {
	return &collyProbe{
		url:       cfg.Portal.URL,
		entry:     cfg.Portal.StudentLink,
		timeout:   cfg.Probe.Timeout,
		userAgent: cfg.Probe.UserAgent,
		logger:    logger,
	}
}

// newCollector 每次探测使用新的 Collector, 避免 colly 的已访问 URL 去重
func (p *collyProbe) newCollector(ctx context.Context) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.MaxDepth(1),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	}
	if p.userAgent != "" {
		opts = append(opts, colly.UserAgent(p.userAgent))
	}
	c := colly.NewCollector(opts...)
	if p.timeout > 0 {
		c.SetRequestTimeout(p.timeout)
	}
	return c
}

func (p *collyProbe) Probe(ctx context.Context) *types.ProbeResult {
	result := &types.ProbeResult{URL: p.url}
	start := time.Now()

	c := p.newCollector(ctx)
	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.Reachable = true
	})
	c.OnXML(p.entry, func(e *colly.XMLElement) {
		result.EntryFound = true
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			result.StatusCode = r.StatusCode
			result.Reachable = true
		}
		result.Error = err.Error()
	})

	if err := c.Visit(p.url); err != nil && result.Error == "" {
		result.Error = fmt.Sprintf("访问门户失败: %v", err)
	}
	c.Wait()
	result.Latency = time.Since(start)

	p.logger.Debug("门户探测完成",
		zap.String("url", p.url),
		zap.Int("status", result.StatusCode),
		zap.Bool("reachable", result.Reachable),
		zap.Bool("entry_found", result.EntryFound),
		zap.Duration("latency", result.Latency),
	)
	return result
}
