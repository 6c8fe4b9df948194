package chrome

import (
	"context"
	"errors"
	"fmt"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"go.uber.org/zap"
)

// ErrDriverUnavailable 浏览器进程或自动化驱动无法启动
var ErrDriverUnavailable = errors.New("browser driver unavailable")

// Session 一个浏览器进程上的自动化会话. 定位表达式均为 XPath.
// 每个方法在 ctx 结束时返回, Close 必须调用且只需调用一次.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Click 等待元素可见且可用后点击
	Click(ctx context.Context, locator string) error
	// Fill 等待元素可见且可用后清空并输入
	Fill(ctx context.Context, locator, value string) error
	// Texts 等待至少一个节点出现, 返回所有匹配节点的文本
	Texts(ctx context.Context, locator string) ([]string, error)
	Close() error
}

// SessionFactory 每次调用启动一个新的浏览器会话, 不做复用
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
	Driver() string
}

func InitSessionFactory(cfg *config.Config, logger *zap.Logger) (SessionFactory, error) {
	opts := OptionsFromConfig(cfg)
	locators := DefaultLocators(opts, cfg.Browser.AllowDownload)
	switch cfg.Browser.Driver {
	case "chromedp":
		return InitChromedpFactory(opts, locators, logger), nil
	case "rod":
		return InitRodFactory(opts, locators, logger), nil
	default:
		return nil, fmt.Errorf("未知的浏览器驱动: %q", cfg.Browser.Driver)
	}
}
