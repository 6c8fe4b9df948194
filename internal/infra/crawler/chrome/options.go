package chrome

import (
	"strings"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
)

type Options struct {
	Headless   bool
	DisableGpu bool
	NoSandbox  bool
	// Bin 浏览器可执行文件, 为空时由 BinaryLocator 查找
	Bin string
	// DriverPath 已运行浏览器的 DevTools 地址, 设置后不再启动本地进程
	DriverPath      string
	ExtraFlags      []string
	UserAgent       string
	Leakless        bool
	PageLoadTimeout time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Headless:        cfg.Browser.Headless,
		DisableGpu:      cfg.Browser.DisableGpu,
		NoSandbox:       cfg.Browser.NoSandbox,
		Bin:             cfg.Browser.Bin,
		DriverPath:      cfg.Browser.DriverPath,
		ExtraFlags:      cfg.Browser.ExtraFlags,
		UserAgent:       cfg.Browser.UserAgent,
		Leakless:        cfg.Browser.Leakless,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
	}
}

// Flag 命令行开关, Value 为 bool 时表示开启或关闭, 为 string 时表示 name=value
type Flag struct {
	Name  string
	Value any
}

// Flags 启动参数, 顺序固定. 受限的服务器环境里必须关闭沙箱和 GPU.
func (o Options) Flags() []Flag {
	flags := []Flag{
		{Name: "headless", Value: o.Headless},
		{Name: "disable-gpu", Value: o.DisableGpu},
		{Name: "no-sandbox", Value: o.NoSandbox},
		{Name: "disable-dev-shm-usage", Value: true},
		{Name: "ignore-certificate-errors", Value: true},
		{Name: "log-level", Value: "3"},
	}
	if o.UserAgent != "" {
		flags = append(flags, Flag{Name: "user-agent", Value: o.UserAgent})
	}
	for _, raw := range o.ExtraFlags {
		raw = strings.TrimLeft(strings.TrimSpace(raw), "-")
		if raw == "" {
			continue
		}
		name, value, ok := strings.Cut(raw, "=")
		if ok {
			flags = append(flags, Flag{Name: name, Value: value})
		} else {
			flags = append(flags, Flag{Name: name, Value: true})
		}
	}
	return flags
}
