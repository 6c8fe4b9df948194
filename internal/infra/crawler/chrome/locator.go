package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"
)

// BinaryLocator 一种查找浏览器可执行文件的方式
type BinaryLocator interface {
	Name() string
	Locate(ctx context.Context) (string, error)
}

// LocatorChain 按顺序尝试, 第一个成功的结果生效
type LocatorChain []BinaryLocator

func (lc LocatorChain) Locate(ctx context.Context) (string, error) {
	var errs []error
	for _, l := range lc {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		bin, err := l.Locate(ctx)
		if err == nil && bin != "" {
			return bin, nil
		}
		if err == nil {
			err = errors.New("empty path")
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
	}
	return "", fmt.Errorf("%w: %w", ErrDriverUnavailable, errors.Join(errs...))
}

func DefaultLocators(opts Options, allowDownload bool) LocatorChain {
	chain := LocatorChain{}
	if opts.Bin != "" {
		chain = append(chain, ConfiguredPath(opts.Bin))
	}
	chain = append(chain, LookPathLocator{})
	if allowDownload {
		chain = append(chain, DownloadLocator{})
	}
	return chain
}

// ConfiguredPath 配置或环境变量里指定的路径
type ConfiguredPath string

func (p ConfiguredPath) Name() string {
	return "configured"
}

func (p ConfiguredPath) Locate(context.Context) (string, error) {
	info, err := os.Stat(string(p))
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s 是目录", string(p))
	}
	return string(p), nil
}

// LookPathLocator 在 PATH 和常见安装位置中查找 Chrome/Chromium
type LookPathLocator struct{}

func (LookPathLocator) Name() string {
	return "lookpath"
}

func (LookPathLocator) Locate(context.Context) (string, error) {
	bin, ok := launcher.LookPath()
	if !ok {
		return "", errors.New("未找到已安装的浏览器")
	}
	return bin, nil
}

// DownloadLocator 下载与 rod 版本匹配的 Chromium, 已下载过则直接复用
type DownloadLocator struct {
	RootDir string
}

func (DownloadLocator) Name() string {
	return "download"
}

func (d DownloadLocator) Locate(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	if d.RootDir != "" {
		b.RootDir = d.RootDir
	}
	return b.Get()
}

// LocatorFunc 把普通函数包装为 BinaryLocator
type LocatorFunc struct {
	Label string
	Fn    func(ctx context.Context) (string, error)
}

func (f LocatorFunc) Name() string {
	return f.Label
}

func (f LocatorFunc) Locate(ctx context.Context) (string, error) {
	return f.Fn(ctx)
}
