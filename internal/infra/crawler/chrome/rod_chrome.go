package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

type rodFactory struct {
	opts     Options
	locators LocatorChain
	logger   *zap.Logger
}

func InitRodFactory(opts Options, locators LocatorChain, logger *zap.Logger) SessionFactory {
	return &rodFactory{
		opts:     opts,
		locators: locators,
		logger:   logger,
	}
}

func (f *rodFactory) Driver() string {
	return "rod"
}

func (f *rodFactory) launcher(ctx context.Context, bin string) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Leakless(f.opts.Leakless)
	for _, flag := range f.opts.Flags() {
		switch v := flag.Value.(type) {
		case bool:
			if v {
				l = l.Set(flags.Flag(flag.Name))
			} else {
				l = l.Delete(flags.Flag(flag.Name))
			}
		case string:
			l = l.Set(flags.Flag(flag.Name), v)
		}
	}
	return l
}

func (f *rodFactory) NewSession(ctx context.Context) (Session, error) {
	s := &rodSession{opts: f.opts}

	var controlURL string
	if f.opts.DriverPath != "" {
		u, err := launcher.ResolveURL(f.opts.DriverPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
		}
		f.logger.Debug("连接已运行的浏览器", zap.String("driver_path", f.opts.DriverPath))
		controlURL = u
		s.remote = true
	} else {
		bin, err := f.locators.Locate(ctx)
		if err != nil {
			return nil, err
		}
		f.logger.Debug("启动浏览器", zap.String("bin", bin))
		s.launcher = f.launcher(ctx, bin)
		u, err := s.launcher.Launch()
		if err != nil {
			s.launcher.Kill()
			return nil, fmt.Errorf("%w: 启动浏览器失败: %w", ErrDriverUnavailable, err)
		}
		controlURL = u
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: 连接浏览器失败: %w", ErrDriverUnavailable, err)
	}
	page, err := stealth.Page(s.browser)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: 创建页面失败: %w", ErrDriverUnavailable, err)
	}
	s.page = page
	return s, nil
}

type rodSession struct {
	opts     Options
	remote   bool
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	if s.opts.PageLoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PageLoadTimeout)
		defer cancel()
	}
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return ctxErr(ctx, err)
	}
	return ctxErr(ctx, p.WaitLoad())
}

// element ElementX 会一直重试直到元素出现或 ctx 结束
func (s *rodSession) element(ctx context.Context, locator string) (*rod.Element, error) {
	el, err := s.page.Context(ctx).ElementX(locator)
	if err != nil {
		return nil, ctxErr(ctx, err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, ctxErr(ctx, err)
	}
	if err := el.WaitEnabled(); err != nil {
		return nil, ctxErr(ctx, err)
	}
	return el, nil
}

func (s *rodSession) Click(ctx context.Context, locator string) error {
	el, err := s.element(ctx, locator)
	if err != nil {
		return err
	}
	return ctxErr(ctx, el.Click(proto.InputMouseButtonLeft, 1))
}

func (s *rodSession) Fill(ctx context.Context, locator, value string) error {
	el, err := s.element(ctx, locator)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return ctxErr(ctx, err)
	}
	return ctxErr(ctx, el.Input(value))
}

func (s *rodSession) Texts(ctx context.Context, locator string) ([]string, error) {
	p := s.page.Context(ctx)
	// 先等到至少一个节点出现
	if _, err := p.ElementX(locator); err != nil {
		return nil, ctxErr(ctx, err)
	}
	els, err := p.ElementsX(locator)
	if err != nil {
		return nil, ctxErr(ctx, err)
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, ctxErr(ctx, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// Close 远程浏览器只关闭自己的标签页, 本地启动的进程会被结束并清理用户目录
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil && !errors.Is(err, context.Canceled) {
				errs = append(errs, err)
			}
		}
		if s.browser != nil && !s.remote {
			if err := s.browser.Close(); err != nil && !errors.Is(err, context.Canceled) {
				errs = append(errs, err)
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// ctxErr 调用方 ctx 已结束时优先返回 ctx 的错误
func ctxErr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
