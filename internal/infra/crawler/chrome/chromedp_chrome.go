package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

type chromedpFactory struct {
	opts     Options
	locators LocatorChain
	logger   *zap.Logger
}

func InitChromedpFactory(opts Options, locators LocatorChain, logger *zap.Logger) SessionFactory {
	return &chromedpFactory{
		opts:     opts,
		locators: locators,
		logger:   logger,
	}
}

func (f *chromedpFactory) Driver() string {
	return "chromedp"
}

func (f *chromedpFactory) allocatorOptions(bin string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, flag := range f.opts.Flags() {
		opts = append(opts, chromedp.Flag(flag.Name, flag.Value))
	}
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	return opts
}

// NewSession 浏览器进程挂在 ctx 上, ctx 结束时进程也会被回收
func (f *chromedpFactory) NewSession(ctx context.Context) (Session, error) {
	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if f.opts.DriverPath != "" {
		f.logger.Debug("连接已运行的浏览器", zap.String("driver_path", f.opts.DriverPath))
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, f.opts.DriverPath)
	} else {
		bin, err := f.locators.Locate(ctx)
		if err != nil {
			return nil, err
		}
		f.logger.Debug("启动浏览器", zap.String("bin", bin))
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, f.allocatorOptions(bin)...)
	}
	pageCtx, cancelPage := chromedp.NewContext(allocCtx)

	// chromedp 在第一次 Run 时才真正启动浏览器
	if err := chromedp.Run(pageCtx, network.Enable()); err != nil {
		cancelPage()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
	}

	return &chromedpSession{
		opts:        f.opts,
		pageCtx:     pageCtx,
		cancelPage:  cancelPage,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromedpSession struct {
	opts        Options
	pageCtx     context.Context
	cancelPage  context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

// bind 让 chromedp 的动作既属于当前标签页, 又随调用方 ctx 的超时或取消而停止
func (s *chromedpSession) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.pageCtx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// run 执行动作, 调用方 ctx 已结束时返回 ctx 的错误, 便于上层区分超时
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if s.opts.PageLoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PageLoadTimeout)
		defer cancel()
	}
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromedpSession) Click(ctx context.Context, locator string) error {
	return s.run(ctx,
		chromedp.WaitVisible(locator, chromedp.BySearch),
		chromedp.WaitEnabled(locator, chromedp.BySearch),
		chromedp.Click(locator, chromedp.BySearch, chromedp.NodeVisible),
	)
}

func (s *chromedpSession) Fill(ctx context.Context, locator, value string) error {
	return s.run(ctx,
		chromedp.WaitVisible(locator, chromedp.BySearch),
		chromedp.WaitEnabled(locator, chromedp.BySearch),
		chromedp.Clear(locator, chromedp.BySearch),
		chromedp.SendKeys(locator, value, chromedp.BySearch),
	)
}

const textsJS = `(() => {
	const r = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const out = [];
	for (let i = 0; i < r.snapshotLength; i++) {
		const n = r.snapshotItem(i);
		out.push(n.innerText ?? n.textContent ?? "");
	}
	return out;
})()`

func (s *chromedpSession) Texts(ctx context.Context, locator string) ([]string, error) {
	quoted, err := json.Marshal(locator)
	if err != nil {
		return nil, err
	}
	var texts []string
	err = s.run(ctx,
		chromedp.WaitReady(locator, chromedp.BySearch),
		chromedp.Evaluate(fmt.Sprintf(textsJS, quoted), &texts),
	)
	if err != nil {
		return nil, err
	}
	return texts, nil
}

func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.pageCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
		s.cancelPage()
		s.cancelAlloc()
	})
	return s.closeErr
}
