package attendance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/attendancecrawler/param"
)

// fakeSession 按定位表达式返回预设结果, block 中的定位会一直等到 ctx 结束
type fakeSession struct {
	mu      sync.Mutex
	texts   map[string][]string
	fail    map[string]error
	block   map[string]bool
	panicOn string
	delay   time.Duration
	actions []string
	closes  atomic.Int32
	onClose func()
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		texts: map[string][]string{},
		fail:  map[string]error{},
		block: map[string]bool{},
	}
}

func (s *fakeSession) act(ctx context.Context, action, key string) error {
	s.mu.Lock()
	s.actions = append(s.actions, action)
	block, err, panicking := s.block[key], s.fail[key], s.panicOn == key
	s.mu.Unlock()

	if panicking {
		panic("session exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	return s.act(ctx, "navigate "+url, url)
}

func (s *fakeSession) Click(ctx context.Context, locator string) error {
	return s.act(ctx, "click "+locator, locator)
}

func (s *fakeSession) Fill(ctx context.Context, locator, value string) error {
	return s.act(ctx, "fill "+locator+" "+value, locator)
}

func (s *fakeSession) Texts(ctx context.Context, locator string) ([]string, error) {
	if err := s.act(ctx, "texts "+locator, locator); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[locator], nil
}

func (s *fakeSession) Close() error {
	if s.closes.Add(1) == 1 && s.onClose != nil {
		s.onClose()
	}
	return nil
}

func (s *fakeSession) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.actions...)
}

type fakeFactory struct {
	mu       sync.Mutex
	errs     []error
	newFn    func() *fakeSession
	sessions []*fakeSession
	calls    int
	live     int
	maxLive  int
}

func (f *fakeFactory) Driver() string {
	return "fake"
}

func (f *fakeFactory) NewSession(ctx context.Context) (chrome.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	s := f.newFn()
	s.onClose = f.release
	f.sessions = append(f.sessions, s)
	f.live++
	f.maxLive = max(f.maxLive, f.live)
	return s, nil
}

func (f *fakeFactory) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live--
}

// MaxLive 同一时刻存活会话数的峰值
func (f *fakeFactory) MaxLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

func (f *fakeFactory) Sessions() []*fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeSession(nil), f.sessions...)
}

func (f *fakeFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*model.ScrapeRun
	err  error
}

func (r *fakeRecorder) Record(ctx context.Context, run *model.ScrapeRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return r.err
}

func (r *fakeRecorder) Runs() []*model.ScrapeRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.ScrapeRun(nil), r.runs...)
}

var errBoom = errors.New("boom")

func testPortal() param.Portal {
	p := param.DefaultPortal()
	p.StepTimeout = 200 * time.Millisecond
	p.SettleDelay = 0
	return p
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Portal = testPortal()
	cfg.Server.RequestTimeout = 2 * time.Second
	return cfg
}

// portalSession 一个能正常登录并返回两门课程的会话
func portalSession() *fakeSession {
	s := newFakeSession()
	p := testPortal()
	s.texts[p.AttendanceRate] = []string{" 85.5 ", "92.0"}
	s.texts[p.CourseNames] = []string{" Maths ", "Physics"}
	return s
}
