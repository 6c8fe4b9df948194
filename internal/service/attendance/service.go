package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/parallel"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/persistence/es"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=./service.go -package=attendancemocks -destination=./mocks/service.mock.go Service
type Service interface {
	// GetAttendance 失败时只返回 *Failure
	GetAttendance(ctx context.Context, creds model.Credentials) (*model.AttendanceReport, error)
	// Close 等待尚未写完的运行记录
	Close(ctx context.Context) error
}

const (
	startupBackoff = 500 * time.Millisecond
	recordTimeout  = 5 * time.Second
)

type attendanceService struct {
	factory        chrome.SessionFactory
	pool           *parallel.Pool
	sequencer      *Sequencer
	extractor      *Extractor
	recorder       es.RunRecorder
	metrics        *Metrics
	logger         *zap.Logger
	timeout        time.Duration
	startupRetries int
	backoff        time.Duration

	// closed 之后不再登记新的运行记录, 保证 Add 不会与 Wait 并发
	mu        sync.Mutex
	closed    bool
	recording sync.WaitGroup
}

func InitAttendanceService(
	cfg *config.Config,
	factory chrome.SessionFactory,
	pool *parallel.Pool,
	recorder es.RunRecorder,
	metrics *Metrics,
	logger *zap.Logger,
) Service {
	if recorder == nil {
		recorder = es.NoopRecorder{}
	}
	return &attendanceService{
		factory:        factory,
		pool:           pool,
		sequencer:      NewSequencer(cfg.Portal),
		extractor:      NewExtractor(cfg.Portal),
		recorder:       recorder,
		metrics:        metrics,
		logger:         logger,
		timeout:        cfg.Server.RequestTimeout,
		startupRetries: cfg.Browser.StartupRetries,
		backoff:        startupBackoff,
	}
}

func (s *attendanceService) GetAttendance(ctx context.Context, creds model.Credentials) (*model.AttendanceReport, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("driver", s.factory.Driver()))
	tr := newTracker(logger)
	started := time.Now()

	if !creds.Valid() {
		return nil, s.finish(ctx, runID, tr, started, nil, errors.New("empty credentials"), logger)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.metrics.inflight.Inc()
	defer s.metrics.inflight.Dec()

	report, err := parallel.Submit(ctx, s.pool, func(ctx context.Context) (*model.AttendanceReport, error) {
		return s.scrape(ctx, creds, tr, logger)
	})
	if err != nil {
		return nil, s.finish(ctx, runID, tr, started, nil, err, logger)
	}
	return report, s.finish(ctx, runID, tr, started, report, nil, logger)
}

// scrape 在 worker 上执行: 启动会话, 登录, 抽取, 汇总
func (s *attendanceService) scrape(ctx context.Context, creds model.Credentials, tr *tracker, logger *zap.Logger) (*model.AttendanceReport, error) {
	tr.set(StateSessionStarting)
	return withSession(ctx, s, logger, func(session chrome.Session) (*model.AttendanceReport, error) {
		tr.set(StateLoggingIn)
		if err := s.sequencer.Login(ctx, session, creds); err != nil {
			return nil, err
		}

		tr.set(StateExtracting)
		raw, err := s.extractor.Extract(ctx, session)
		if err != nil {
			return nil, err
		}

		tr.set(StateAggregating)
		if raw.Mismatched() {
			logger.Warn("课程名与出勤率数量不一致, 按下标对应",
				zap.Int("names", len(raw.Names)),
				zap.Int("percents", len(raw.Percents)),
			)
		}
		report, ok := Aggregate(raw.Names, raw.Percents)
		if !ok {
			return nil, ErrEmptyResult
		}
		return report, nil
	})
}

// withSession 会话的关闭只在这里发生, 无论正常返回, 出错, 超时还是 panic 都恰好关闭一次.
// ctx 结束时立即关闭, 让仍在等待页面的操作尽快退出.
func withSession[T any](ctx context.Context, s *attendanceService, logger *zap.Logger, fn func(chrome.Session) (T, error)) (T, error) {
	var zero T
	session, err := s.startSession(ctx, logger)
	if err != nil {
		return zero, err
	}

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			if err := session.Close(); err != nil {
				logger.Warn("关闭浏览器会话失败", zap.Error(err))
				return
			}
			logger.Debug("浏览器会话已关闭")
		})
	}
	stop := context.AfterFunc(ctx, teardown)
	defer func() {
		stop()
		teardown()
	}()

	return fn(session)
}

func (s *attendanceService) startSession(ctx context.Context, logger *zap.Logger) (chrome.Session, error) {
	for attempt := 0; ; attempt++ {
		session, err := s.factory.NewSession(ctx)
		if err == nil {
			return session, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ErrDriverUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
		}
		if attempt >= s.startupRetries {
			return nil, err
		}
		logger.Warn("启动浏览器失败, 准备重试", zap.Int("attempt", attempt+1), zap.Error(err))

		t := time.NewTimer(s.backoff * time.Duration(attempt+1))
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}
}

// finish 设置终态, 记录日志和指标, 失败时返回统一的 *Failure
func (s *attendanceService) finish(
	ctx context.Context,
	runID string,
	tr *tracker,
	started time.Time,
	report *model.AttendanceReport,
	err error,
	logger *zap.Logger,
) error {
	elapsed := time.Since(started)
	run := &model.ScrapeRun{
		RunID:      runID,
		Driver:     s.factory.Driver(),
		StartedAt:  started.UTC(),
		DurationMs: elapsed.Milliseconds(),
	}

	var failure *Failure
	if err == nil {
		tr.set(StateSucceeded)
		run.CourseCount = len(report.Courses)
		logger.Info("获取出勤数据成功", zap.Int("courses", run.CourseCount), zap.Duration("elapsed", elapsed))
	} else {
		failure = normalize(ctx, err)
		if failure.Kind == KindTimeout {
			tr.set(StateTimedOut)
		} else {
			tr.set(StateFailed)
		}
		run.FailureKind = string(failure.Kind)
		logger.Error("获取出勤数据失败",
			zap.String("kind", string(failure.Kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(failure.Err),
		)
	}
	run.State = string(tr.get())
	s.metrics.observe(tr.get(), Kind(run.FailureKind), elapsed.Seconds())
	s.record(run, logger)

	if failure != nil {
		return failure
	}
	return nil
}

func (s *attendanceService) record(run *model.ScrapeRun, logger *zap.Logger) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Warn("服务已关闭, 丢弃运行记录")
		return
	}
	s.recording.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.recording.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.Record(ctx, run); err != nil {
			logger.Warn("写入运行记录失败", zap.Error(err))
		}
	}()
}

func (s *attendanceService) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.recording.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
