package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool closed")

type job struct {
	ctx context.Context
	run func(ctx context.Context)
}

// Pool 固定数量的 worker 从同一个无缓冲通道取任务.
// 所有 worker 都忙时 Submit 阻塞排队, 不会拒绝请求.
type Pool struct {
	size   int
	jobs   chan job
	quit   chan struct{}
	wg     sync.WaitGroup
	busy   atomic.Int64
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewPool(size int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size:   size,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
		logger: logger,
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := range p.size {
			p.wg.Add(1)
			go p.worker(i)
		}
		p.logger.Info("worker 池已启动", zap.Int("size", p.size))
	})
}

// Shutdown 停止接收新任务后立即返回, 正在执行的任务继续跑完
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.logger.Info("worker 池停止接收任务", zap.Int64("busy", p.busy.Load()))
	})
}

// Wait 等待所有 worker 退出, 只应在 Shutdown 之后调用
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Size() int {
	return p.size
}

// Busy 正在执行任务的 worker 数量
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			p.logger.Debug("worker 退出", zap.Int("worker", id))
			return
		case j := <-p.jobs:
			// 排队期间调用方已经放弃
			if j.ctx.Err() != nil {
				p.logger.Debug("跳过已取消的任务", zap.Int("worker", id))
				continue
			}
			p.busy.Add(1)
			j.run(j.ctx)
			p.busy.Add(-1)
		}
	}
}

type result[T any] struct {
	val T
	err error
}

// Submit 把 fn 交给池中的 worker 执行并等待结果.
// ctx 结束时立即返回 ctx 的错误, fn 仍在 worker 上收到同一个 ctx 并自行收尾.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	done := make(chan result[T], 1)
	j := job{
		ctx: ctx,
		run: func(ctx context.Context) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("任务 panic", zap.Any("panic", r), zap.Stack("stack"))
					done <- result[T]{err: fmt.Errorf("任务 panic: %v", r)}
				}
			}()
			v, err := fn(ctx)
			done <- result[T]{val: v, err: err}
		},
	}

	select {
	case <-p.quit:
		return zero, ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-p.quit:
		return zero, ErrPoolClosed
	}

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
