package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/attendancecrawler/param"
)

const (
	StepOpenPortal  = "open_portal"
	StepStudentLink = "student_link"
	StepUserID      = "user_id"
	StepPassword    = "password"
	StepSubmit      = "submit"
)

// Sequencer 按固定顺序完成门户登录
type Sequencer struct {
	portal param.Portal
}

func NewSequencer(portal param.Portal) *Sequencer {
	return &Sequencer{portal: portal}
}

func (s *Sequencer) Login(ctx context.Context, session chrome.Session, creds model.Credentials) error {
	err := s.step(ctx, StepOpenPortal, func(ctx context.Context) error {
		return session.Navigate(ctx, s.portal.URL)
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	steps := []struct {
		name string
		do   func(ctx context.Context) error
	}{
		{StepStudentLink, func(ctx context.Context) error { return session.Click(ctx, s.portal.StudentLink) }},
		{StepUserID, func(ctx context.Context) error { return session.Fill(ctx, s.portal.UserIDInput, creds.ID) }},
		{StepPassword, func(ctx context.Context) error { return session.Fill(ctx, s.portal.PasswordInput, creds.Secret) }},
		{StepSubmit, func(ctx context.Context) error { return session.Click(ctx, s.portal.SubmitButton) }},
	}
	for _, st := range steps {
		if err := s.step(ctx, st.name, st.do); err != nil {
			return err
		}
	}
	return settle(ctx, s.portal.SettleDelay)
}

// step 每一步单独限时. 上层 ctx 已结束时直接返回它的错误, 不算作元素超时.
func (s *Sequencer) step(ctx context.Context, name string, do func(ctx context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, s.portal.StepTimeout)
	defer cancel()

	err := do(stepCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ElementTimeoutError{Step: name, Err: err}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// settle 提交后页面由客户端脚本渲染, 没有可等待的信号, 只能固定等待
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
