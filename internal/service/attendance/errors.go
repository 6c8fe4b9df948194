package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
)

// GenericMessage 所有失败对外只返回这一句, 具体原因只写服务端日志
const GenericMessage = "Failed to fetch attendance data. Please try again later."

var (
	ErrDriverUnavailable = chrome.ErrDriverUnavailable
	ErrNavigation        = errors.New("portal navigation failed")
	ErrExtract           = errors.New("attendance fields not found")
	ErrEmptyResult       = errors.New("no attendance values")
	ErrTimeout           = errors.New("attendance request timed out")
	ErrInternal          = errors.New("internal error")
)

// ElementTimeoutError 登录流程中某一步在限定时间内没有等到可操作的元素
type ElementTimeoutError struct {
	Step string
	Err  error
}

func (e *ElementTimeoutError) Error() string {
	return fmt.Sprintf("step %s: element not actionable before timeout", e.Step)
}

func (e *ElementTimeoutError) Unwrap() error {
	return e.Err
}

type Kind string

const (
	KindDriverUnavailable Kind = "driver_unavailable"
	KindNavigation        Kind = "navigation"
	KindElementTimeout    Kind = "element_timeout"
	KindExtract           Kind = "extract"
	KindEmptyResult       Kind = "empty_result"
	KindTimeout           Kind = "timeout"
	KindInternal          Kind = "internal"
)

// Failure 对调用方暴露的唯一错误类型
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func Classify(err error) Kind {
	var ete *ElementTimeoutError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.As(err, &ete):
		return KindElementTimeout
	case errors.Is(err, ErrDriverUnavailable):
		return KindDriverUnavailable
	case errors.Is(err, ErrNavigation):
		return KindNavigation
	case errors.Is(err, ErrExtract):
		return KindExtract
	case errors.Is(err, ErrEmptyResult):
		return KindEmptyResult
	default:
		return KindInternal
	}
}

// normalize 整体超时优先判定为 ErrTimeout, 其他错误按类型归类
func normalize(ctx context.Context, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	kind := Classify(err)
	if kind == KindInternal && !errors.Is(err, ErrInternal) {
		err = fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return &Failure{
		Kind:    kind,
		Message: GenericMessage,
		Err:     err,
	}
}
