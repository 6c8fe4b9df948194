package attendance

import (
	"context"
	"fmt"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/entity"
	"github.com/LouYuanbo1/attendancecrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/attendancecrawler/param"
)

type Extractor struct {
	portal param.Portal
}

func NewExtractor(portal param.Portal) *Extractor {
	return &Extractor{portal: portal}
}

// Extract 先等出勤率再等课程名, 数量不一致不算错误
func (e *Extractor) Extract(ctx context.Context, session chrome.Session) (*entity.RawAttendance, error) {
	percents, err := e.texts(ctx, session, "attendance_rate", e.portal.AttendanceRate)
	if err != nil {
		return nil, err
	}
	names, err := e.texts(ctx, session, "course_names", e.portal.CourseNames)
	if err != nil {
		return nil, err
	}
	return &entity.RawAttendance{
		Names:    names,
		Percents: percents,
	}, nil
}

func (e *Extractor) texts(ctx context.Context, session chrome.Session, field, locator string) ([]string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.portal.StepTimeout)
	defer cancel()

	texts, err := session.Texts(waitCtx, locator)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, field, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s: no nodes", ErrExtract, field)
	}
	return texts, nil
}
