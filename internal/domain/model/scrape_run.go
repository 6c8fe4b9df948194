package model

import (
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// ScrapeRun 一次抓取的运行记录, 只包含运行元数据, 不含账号和出勤数据
type ScrapeRun struct {
	RunID       string    `json:"run_id"`
	Driver      string    `json:"driver"`
	State       string    `json:"state"`
	FailureKind string    `json:"failure_kind,omitempty"`
	CourseCount int       `json:"course_count"`
	DurationMs  int64     `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
}

func (r *ScrapeRun) GetID() string {
	return r.RunID
}

func (r *ScrapeRun) GetTypeMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"run_id":       types.NewKeywordProperty(),
			"driver":       types.NewKeywordProperty(),
			"state":        types.NewKeywordProperty(),
			"failure_kind": types.NewKeywordProperty(),
			"course_count": types.NewIntegerNumberProperty(),
			"duration_ms":  types.NewLongNumberProperty(),
			"started_at":   types.NewDateProperty(),
		},
	}
}
