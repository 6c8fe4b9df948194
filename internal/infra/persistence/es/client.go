package es

import (
	"context"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
)

// TypedEsClient 单索引的文档读写, 索引名由配置决定
type TypedEsClient[D model.Document] interface {
	Index() string
	CreateIndexWithMapping(ctx context.Context) error
	IndexDocWithID(ctx context.Context, doc D) error
	CountDocs(ctx context.Context) (int64, error)
}

// RunRecorder 记录每次抓取的运行元数据
type RunRecorder interface {
	Record(ctx context.Context, run *model.ScrapeRun) error
}

// NoopRecorder 未配置 Elasticsearch 时使用
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, *model.ScrapeRun) error {
	return nil
}
