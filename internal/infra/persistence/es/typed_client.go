package es

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"go.uber.org/zap"
)

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	index  string
	logger *zap.Logger
	// 仅用于获取 mapping, 不存数据
	schemaDoc D
}

func InitTypedEsClient[D model.Document](cfg *config.Config, logger *zap.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Addresses: []string{
			cfg.Elasticsearch.Address,
		},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Elasticsearch 客户端失败: %w", err)
	}
	return &typedEsClient[D]{
		client: typedClient,
		index:  cfg.Elasticsearch.Index,
		logger: logger,
	}, nil
}

func (tec *typedEsClient[D]) Index() string {
	return tec.index
}

func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	exists, err := tec.client.Indices.Exists(tec.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("检查索引是否存在失败: %w", err)
	}
	if exists {
		tec.logger.Debug("索引已存在, 跳过创建", zap.String("index", tec.index))
		return nil
	}

	mapping := tec.schemaDoc.GetTypeMapping()
	if mapping == nil {
		_, err = tec.client.Indices.Create(tec.index).Do(ctx)
	} else {
		_, err = tec.client.Indices.Create(tec.index).Mappings(mapping).Do(ctx)
	}
	if err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	tec.logger.Info("已创建索引", zap.String("index", tec.index))
	return nil
}

func (tec *typedEsClient[D]) IndexDocWithID(ctx context.Context, doc D) error {
	_, err := tec.client.Index(tec.index).
		Id(doc.GetID()).
		Document(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("写入文档失败: %w", err)
	}
	return nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.index).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计文档数量失败: %w", err)
	}
	return resp.Count, nil
}

type esRunRecorder struct {
	client TypedEsClient[*model.ScrapeRun]
}

// InitRunRecorder 地址为空时返回 NoopRecorder, 否则确保索引存在
func InitRunRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (RunRecorder, error) {
	if cfg.Elasticsearch.Address == "" {
		logger.Info("未配置 Elasticsearch, 不记录运行日志")
		return NoopRecorder{}, nil
	}
	client, err := InitTypedEsClient[*model.ScrapeRun](cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := client.CreateIndexWithMapping(ctx); err != nil {
		return nil, err
	}
	// 能统计文档说明索引已可读写
	count, err := client.CountDocs(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("运行记录索引就绪", zap.String("index", client.Index()), zap.Int64("docs", count))
	return &esRunRecorder{client: client}, nil
}

func (r *esRunRecorder) Record(ctx context.Context, run *model.ScrapeRun) error {
	return r.client.IndexDocWithID(ctx, run)
}
