package model

import (
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// Document 写入 Elasticsearch 的文档需要实现的接口, 索引名由配置决定
type Document interface {
	GetID() string
	GetTypeMapping() *types.TypeMapping
}
