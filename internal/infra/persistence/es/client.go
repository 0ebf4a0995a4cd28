package es

import (
	"context"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// TypedEsClient 以文档类型 D 读写单一索引
// 索引名称优先使用配置,未配置时使用 D.GetIndex()
type TypedEsClient[D model.Document] interface {
	Index() string
	CreateIndexWithMapping(ctx context.Context) error
	BulkIndexDocsWithID(ctx context.Context, docs []D) (int, error)
	// GetDoc 文档不存在时返回 nil, nil
	GetDoc(ctx context.Context, id string) (D, error)
	CountDocs(ctx context.Context) (int64, error)
	SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error)
}
