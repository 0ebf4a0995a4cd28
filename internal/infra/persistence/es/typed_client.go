package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/config"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/logger"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// ErrBulkIndex 批量写入时有文档失败
var ErrBulkIndex = errors.New("批量写入索引失败")

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	index  string
	logger *logger.Logger
	// 仅用于取得索引名称与映射,不存放资料
	schemaDoc D
}

func InitTypedEsClient[D model.Document](cfg *config.ElasticsearchConfig, log *logger.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Addresses: []string{cfg.Address},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			// 跳过TLS验证（仅在开发环境中使用）
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Elasticsearch 客户端失败: %w", err)
	}
	tec := &typedEsClient[D]{client: typedClient, index: cfg.Index, logger: log}
	if tec.index == "" {
		tec.index = tec.schemaDoc.GetIndex()
	}
	if tec.logger == nil {
		tec.logger = logger.NewLogger("info")
	}
	return tec, nil
}

func (tec *typedEsClient[D]) Index() string {
	return tec.index
}

// CreateIndexWithMapping 索引已存在时直接返回
func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	exists, err := tec.client.Indices.Exists(tec.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("检查索引 %s 是否存在失败: %w", tec.index, err)
	}
	if exists {
		tec.logger.Debug("索引已存在,跳过建立", "index", tec.index)
		return nil
	}

	req := tec.client.Indices.Create(tec.index)
	if mapping := tec.schemaDoc.GetTypeMapping(); mapping != nil {
		req = req.Mappings(mapping)
	}
	if _, err := req.Do(ctx); err != nil {
		return fmt.Errorf("建立索引 %s 失败: %w", tec.index, err)
	}
	tec.logger.Info("已建立索引", "index", tec.index)
	return nil
}

// BulkIndexDocsWithID 以文档 ID 批量写入,同一 ID 重复写入会覆盖
// 返回成功写入的笔数;有任何文档失败时返回 ErrBulkIndex
func (tec *typedEsClient[D]) BulkIndexDocsWithID(ctx context.Context, docs []D) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	var failed atomic.Int64
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.index,
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.logger.Error("批量写入出错", "index", tec.index, "error", err)
		},
	})
	if err != nil {
		return 0, fmt.Errorf("建立批量写入器失败: %w", err)
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			failed.Add(1)
			tec.logger.Error("文档序列化失败", "id", doc.GetID(), "error", err)
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.GetID(),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					tec.logger.Error("文档写入失败", "id", item.DocumentID, "error", err)
				} else {
					tec.logger.Error("文档写入失败", "id", item.DocumentID, "reason", res.Error.Reason)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			tec.logger.Error("加入批量写入失败", "id", doc.GetID(), "error", err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("关闭批量写入器失败: %w", err)
	}

	stats := bi.Stats()
	tec.logger.Debug("批量写入完成", "index", tec.index, "indexed", stats.NumIndexed, "failed", stats.NumFailed)
	if n := failed.Load(); n > 0 {
		return int(stats.NumIndexed), fmt.Errorf("%w: %d 笔失败", ErrBulkIndex, n)
	}
	return int(stats.NumIndexed), nil
}

func (tec *typedEsClient[D]) GetDoc(ctx context.Context, id string) (D, error) {
	resp, err := tec.client.Get(tec.index, id).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取文档 %s 失败: %w", id, err)
	}
	if !resp.Found {
		return nil, nil
	}
	var doc D
	if err := json.Unmarshal(resp.Source_, &doc); err != nil {
		return nil, fmt.Errorf("解析文档 %s 失败: %w", id, err)
	}
	return doc, nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.index).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计索引 %s 失败: %w", tec.index, err)
	}
	return resp.Count, nil
}

// SearchDoc 返回 from 起的 size 笔结果与命中总数,无法解析的命中会被略过
func (tec *typedEsClient[D]) SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error) {
	resp, err := tec.client.Search().
		Index(tec.index).
		Query(query).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("搜索失败: %w", err)
	}

	results := make([]D, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc D
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			tec.logger.Warn("解析搜索结果失败", "index", tec.index, "error", err)
			continue
		}
		results = append(results, doc)
	}
	var total int64
	if resp.Hits.Total != nil {
		total = resp.Hits.Total.Value
	}
	return results, total, nil
}
