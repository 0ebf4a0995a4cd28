// Package batch 并行爬取多个站点,每次执行输出到独立的目录
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/config"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/infra/persistence/xlsx"
	"github.com/LouYuanbo1/permitcrawler/internal/logger"
	"github.com/LouYuanbo1/permitcrawler/internal/service/crawler"
	"github.com/LouYuanbo1/permitcrawler/param"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidParams 站点为空或日期范围不合法,属于 crawler.ErrValidation
var ErrInvalidParams = fmt.Errorf("%w: 爬取参数不合法", crawler.ErrValidation)

// Builder 建立单一站点的适配器,crawler.Factory 实现了这个接口
type Builder interface {
	Build(site string, start, end time.Time) (crawler.Adapter, error)
}

// Indexer 接收爬取结果的索引,es.TypedEsClient[*model.PermitDoc] 实现了这个接口
type Indexer interface {
	CreateIndexWithMapping(ctx context.Context) error
	BulkIndexDocsWithID(ctx context.Context, docs []*model.PermitDoc) (int, error)
}

// Result 单一站点的爬取结果
// Err 不为空时 Files 仍然包含已经写出的档案
type Result struct {
	Site    string
	Files   map[model.PermitType]string
	Stats   map[model.PermitType]int
	Records int
	Indexed int
	Logs    []string
	Err     error
}

// Report 一次批量执行的结果,Results 的顺序与请求的站点顺序相同
type Report struct {
	RunID   string
	Dir     string
	Results []Result
}

// Failed 发生错误的站点
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

type Runner struct {
	builder     Builder
	outputDir   string
	parallelism int
	batchSize   int
	indexer     Indexer
	logger      *logger.Logger
	now         func() time.Time
	newRunID    func() string
}

type Option func(*Runner)

// WithIndexer 每个站点的资料同时写入索引
func WithIndexer(idx Indexer) Option {
	return func(r *Runner) {
		r.indexer = idx
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock 替换进度讯息的时间来源
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithRunID 替换执行编号的产生方式,默认为 UUID
func WithRunID(newRunID func() string) Option {
	return func(r *Runner) {
		r.newRunID = newRunID
	}
}

func NewRunner(builder Builder, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		builder:     builder,
		outputDir:   cfg.Output.Dir,
		parallelism: max(cfg.Crawl.Parallelism, 1),
		batchSize:   max(cfg.Crawl.IndexBatchSize, 1),
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.NewLogger(cfg.Logging.Level)
	}
	return r
}

// Run 先为所有站点建立适配器,任何站点不支持或日期不合法时立即返回错误
// 之后各站点并行爬取,单一站点失败只记录在它的 Result 中
func (r *Runner) Run(ctx context.Context, p param.Crawl) (*Report, error) {
	if !p.IsValid() {
		return nil, ErrInvalidParams
	}
	sites := p.UniqueSites()
	adapters := make([]crawler.Adapter, 0, len(sites))
	for _, site := range sites {
		a, err := r.builder.Build(site, p.Start, p.End)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	if r.indexer != nil {
		if err := r.indexer.CreateIndexWithMapping(ctx); err != nil {
			return nil, fmt.Errorf("准备索引失败: %w", err)
		}
	}

	report := &Report{RunID: r.newRunID()}
	report.Dir = filepath.Join(r.outputDir, report.RunID)
	if err := os.MkdirAll(report.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建执行目录失败: %w", err)
	}
	runLog := r.logger.With("run", report.RunID)
	runLog.Info("开始批量爬取", "sites", len(adapters), "dir", report.Dir,
		"start", p.Start.Format(time.DateOnly), "end", p.End.Format(time.DateOnly))

	report.Results = make([]Result, len(adapters))
	var g errgroup.Group
	g.SetLimit(r.parallelism)
	for i, a := range adapters {
		g.Go(func() error {
			report.Results[i] = r.crawlSite(ctx, a, report.Dir, runLog)
			return nil
		})
	}
	_ = g.Wait()

	runLog.Info("批量爬取结束", "failed", len(report.Failed()))
	return report, nil
}

func (r *Runner) crawlSite(ctx context.Context, a crawler.Adapter, dir string, runLog *logger.Logger) (res Result) {
	res.Site = a.Site()
	siteLog := runLog.With("site", res.Site)
	logs := newLogBuffer(MaxLogLines, r.now)
	progress := func(msg string) {
		logs.add(msg)
		siteLog.Info(msg)
	}
	defer func() {
		res.Logs = logs.snapshot()
	}()

	writer, err := xlsx.NewWriter(res.Site, dir)
	if err != nil {
		res.Err = err
		return res
	}

	sink := &indexSink{indexer: r.indexer, size: r.batchSize}
	crawlErr := crawler.Run(ctx, a, progress, func(item entity.PermitItem) error {
		writer.Write(item)
		sink.add(ctx, &item)
		return nil
	})
	res.Records = a.Total()

	// 取消后仍然写出已取得的资料
	sink.flush(context.WithoutCancel(ctx))
	res.Indexed = sink.indexed
	files, saveErr := writer.Save()
	res.Files = files
	res.Stats = writer.Stats()

	res.Err = errors.Join(crawlErr, sink.err, saveErr)
	if res.Err != nil {
		siteLog.Error("站点爬取失败", "error", res.Err)
	}
	return res
}

// indexSink 攒满一批后写入索引,indexer 为 nil 时不做任何事
// 写入失败不会中断爬取,错误累积在 err 中
type indexSink struct {
	indexer Indexer
	size    int
	pending []*model.PermitDoc
	indexed int
	err     error
}

func (s *indexSink) add(ctx context.Context, item *entity.PermitItem) {
	if s.indexer == nil {
		return
	}
	s.pending = append(s.pending, item.ToDocument())
	if len(s.pending) >= s.size {
		s.flush(ctx)
	}
}

func (s *indexSink) flush(ctx context.Context) {
	if s.indexer == nil || len(s.pending) == 0 {
		return
	}
	n, err := s.indexer.BulkIndexDocsWithID(ctx, s.pending)
	s.indexed += n
	s.pending = nil
	if err != nil {
		s.err = errors.Join(s.err, err)
	}
}
