// Package crawler 实现各站点的爬取适配器
// 适配器按日期或分页顺序发出请求,逐笔产出整理好的执照资料
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
)

// ProgressFunc 接收一行完整的进度讯息,可以为 nil
type ProgressFunc func(msg string)

func (p ProgressFunc) logf(format string, args ...any) {
	if p != nil {
		p(fmt.Sprintf(format, args...))
	}
}

// Adapter 一个站点一次爬取的适配器
// Open 建立会话,Fetch 只能调用一次,Close 释放会话
type Adapter interface {
	Site() string
	Open(ctx context.Context) error
	Fetch(ctx context.Context, progress ProgressFunc) iter.Seq[entity.PermitItem]
	Total() int
	Close() error
}

// Run 打开适配器,把每笔资料交给 fn,结束时一定关闭
// fn 返回错误时停止爬取;ctx 取消时返回 ctx.Err()
func Run(ctx context.Context, a Adapter, progress ProgressFunc, fn func(entity.PermitItem) error) (err error) {
	if err := a.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for item := range a.Fetch(ctx, progress) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// adapterBase 各站点适配器共用的会话与计数
type adapterBase struct {
	site       SiteConfig
	start, end time.Time
	newSession collector.SessionFactory
	session    collector.Session
	fetched    bool
	total      int
}

func newAdapterBase(site SiteConfig, start, end time.Time, newSession collector.SessionFactory) adapterBase {
	return adapterBase{
		site:       site,
		start:      normalize.Day(start),
		end:        normalize.Day(end),
		newSession: newSession,
	}
}

func (b *adapterBase) Site() string {
	return b.site.Name
}

// Total 目前为止产出的笔数
func (b *adapterBase) Total() int {
	return b.total
}

func (b *adapterBase) Open(ctx context.Context) error {
	if b.session != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := b.newSession()
	if err != nil {
		return fmt.Errorf("%w: 创建会话失败: %v", ErrTransport, err)
	}
	b.session = s
	return nil
}

func (b *adapterBase) Close() error {
	if b.session == nil {
		return nil
	}
	err := b.session.Close()
	b.session = nil
	return err
}

// begin 检查会话状态,同一个实例只允许爬取一次
func (b *adapterBase) begin(progress ProgressFunc) bool {
	if b.fetched {
		progress.logf("%s 的会话已经使用过,请建立新的适配器再爬取", b.site.Name)
		return false
	}
	if b.session == nil {
		progress.logf("%s 尚未建立会话,请先调用 Open", b.site.Name)
		return false
	}
	b.fetched = true
	return true
}

func (b *adapterBase) finish(progress ProgressFunc) {
	progress.logf("%s 爬取完成,共 %d 笔资料", b.site.Name, b.total)
}

// emit 产出一笔资料,返回 false 表示调用方已停止迭代
func (b *adapterBase) emit(yield func(entity.PermitItem) bool, item entity.PermitItem) bool {
	item.Site = b.site.Name
	b.total++
	return yield(item)
}

// inWindow 日期是否落在 [start, end] 内
func (b *adapterBase) inWindow(d time.Time) bool {
	d = normalize.Day(d)
	return !d.Before(b.start) && !d.After(b.end)
}

func (b *adapterBase) ajaxHeaders(accept, referer string) http.Header {
	h := http.Header{}
	h.Set("Accept", accept)
	h.Set("Origin", originOf(b.site.BaseURL))
	h.Set("Referer", referer)
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}

// originOf 取出 scheme://host 部分
func originOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Scheme + "://" + u.Host
}

// looseString 接受 JSON 字符串或数字
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}
