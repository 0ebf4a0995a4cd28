package crawler

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/infra/crawler/collector"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	URL    string
	Form   url.Values
	Header http.Header
}

// fakeSession 以 handle 模拟站点响应,并记录所有请求
type fakeSession struct {
	handle   func(req recordedRequest) ([]byte, error)
	requests []recordedRequest
	closed   bool
}

func (f *fakeSession) Get(ctx context.Context, u string, hdr http.Header) ([]byte, error) {
	return f.do(ctx, recordedRequest{Method: http.MethodGet, URL: u, Header: hdr})
}

func (f *fakeSession) PostForm(ctx context.Context, u string, form url.Values, hdr http.Header) ([]byte, error) {
	return f.do(ctx, recordedRequest{Method: http.MethodPost, URL: u, Form: form, Header: hdr})
}

func (f *fakeSession) do(ctx context.Context, req recordedRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.requests = append(f.requests, req)
	return f.handle(req)
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSession) requestsTo(path string) []recordedRequest {
	var out []recordedRequest
	for _, r := range f.requests {
		if strings.Contains(r.URL, path) {
			out = append(out, r)
		}
	}
	return out
}

func newFakeFactory(handle func(req recordedRequest) ([]byte, error)) (*Factory, *fakeSession) {
	fake := &fakeSession{handle: handle}
	return NewFactory(func() (collector.Session, error) { return fake, nil }), fake
}

// progressLog 线程安全地收集进度讯息
type progressLog struct {
	mu    sync.Mutex
	lines []string
}

func (p *progressLog) add(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, msg)
}

func (p *progressLog) containing(s string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, l := range p.lines {
		if strings.Contains(l, s) {
			out = append(out, l)
		}
	}
	return out
}

// collect 以 Run 跑完整个适配器,返回所有资料
func collect(t *testing.T, a Adapter, log *progressLog) []entity.PermitItem {
	t.Helper()
	var items []entity.PermitItem
	require.NoError(t, Run(context.Background(), a, log.add, func(it entity.PermitItem) error {
		items = append(items, it)
		return nil
	}))
	return items
}

func sourceIDs(items []entity.PermitItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.SourceID)
	}
	slices.Sort(ids)
	return ids
}
