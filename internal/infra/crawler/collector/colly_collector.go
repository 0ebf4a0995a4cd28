package collector

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/LouYuanbo1/permitcrawler/internal/config"
	"github.com/gocolly/colly/v2"
)

const (
	bodyKey   = "body"
	statusKey = "status"
)

type collySession struct {
	colly   *colly.Collector
	headers map[string]string
	ctx     *boundContext
	closed  bool
}

// InitCollySession 按配置创建一个新的会话,cookie 只在本会话内共享
func InitCollySession(cfg *config.CollyConfig) (Session, error) {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.MaxBodySize = cfg.MaxBodySize

	bound := &boundContext{ctx: context.Background()}
	c.WithTransport(&contextTransport{
		bound: bound,
		base: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		},
	})
	c.SetRequestTimeout(cfg.Timeout())

	if cfg.EnableCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("创建cookie jar失败: %w", err)
		}
		c.SetCookieJar(jar)
	} else {
		c.DisableCookies()
	}

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(bodyKey, r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(statusKey, r.StatusCode)
		}
	})

	return &collySession{
		colly:   c,
		headers: cfg.Headers,
		ctx:     bound,
	}, nil
}

func (s *collySession) Get(ctx context.Context, rawURL string, hdr http.Header) ([]byte, error) {
	return s.do(ctx, http.MethodGet, rawURL, nil, hdr)
}

func (s *collySession) PostForm(ctx context.Context, rawURL string, form url.Values, hdr http.Header) ([]byte, error) {
	h := hdr.Clone()
	if h == nil {
		h = http.Header{}
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	return s.do(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), h)
}

func (s *collySession) do(ctx context.Context, method, rawURL string, body io.Reader, hdr http.Header) ([]byte, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: 会话已关闭", ErrTransport)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := http.Header{}
	for k, v := range s.headers {
		h.Set(k, v)
	}
	for k, vs := range hdr {
		h[k] = vs
	}

	s.ctx.set(ctx)
	defer s.ctx.set(context.Background())

	reqCtx := colly.NewContext()
	if err := s.colly.Request(method, rawURL, body, reqCtx, h); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if status, ok := reqCtx.GetAny(statusKey).(int); ok && status != 0 {
			return nil, fmt.Errorf("%w: %s %s 状态码 %d: %v", ErrTransport, method, rawURL, status, err)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, rawURL, err)
	}

	data, _ := reqCtx.GetAny(bodyKey).([]byte)
	return data, nil
}

func (s *collySession) Close() error {
	s.closed = true
	return nil
}

// boundContext 当前请求的 context,会话按顺序使用所以同一时间只有一个
type boundContext struct {
	mu  sync.Mutex
	ctx context.Context
}

func (b *boundContext) set(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
}

func (b *boundContext) get() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// contextTransport 让 colly 发出的请求随调用方的 context 取消
type contextTransport struct {
	bound *boundContext
	base  http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.bound.get()))
}
