// Package collector 提供同步的 HTTP 会话,每个站点适配器持有一个
package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrTransport 网络错误或非 2xx 响应
var ErrTransport = errors.New("transport error")

// Session 带 cookie 的同步请求会话,不可并发使用
type Session interface {
	Get(ctx context.Context, url string, hdr http.Header) ([]byte, error)
	PostForm(ctx context.Context, url string, form url.Values, hdr http.Header) ([]byte, error)
	Close() error
}

// SessionFactory 由适配器在 Open 时调用
type SessionFactory func() (Session, error)
