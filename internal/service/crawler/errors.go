package crawler

import (
	"errors"

	"github.com/LouYuanbo1/permitcrawler/internal/infra/crawler/collector"
)

var (
	// ErrTransport 网络错误或非 2xx 响应
	ErrTransport = collector.ErrTransport
	// ErrParse 响应内容无法解析
	ErrParse = errors.New("parse error")
	// ErrAuthentication 登录页缺少后续请求需要的 token
	ErrAuthentication = errors.New("authentication error")
	// ErrUnsupportedSite 站点名称不在站点表中
	ErrUnsupportedSite = errors.New("unsupported site")
	// ErrValidation 参数不合法,例如结束日期早于开始日期
	ErrValidation = errors.New("validation error")
)
