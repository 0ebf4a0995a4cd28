package crawler

import (
	"fmt"
	"sync"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/config"
	"github.com/LouYuanbo1/permitcrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
)

// Factory 根据站点名称建立适配器
type Factory struct {
	sites      []SiteConfig
	newSession collector.SessionFactory
}

// NewFactory 每个适配器在 Open 时通过 newSession 取得自己的会话
func NewFactory(newSession collector.SessionFactory) *Factory {
	return &Factory{
		sites:      Sites(),
		newSession: newSession,
	}
}

// CollySessionFactory 使用 colly 会话的工厂函数
func CollySessionFactory(cfg config.CollyConfig) collector.SessionFactory {
	return func() (collector.Session, error) {
		return collector.InitCollySession(&cfg)
	}
}

// SupportedSites 站点名称,顺序与站点表相同
func (f *Factory) SupportedSites() []string {
	names := make([]string, 0, len(f.sites))
	for _, s := range f.sites {
		names = append(names, s.Name)
	}
	return names
}

// Build 建立适配器,不发出任何网络请求
func (f *Factory) Build(site string, start, end time.Time) (Adapter, error) {
	cfg, ok := lookupSite(f.sites, site)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, site)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: 开始与结束日期不能为空", ErrValidation)
	}
	// 只比较日期,时刻不影响范围
	if normalize.Day(end).Before(normalize.Day(start)) {
		return nil, fmt.Errorf("%w: 结束日期 %s 早于开始日期 %s", ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	base := newAdapterBase(cfg, start, end, f.newSession)
	switch cfg.Family {
	case FamilyMCGBM:
		return &mcgbmAdapter{adapterBase: base}, nil
	case FamilyHsinchuCounty:
		return &hsinchuAdapter{adapterBase: base}, nil
	case FamilyKaohsiung:
		return &kaohsiungAdapter{adapterBase: base}, nil
	case FamilyNBUPIC:
		return &nbupicAdapter{adapterBase: base}, nil
	default:
		return nil, fmt.Errorf("%w: %s 的系统 %s 没有对应的适配器", ErrUnsupportedSite, site, cfg.Family)
	}
}

var defaultFactory = sync.OnceValue(func() *Factory {
	return NewFactory(CollySessionFactory(config.DefaultCollyConfig()))
})

// ListSupportedSites 使用默认配置的站点名称
func ListSupportedSites() []string {
	return defaultFactory().SupportedSites()
}

// BuildAdapter 使用默认的 colly 会话配置建立适配器
func BuildAdapter(site string, start, end time.Time) (Adapter, error) {
	return defaultFactory().Build(site, start, end)
}
