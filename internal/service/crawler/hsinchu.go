package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
	"github.com/LouYuanbo1/permitcrawler/internal/refine"
)

// hsinchuAdapter 新竹县,每天一次 JSONP 查询,再逐笔取得 HTML 详情页
type hsinchuAdapter struct {
	adapterBase
}

type hsinchuRow struct {
	IndexKey    looseString `json:"index_key"`
	LicenseDate looseString `json:"identify_lice_date"`
}

func (a *hsinchuAdapter) landingURL() string {
	return a.site.BaseURL + "/preLoginFormAction.do"
}

func (a *hsinchuAdapter) Fetch(ctx context.Context, progress ProgressFunc) iter.Seq[entity.PermitItem] {
	return func(yield func(entity.PermitItem) bool) {
		if !a.begin(progress) {
			return
		}
		defer a.finish(progress)

		progress.logf("正在初始化 %s 连线...", a.site.Name)
		if _, err := a.session.Get(ctx, a.landingURL(), nil); err != nil {
			progress.logf("%s 初始化连线失败: %v", a.site.Name, err)
			return
		}

		total, step := normalize.TotalDays(a.start, a.end, 1), 0
		for day := range normalize.DateRange(a.start, a.end, 1) {
			if ctx.Err() != nil {
				return
			}
			step++
			progress.logf("正在爬取 %s %s (%d/%d)...", a.site.Name, day.Format(time.DateOnly), step, total)

			rows, err := a.query(ctx, day)
			if err != nil {
				progress.logf("%s 查询 %s 失败: %v", a.site.Name, day.Format(time.DateOnly), err)
				continue
			}
			for _, row := range rows {
				key := string(row.IndexKey)
				if key == "" {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				item, ok, err := a.detail(ctx, key)
				if err != nil {
					progress.logf("%s 取得详细资料失败 (%s): %v", a.site.Name, key, err)
					continue
				}
				if !ok {
					continue
				}
				item.Date = day
				if d, ok := normalize.ParseLocalDate(string(row.LicenseDate)); ok {
					item.Date = d
				}
				if !a.emit(yield, item) {
					return
				}
			}
		}
	}
}

func (a *hsinchuAdapter) query(ctx context.Context, day time.Time) ([]hsinchuRow, error) {
	form := url.Values{
		"_search":   {"false"},
		"nd":        {strconv.FormatInt(time.Now().UnixMilli(), 10)},
		"rows":      {"200"},
		"page":      {"1"},
		"sidx":      {""},
		"sord":      {"asc"},
		"inputcode": {"0"},
		"code":      {"0"},
		"qtype":     {"5"},
		"regdat":    {normalize.FormatLocalDate(day, false)},
	}
	hdr := a.ajaxHeaders("text/javascript, application/javascript, */*; q=0.01", a.landingURL())
	body, err := a.session.PostForm(ctx, a.site.BaseURL+"/pages/api/getLicdata?callback=ok", form, hdr)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Rows []hsinchuRow `json:"rows"`
	}
	if err := json.Unmarshal(unwrapJSONP(body, "ok"), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return resp.Rows, nil
}

func (a *hsinchuAdapter) detail(ctx context.Context, key string) (entity.PermitItem, bool, error) {
	hdr := a.ajaxHeaders("text/html,application/xhtml+xml,application/xml;q=0.9", a.landingURL())
	detailURL := a.site.BaseURL + "/pages/queryInfoAction.do?INDEX_KEY=" + url.QueryEscape(key)
	body, err := a.session.PostForm(ctx, detailURL, url.Values{"key": {key}}, hdr)
	if err != nil {
		return entity.PermitItem{}, false, err
	}
	rec, ok := refine.HsinchuCounty(parser.ParseNested(string(body)), key)
	return entity.PermitItem{SourceID: key, Record: rec}, ok, nil
}

// unwrapJSONP 去掉 callback( ... ) 包装,不是 JSONP 时原样返回
func unwrapJSONP(body []byte, callback string) []byte {
	trimmed := bytes.TrimSpace(body)
	trimmed = bytes.TrimSuffix(trimmed, []byte(";"))
	prefix := []byte(callback + "(")
	if bytes.HasPrefix(trimmed, prefix) && bytes.HasSuffix(trimmed, []byte(")")) {
		return trimmed[len(prefix) : len(trimmed)-1]
	}
	return body
}
