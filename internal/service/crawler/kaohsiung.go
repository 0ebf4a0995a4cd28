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
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/refine"
)

// 高雄市每次查询涵盖的天数
const kaohsiungBatchDays = 3

// kaohsiungAdapter 高雄市 JSON API,三天一批查询,再逐笔取得详情 JSON
type kaohsiungAdapter struct {
	adapterBase
}

type kaohsiungRow struct {
	Key         looseString `json:"dkey"`
	LicenseDate looseString `json:"licdate"`
}

func (a *kaohsiungAdapter) landingURL() string {
	return a.site.BaseURL + "/pages/querylic"
}

func (a *kaohsiungAdapter) Fetch(ctx context.Context, progress ProgressFunc) iter.Seq[entity.PermitItem] {
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

		total, step := normalize.TotalDays(a.start, a.end, kaohsiungBatchDays), 0
		for from := range normalize.DateRange(a.start, a.end, kaohsiungBatchDays) {
			if ctx.Err() != nil {
				return
			}
			step++
			to := from.AddDate(0, 0, kaohsiungBatchDays-1)
			if to.After(a.end) {
				to = a.end
			}
			progress.logf("正在爬取 %s %s ~ %s (%d/%d)...", a.site.Name,
				from.Format(time.DateOnly), to.Format(time.DateOnly), step, total)

			rows, err := a.query(ctx, from, to)
			if err != nil {
				progress.logf("%s 查询 %s ~ %s 失败: %v", a.site.Name,
					from.Format(time.DateOnly), to.Format(time.DateOnly), err)
				continue
			}
			for _, row := range rows {
				key := string(row.Key)
				d, ok := normalize.ParseLocalDate(string(row.LicenseDate))
				if key == "" || !ok {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				rec, ok, err := a.detail(ctx, key)
				if err != nil {
					progress.logf("%s 取得详细资料失败 (%s): %v", a.site.Name, key, err)
					continue
				}
				if !ok {
					continue
				}
				if !a.emit(yield, entity.PermitItem{Date: d, SourceID: key, Record: rec}) {
					return
				}
			}
		}
	}
}

func (a *kaohsiungAdapter) query(ctx context.Context, from, to time.Time) ([]kaohsiungRow, error) {
	form := url.Values{
		"qrytyp":       {"5"},
		"lic_yy":       {""},
		"lic_kind":     {""},
		"lic_no1":      {""},
		"p01_name":     {""},
		"addradr":      {""},
		"date_s":       {normalize.FormatLocalDate(from, false)},
		"date_e":       {normalize.FormatLocalDate(to, false)},
		"dist":         {""},
		"section":      {""},
		"road_no1":     {""},
		"road_no2":     {""},
		"yy":           {""},
		"mon":          {""},
		"dd":           {""},
		"reg_yy":       {""},
		"reg_no":       {""},
		"reg_nochkcod": {""},
	}
	body, err := a.session.PostForm(ctx, a.site.BaseURL+"/pages/jsapi/querylic", form, a.headers())
	if err != nil {
		return nil, err
	}
	var rows []kaohsiungRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return rows, nil
}

func (a *kaohsiungAdapter) detail(ctx context.Context, key string) (rec model.PermitRecord, ok bool, err error) {
	body, err := a.session.PostForm(ctx, a.site.BaseURL+"/pages/jsapi/getLicenseInfo", url.Values{"key": {key}}, a.headers())
	if err != nil {
		return rec, false, err
	}
	var detail map[string]any
	if err := json.Unmarshal(body, &detail); err != nil {
		return rec, false, fmt.Errorf("%w: %v", ErrParse, err)
	}
	rec, ok = refine.Kaohsiung(detail, key)
	return rec, ok, nil
}

func (a *kaohsiungAdapter) headers() http.Header {
	return a.ajaxHeaders("*/*", a.landingURL())
}
