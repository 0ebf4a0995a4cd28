package crawler

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
	"github.com/LouYuanbo1/permitcrawler/internal/refine"
)

var (
	queryIDPattern  = regexp.MustCompile(`name="frm_query_para_PRIMARYID"\s+value="([^"]+)"`)
	pkeyPattern     = regexp.MustCompile(`sidjphumrsqf="([^"]+)"`)
	indexKeyPattern = regexp.MustCompile(`run_button\('([^']+)'`)
)

// 扩大后的结果页笔数
const nbupicExpandSize = "200"

// nbupicAdapter 国土署 NBUPIC 系统,需要先从首页取得两个 token
type nbupicAdapter struct {
	adapterBase
	queryID string
	pkey    string
}

func (a *nbupicAdapter) landingURL() string {
	return fmt.Sprintf("%s/index.jsp?organ=%s&QryType=5", a.site.BaseURL, url.QueryEscape(a.site.Organ))
}

func (a *nbupicAdapter) Fetch(ctx context.Context, progress ProgressFunc) iter.Seq[entity.PermitItem] {
	return func(yield func(entity.PermitItem) bool) {
		if !a.begin(progress) {
			return
		}
		defer a.finish(progress)

		progress.logf("正在初始化 %s 连线...", a.site.Name)
		if err := a.authenticate(ctx); err != nil {
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

			keys, err := a.query(ctx, day)
			if err != nil {
				progress.logf("%s 查询 %s 失败: %v", a.site.Name, day.Format(time.DateOnly), err)
				continue
			}
			for _, key := range keys {
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
				if !a.emit(yield, entity.PermitItem{Date: day, SourceID: key, Record: rec}) {
					return
				}
			}
		}
	}
}

// authenticate 读取首页中的查询编号与 Nbupicpkey
func (a *nbupicAdapter) authenticate(ctx context.Context) error {
	hdr := http.Header{}
	hdr.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9")
	hdr.Set("Referer", "https://www.google.com/")
	body, err := a.session.Get(ctx, a.landingURL(), hdr)
	if err != nil {
		return err
	}

	queryID := queryIDPattern.FindSubmatch(body)
	pkey := pkeyPattern.FindSubmatch(body)
	if queryID == nil || pkey == nil {
		return fmt.Errorf("%w: 首页缺少 frm_query_para_PRIMARYID 或 sidjphumrsqf", ErrAuthentication)
	}
	a.queryID = string(queryID[1])
	a.pkey = string(pkey[1])
	return nil
}

func (a *nbupicAdapter) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Origin", originOf(a.site.BaseURL))
	h.Set("Referer", a.landingURL())
	h.Set("Nbupicpkey", a.pkey)
	return h
}

// query 先送出当天的查询,再把结果页扩大到 200 笔,返回其中的 IndexKey
func (a *nbupicAdapter) query(ctx context.Context, day time.Time) ([]string, error) {
	form := url.Values{
		"Qry_LICENSING_UNIT":            {a.site.Organ},
		"Qry_QryType":                   {"5"},
		"Qry_license_yy":                {""},
		"RC_Qry_regdat":                 {normalize.FormatLocalDate(day, true)},
		"Qry_regdat":                    {day.Format("20060102")},
		"Qry_imageCodetxt":              {""},
		"frm_query_para_PRIMARYID":      {a.queryID},
		"frm_query_para_sortKeys":       {"null"},
		"fromajax":                      {"true"},
		"QueryParamButton_executeQuery": {"執行查詢"},
	}
	hdr := a.headers()
	listURL := a.site.BaseURL + "/nbupic_lst.jsp?queryparammode=true"
	if _, err := a.session.PostForm(ctx, listURL, form, hdr); err != nil {
		return nil, err
	}

	expandURL := fmt.Sprintf("%s&&cur_pagesize=%s&frm_query_para_PRIMARYID=%s",
		listURL, nbupicExpandSize, url.QueryEscape(a.queryID))
	body, err := a.session.PostForm(ctx, expandURL, form, hdr)
	if err != nil {
		return nil, err
	}

	matches := indexKeyPattern.FindAllSubmatch(body, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, string(m[1]))
	}
	return keys, nil
}

// detail 取得执照资料,再以进度页补上五个进度栏位
func (a *nbupicAdapter) detail(ctx context.Context, key string) (model.PermitRecord, bool, error) {
	form := url.Values{
		"IndexKey":     {key},
		"organ":        {a.site.Organ},
		"responseText": {"true"},
	}
	hdr := a.headers()
	body, err := a.session.PostForm(ctx, a.site.BaseURL+"/licInfo.jsp?", form, hdr)
	if err != nil {
		return model.PermitRecord{}, false, err
	}
	rec, ok := refine.NBUPIC(parser.ParseHeaderBlocks(string(body)), key)
	if !ok {
		return rec, false, nil
	}

	body, err = a.session.PostForm(ctx, a.site.BaseURL+"/schedule.jsp?", form, hdr)
	if err != nil {
		return model.PermitRecord{}, false, err
	}
	return refine.MergeProgress(rec, parser.ParseProgressBlock(string(body))), true, nil
}
