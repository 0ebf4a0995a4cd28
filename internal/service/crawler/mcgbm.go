package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/refine"
)

const (
	mcgbmPageSize  = 100
	mcgbmMaxOffset = 5000
)

// mcgbmAdapter 开放资料 API,按 年 × 执照类别 分页,服务端不按日期过滤
type mcgbmAdapter struct {
	adapterBase
}

func (a *mcgbmAdapter) Fetch(ctx context.Context, progress ProgressFunc) iter.Seq[entity.PermitItem] {
	return func(yield func(entity.PermitItem) bool) {
		if !a.begin(progress) {
			return
		}
		defer a.finish(progress)

		for year := a.start.Year(); year <= a.end.Year(); year++ {
			for _, pt := range model.PermitTypes {
				progress.logf("正在爬取 %s %d年 %s...", a.site.Name, year, pt.Label())
				for offset := 1; offset < mcgbmMaxOffset; offset += mcgbmPageSize {
					if ctx.Err() != nil {
						return
					}
					rows, err := a.page(ctx, pt, offset, year-normalize.EraOffset)
					if err != nil {
						progress.logf("%s %d年 %s 分页 Start=%d 失败: %v", a.site.Name, year, pt.Label(), offset, err)
						continue
					}
					for _, row := range rows {
						rec, ok := refine.MCGBM(row)
						if !ok {
							continue
						}
						d, ok := normalize.ParseLocalDate(rec.IssueDate)
						if !ok || !a.inWindow(d) {
							continue
						}
						if !a.emit(yield, entity.PermitItem{Date: d, SourceID: rec.ID, Record: rec}) {
							return
						}
					}
					if len(rows) < mcgbmPageSize {
						break
					}
				}
			}
		}
	}
}

func (a *mcgbmAdapter) page(ctx context.Context, pt model.PermitType, offset, localYear int) ([]map[string]any, error) {
	body, err := a.session.Get(ctx, a.pageURL(pt, offset, localYear), nil)
	if err != nil {
		return nil, err
	}
	// 部分站点的 JSON 中夹带 \x05 控制字符
	body = bytes.ReplaceAll(body, []byte("\x05"), nil)

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return resp.Data, nil
}

func (a *mcgbmAdapter) pageURL(pt model.PermitType, offset, localYear int) string {
	return fmt.Sprintf("%sd=OPENDATA&c=BUILDLIC&Start=%d&%s=%s&%s=%s",
		a.site.BaseURL, offset,
		url.QueryEscape("執照類別"), url.QueryEscape(pt.Label()),
		url.QueryEscape("發照日期"), url.QueryEscape(fmt.Sprintf("%d年", localYear)),
	)
}
