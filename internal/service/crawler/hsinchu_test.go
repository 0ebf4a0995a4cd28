package crawler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hsinchuDetail(license string) []byte {
	return []byte(fmt.Sprintf(`<html><body>
<div class="tableCon">
  <span class="tit01">執照號碼</span><span>%s</span>
  <span class="tit01">原領執照</span><span>-</span>
</div>
<div class="tableCon">
  <span class="tit01">建物概要</span><span></span>
  <span class="tit02">發照日期</span><span>112/01/05</span>
  <span class="tit02">層棧戶數</span><span>1棟地上3層2戶</span>
</div>
</body></html>`, license))
}

func TestHsinchuCountyDailyQuery(t *testing.T) {
	factory, fake := newFakeFactory(func(req recordedRequest) ([]byte, error) {
		switch {
		case strings.HasSuffix(req.URL, "/preLoginFormAction.do"):
			return []byte("<html></html>"), nil
		case strings.Contains(req.URL, "/pages/api/getLicdata?callback=ok"):
			if req.Form.Get("regdat") != "1120104" {
				return []byte(`ok({"rows":[]})`), nil
			}
			return []byte(`ok({"total":1,"rows":[
				{"index_key":"H1","identify_lice_date":"112/01/05"},
				{"index_key":"H2","identify_lice_date":""},
				{"index_key":"H3"},
				{"index_key":""}
			]})`), nil
		case strings.Contains(req.URL, "INDEX_KEY=H3"):
			return hsinchuDetail("(112)府建雜字第00003號"), nil
		case strings.Contains(req.URL, "/pages/queryInfoAction.do"):
			return hsinchuDetail("(112)府建使字第00001號"), nil
		}
		return nil, fmt.Errorf("%w: unexpected %s", ErrTransport, req.URL)
	})

	a, err := factory.Build("新竹縣", date(2023, 1, 3), date(2023, 1, 4))
	require.NoError(t, err)
	log := &progressLog{}
	items := collect(t, a, log)

	require.Len(t, items, 2)
	assert.Equal(t, "H1", items[0].SourceID)
	assert.Equal(t, date(2023, 1, 5), items[0].Date)
	assert.Equal(t, "H2", items[1].SourceID)
	assert.Equal(t, date(2023, 1, 4), items[1].Date)
	assert.Equal(t, model.PermitOccupancy, items[0].Record.PermitType)
	assert.Equal(t, "(112)府建使字第00001號", items[0].Record.LicenseNo)
	assert.Equal(t, model.BuildingCounts{Buildings: 1, FloorsAbove: 3, Units: 2}, items[0].Record.Counts)

	assert.Equal(t, http.MethodGet, fake.requests[0].Method)
	queries := fake.requestsTo("getLicdata")
	require.Len(t, queries, 2)
	assert.Equal(t, "1120103", queries[0].Form.Get("regdat"))
	assert.Equal(t, "200", queries[1].Form.Get("rows"))
	assert.Equal(t, "5", queries[1].Form.Get("qtype"))
	assert.Equal(t, "XMLHttpRequest", queries[1].Header.Get("X-Requested-With"))
	assert.Equal(t, "https://build.hsinchu.gov.tw", queries[1].Header.Get("Origin"))

	details := fake.requestsTo("queryInfoAction.do")
	require.Len(t, details, 3)
	assert.Equal(t, "H1", details[0].Form.Get("key"))
	assert.Contains(t, details[0].URL, "/pages/queryInfoAction.do?INDEX_KEY=H1")

	assert.Len(t, log.containing("正在爬取"), 2)
	assert.Len(t, log.containing("爬取完成,共 2 笔资料"), 1)
}

func TestHsinchuCountyRecoverableErrors(t *testing.T) {
	factory, _ := newFakeFactory(func(req recordedRequest) ([]byte, error) {
		switch {
		case strings.HasSuffix(req.URL, "/preLoginFormAction.do"):
			return nil, nil
		case strings.Contains(req.URL, "getLicdata"):
			if req.Form.Get("regdat") == "1120101" {
				return []byte(`ok({broken`), nil
			}
			return []byte(`ok({"rows":[{"index_key":"BAD"},{"index_key":"GOOD"}]})`), nil
		case strings.Contains(req.URL, "INDEX_KEY=BAD"):
			return nil, fmt.Errorf("%w: 500", ErrTransport)
		default:
			return hsinchuDetail("(112)府建造字第00009號"), nil
		}
	})

	a, err := factory.Build("新竹縣", date(2023, 1, 1), date(2023, 1, 2))
	require.NoError(t, err)
	log := &progressLog{}
	items := collect(t, a, log)

	require.Len(t, items, 1)
	assert.Equal(t, "GOOD", items[0].SourceID)
	assert.Len(t, log.containing("查询 2023-01-01 失败"), 1)
	assert.Len(t, log.containing("(BAD)"), 1)
}

func TestHsinchuCountyLandingFailure(t *testing.T) {
	factory, fake := newFakeFactory(func(req recordedRequest) ([]byte, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrTransport)
	})
	a, err := factory.Build("新竹縣", date(2023, 1, 1), date(2023, 1, 31))
	require.NoError(t, err)
	log := &progressLog{}

	assert.Empty(t, collect(t, a, log))
	assert.Len(t, fake.requests, 1)
	assert.Len(t, log.containing("初始化连线失败"), 1)
}

func TestUnwrapJSONP(t *testing.T) {
	assert.Equal(t, `{"rows":[]}`, string(unwrapJSONP([]byte(`ok({"rows":[]})`), "ok")))
	assert.Equal(t, `{"a":1}`, string(unwrapJSONP([]byte(" ok({\"a\":1});\n"), "ok")))
	assert.Equal(t, `{"a":1}`, string(unwrapJSONP([]byte(`{"a":1}`), "ok")))
	assert.Equal(t, `cb({"a":1})`, string(unwrapJSONP([]byte(`cb({"a":1})`), "ok")))
}
