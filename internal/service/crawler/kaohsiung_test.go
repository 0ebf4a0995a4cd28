package crawler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKaohsiungThreeDayBatches(t *testing.T) {
	factory, fake := newFakeFactory(func(req recordedRequest) ([]byte, error) {
		switch {
		case strings.HasSuffix(req.URL, "/pages/querylic"):
			return []byte("<html></html>"), nil
		case strings.HasSuffix(req.URL, "/pages/jsapi/querylic"):
			if req.Form.Get("date_s") != "1130101" {
				return []byte(`[]`), nil
			}
			return []byte(`[
				{"dkey":"K1","licdate":"113/01/02"},
				{"dkey":"K2","licdate":"不明"},
				{"dkey":"","licdate":"113/01/02"},
				{"dkey":12345,"licdate":"113/01/03"}
			]`), nil
		case strings.HasSuffix(req.URL, "/pages/jsapi/getLicenseInfo"):
			title := "使用執照號碼"
			if req.Form.Get("key") == "12345" {
				title = "雜項執照號碼"
			}
			return []byte(fmt.Sprintf(`{"title":%q,"IDlicedate":"113/01/02","license_desc":"(113)高市工建築使字第00001號","buildfloor":"1棟地上2層"}`, title)), nil
		}
		return nil, fmt.Errorf("%w: unexpected %s", ErrTransport, req.URL)
	})

	a, err := factory.Build("高雄市", date(2024, 1, 1), date(2024, 1, 7))
	require.NoError(t, err)
	log := &progressLog{}
	items := collect(t, a, log)

	require.Len(t, items, 1)
	assert.Equal(t, "K1", items[0].SourceID)
	assert.Equal(t, "K1", items[0].Record.ID)
	assert.Equal(t, date(2024, 1, 2), items[0].Date)
	assert.Equal(t, model.PermitOccupancy, items[0].Record.PermitType)

	queries := fake.requestsTo("/pages/jsapi/querylic")
	require.Len(t, queries, 3)
	windows := make([][2]string, 0, len(queries))
	for _, q := range queries {
		assert.Equal(t, "5", q.Form.Get("qrytyp"))
		assert.Equal(t, "https://buildmis.kcg.gov.tw/bupic/pages/querylic", q.Header.Get("Referer"))
		windows = append(windows, [2]string{q.Form.Get("date_s"), q.Form.Get("date_e")})
	}
	assert.Equal(t, [][2]string{
		{"1130101", "1130103"},
		{"1130104", "1130106"},
		{"1130107", "1130107"},
	}, windows)

	details := fake.requestsTo("getLicenseInfo")
	require.Len(t, details, 2)
	assert.Equal(t, "K1", details[0].Form.Get("key"))
	assert.Equal(t, "12345", details[1].Form.Get("key"))

	assert.Len(t, log.containing("正在爬取"), 3)
	assert.Len(t, log.containing("(3/3)"), 1)
}

func TestKaohsiungDetailParseError(t *testing.T) {
	factory, _ := newFakeFactory(func(req recordedRequest) ([]byte, error) {
		switch {
		case strings.HasSuffix(req.URL, "/pages/jsapi/querylic"):
			return []byte(`[{"dkey":"K9","licdate":"113/02/01"}]`), nil
		case strings.HasSuffix(req.URL, "/pages/jsapi/getLicenseInfo"):
			return []byte(`<html>維護中</html>`), nil
		}
		return nil, nil
	})

	a, err := factory.Build("高雄市", date(2024, 2, 1), date(2024, 2, 1))
	require.NoError(t, err)
	log := &progressLog{}

	assert.Empty(t, collect(t, a, log))
	lines := log.containing("(K9)")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], ErrParse.Error())
}
