package refine

import (
	"encoding/json"
	"testing"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestMCGBM(t *testing.T) {
	row := decode(t, `{
		"_id":    {"$oid": "64a1f0"},
		"執照類別":   "建造執照",
		"發照日期":   "1120510",
		"實際開工日期": "-",
		"核發執照字號": "（112）建字第00012號",
		"變更設計次數": 2,
		"基地面積":   "  523.1 ",
		"棟數":     "2棟",
		"地上層數":   "12層",
		"地下層數":   3,
		"戶數":     "48戶",
		"建築物用途":  "住宅, 店鋪, 住宅",
		"工程造價":   "12345678.5",
		"樓層概要": [
			{"樓層別": "1F", "樓層用途": "店鋪、集合住宅"},
			{"樓層別": "2F", "樓層用途": "集合住宅"}
		],
		"地號": [{"段": "中正段", "地號": "0012-0000"}],
		"門牌": "中正路1號"
	}`)

	rec, ok := MCGBM(row)
	require.True(t, ok)
	assert.Equal(t, "64a1f0", rec.ID)
	assert.Equal(t, model.PermitConstruction, rec.PermitType)
	assert.Equal(t, "1120510", rec.IssueDate)
	assert.Equal(t, "", rec.StartDate)
	assert.Equal(t, "(112)建字第00012號", rec.LicenseNo)
	assert.Equal(t, "2", rec.DesignChanges)
	assert.Equal(t, "523.1", rec.SiteArea)
	assert.Equal(t, model.BuildingCounts{Buildings: 2, FloorsAbove: 12, FloorsBelow: 3, Units: 48}, rec.Counts)
	assert.Equal(t, "住宅、店鋪、集合住宅", rec.Usage)
	require.NotNil(t, rec.Cost)
	assert.Equal(t, int64(12345678), *rec.Cost)
	assert.Equal(t, `[{"樓層別":"1F","樓層用途":"店鋪、集合住宅"},{"樓層別":"2F","樓層用途":"集合住宅"}]`, rec.FloorSummary)
	assert.Equal(t, `["0012-0000中正段"]`, rec.LandParcels)
	assert.Equal(t, "中正路1號", rec.Addresses)
	assert.Equal(t, "-", rec.CoverageRatio)
	assert.Equal(t, "-", rec.Remarks)
}

func TestMCGBMDropsOtherTypes(t *testing.T) {
	_, ok := MCGBM(map[string]any{"執照類別": "拆除執照"})
	assert.False(t, ok)
}

func TestMCGBMMissingCollections(t *testing.T) {
	rec, ok := MCGBM(map[string]any{"執照類別": "使用執照", "_id": "x1"})
	require.True(t, ok)
	assert.Equal(t, "x1", rec.ID)
	assert.Equal(t, "[]", rec.FloorSummary)
	assert.Equal(t, "0", rec.DesignChanges)
	assert.Nil(t, rec.Cost)
	assert.Equal(t, "", rec.Usage)
}

func TestKaohsiung(t *testing.T) {
	detail := decode(t, `{
		"title":        "使用執照號碼",
		"IDlicedate":   "112/03/04",
		"license_desc": "(112)高市工建築使字第00100號",
		"buildfloor":   "1棟1幢地上7層地下1層14戶",
		"price":        "($9,876,543)",
		"lan":          "三民區 寶珠段 100地號",
		"stair": [
			{"building_no": "A", "story_code": "1F", "usage_code_desc": "G-2、H-2"},
			{"building_no": "A", "story_code": "2F", "usage_code_desc": "H-2"}
		],
		"p01addr":  [{"addr": "三民路1號"}, {"addr": "三民路3號"}],
		"memo_seq": [{"dese": "第一筆"}, {"dese": "第二筆"}]
	}`)

	rec, ok := Kaohsiung(detail, "K001")
	require.True(t, ok)
	assert.Equal(t, "K001", rec.ID)
	assert.Equal(t, model.PermitOccupancy, rec.PermitType)
	assert.Equal(t, "112/03/04", rec.IssueDate)
	assert.Equal(t, model.BuildingCounts{Buildings: 1, Blocks: 1, FloorsAbove: 7, FloorsBelow: 1, Units: 14}, rec.Counts)
	require.NotNil(t, rec.Cost)
	assert.Equal(t, int64(9876543), *rec.Cost)
	assert.Equal(t, "G-2、H-2", rec.Usage)
	assert.Equal(t, "三民區", rec.LandParcels)
	assert.Equal(t, `["三民路1號","三民路3號"]`, rec.Addresses)
	assert.Equal(t, `["第一筆","第二筆"]`, rec.Remarks)
	assert.Contains(t, rec.FloorSummary, `{"棟別":"A","層別":"1F","樓層高度":"",`)
}

func TestKaohsiungLandData(t *testing.T) {
	rec, ok := Kaohsiung(map[string]any{
		"title": "建造執照號碼",
		"lan_data": []any{
			map[string]any{"dist": "苓雅區", "section": "林德段", "road": "12"},
		},
	}, "K002")
	require.True(t, ok)
	assert.Equal(t, `["苓雅區林德段12地號"]`, rec.LandParcels)
	assert.Equal(t, "[]", rec.FloorSummary)
	assert.Equal(t, "", rec.Remarks)
}

func TestKaohsiungTitleGate(t *testing.T) {
	for _, title := range []string{"", "雜項執照號碼", "建造執照", "拆除執照號碼"} {
		_, ok := Kaohsiung(map[string]any{"title": title}, "K")
		assert.False(t, ok, title)
	}
}

func TestNBUPIC(t *testing.T) {
	page := parser.Structured{
		Fields: map[string]string{
			"執照字號":       "(112)竹市建字第00012號",
			"發照日期":       "112/05/10",
			"建築面積":       "300",
			"層棧戶數":       "1棟地上5層地下1層20戶",
			"工程造價":       "($12,345,678)",
			"承造人( 營造廠 )": "大成營造",
			"地號":         "東區光復段1地號",
		},
		Sections: map[string]parser.Table{
			FloorSection: {
				Columns: []string{"層別", "使用類組"},
				Rows: []map[string]string{
					{"層別": "1F", "使用類組": "G-2辦公場所"},
					{"層別": "2F", "使用類組": "H-2住宅、G-2辦公場所"},
				},
			},
		},
	}

	rec, ok := NBUPIC(page, "N1")
	require.True(t, ok)
	assert.Equal(t, model.PermitConstruction, rec.PermitType)
	assert.Equal(t, "300", rec.BuildingArea)
	assert.Equal(t, "大成營造", rec.ContractorCompany)
	assert.Equal(t, "G-2辦公場所、H-2住宅", rec.Usage)
	assert.Equal(t, model.BuildingCounts{Buildings: 1, FloorsAbove: 5, FloorsBelow: 1, Units: 20}, rec.Counts)
	require.NotNil(t, rec.Cost)
	assert.Equal(t, int64(12345678), *rec.Cost)
	assert.Equal(t, "-", rec.CompletionDate)
	assert.Equal(t, "", rec.StartDate)

	page.Fields["建築面積(其他)"] = "280"
	rec, _ = NBUPIC(page, "N1")
	assert.Equal(t, "280", rec.BuildingArea)

	_, ok = NBUPIC(parser.Structured{Fields: map[string]string{"執照字號": "雜項"}}, "N2")
	assert.False(t, ok)
}

func TestMergeProgress(t *testing.T) {
	rec := model.PermitRecord{ID: "N1", StartDate: "舊值", ReportProgress: "舊值"}
	got := MergeProgress(rec, map[string]string{
		"使照掛號日期": "113/01/02",
		"開工日期":   "112/06/01",
		"竣工展期至":  "114/01/01",
	})
	assert.Equal(t, "N1", got.ID)
	assert.Equal(t, "113/01/02", got.OccupancyRegDate)
	assert.Equal(t, "112/06/01", got.StartDate)
	assert.Equal(t, "", got.CompletionDeadline)
	assert.Equal(t, "114/01/01", got.CompletionExtendedTo)
	assert.Equal(t, "", got.ReportProgress)
	assert.Equal(t, "舊值", rec.StartDate)
}

func TestHsinchuCounty(t *testing.T) {
	page := parser.Nested{
		Fields: map[string]string{
			"核發執照字號":         "(112)府建使字第00033號",
			"原領執照字號":         "(110)府建造字第00010號",
			"建築執照-開工日期":      "110/06/01",
			"建築執照-開工日期-竣工日期": "112/02/01",
			"起造人-姓名":         "王小明",
			"起造人-姓名-事務所":     "王氏建設",
			"建物概要-發照日期":      "112/05/10",
			"建物概要-層棧戶數":      "2棟地上5層20戶",
			"建物概要-工程造價":      "($1,000,000)",
			"建物概要-建造類別-構造種類": "RC",
			"基地概要-地號":        "竹北市中正段1地號",
		},
		Tables: map[string]parser.Table{
			FloorSection: {
				Columns: []string{"層別", "使用類組"},
				Rows:    []map[string]string{{"層別": "1F", "使用類組": "H-2"}},
			},
			"備註資料": {
				Columns: []string{"內容"},
				Rows:    []map[string]string{{"內容": "第一筆"}, {"內容": "第二筆"}},
			},
		},
	}

	rec, ok := HsinchuCounty(page, "H1")
	require.True(t, ok)
	assert.Equal(t, model.PermitOccupancy, rec.PermitType)
	assert.Equal(t, "110/06/01", rec.StartDate)
	assert.Equal(t, "112/02/01", rec.CompletionDate)
	assert.Equal(t, "王小明 (王氏建設)", rec.Owner)
	assert.Equal(t, "112/05/10", rec.IssueDate)
	assert.Equal(t, "RC", rec.StructureType)
	assert.Equal(t, "H-2", rec.Usage)
	assert.Equal(t, `[{"層別":"1F","使用類組":"H-2"}]`, rec.FloorSummary)
	assert.Equal(t, `[{"0":"第一筆"},{"1":"第二筆"}]`, rec.Remarks)
	assert.Equal(t, 2, rec.Counts.Buildings)
	require.NotNil(t, rec.Cost)
	assert.Equal(t, int64(1000000), *rec.Cost)
}

func TestHsinchuCountyConstructionHasNoDates(t *testing.T) {
	rec, ok := HsinchuCounty(parser.Nested{Fields: map[string]string{
		"核發執照字號":    "(112)府建造字第00001號",
		"建築執照-開工日期": "112/06/01",
		"起造人-姓名":    "李四",
	}}, "H2")
	require.True(t, ok)
	assert.Equal(t, model.PermitConstruction, rec.PermitType)
	assert.Equal(t, "", rec.StartDate)
	assert.Equal(t, "", rec.CompletionDate)
	assert.Equal(t, "李四", rec.Owner)
	assert.Equal(t, "", rec.FloorSummary)
	assert.Equal(t, "", rec.Remarks)
}

func TestHsinchuCountyRemarksKeyedByRow(t *testing.T) {
	remarks := func(rows ...map[string]string) string {
		rec, ok := HsinchuCounty(parser.Nested{
			Fields: map[string]string{"核發執照字號": "(112)府建造字第00002號"},
			Tables: map[string]parser.Table{"備註資料": {Columns: []string{"內容"}, Rows: rows}},
		}, "H3")
		require.True(t, ok)
		return rec.Remarks
	}

	assert.Equal(t, "[]", remarks())
	assert.Equal(t, `[{"0":""},{"1":"補正"}]`, remarks(map[string]string{"項目": "x"}, map[string]string{"內容": "補正"}))
}

func TestHsinchuCountyDropsOtherTypes(t *testing.T) {
	_, ok := HsinchuCounty(parser.Nested{Fields: map[string]string{"核發執照字號": "雜照"}}, "H3")
	assert.False(t, ok)
}
