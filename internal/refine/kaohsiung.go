package refine

import (
	"strings"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
)

// 详情 JSON 的 title 只接受这两种
var kaohsiungTitles = map[string]bool{
	"建造執照號碼": true,
	"使用執照號碼": true,
}

var kaohsiungFloorColumns = []string{"棟別", "層別", "樓層高度", "申請面積", "陽台面積", "露台面積", "使用類組"}

// Kaohsiung 整理 getLicenseInfo 返回的详情 JSON
func Kaohsiung(detail map[string]any, id string) (model.PermitRecord, bool) {
	title := text(detail, "title")
	permitType := normalize.ClassifyPermitType(title)
	if permitType == model.PermitOther || !kaohsiungTitles[title] {
		return model.PermitRecord{}, false
	}

	usage := usageSet{}
	floors := parser.Table{Columns: kaohsiungFloorColumns}
	stairs, hasStairs := list(detail, "stair")
	for _, s := range stairs {
		m, ok := s.(map[string]any)
		if !ok {
			continue
		}
		usage.add(text(m, "usage_code_desc"), UsageSeparator)
		floors.Rows = append(floors.Rows, map[string]string{
			"棟別":   text(m, "building_no"),
			"層別":   text(m, "story_code"),
			"樓層高度": text(m, "story_height"),
			"申請面積": text(m, "story_area"),
			"陽台面積": text(m, "veranda_area"),
			"露台面積": text(m, "terrace_area"),
			"使用類組": text(m, "usage_code_desc"),
		})
	}
	floorSummary := "[]"
	if hasStairs {
		floorSummary = floors.String()
	}

	land, _, _ := strings.Cut(text(detail, "lan"), " ")
	if parcels, ok := list(detail, "lan_data"); ok {
		labels := make([]string, 0, len(parcels))
		for _, p := range parcels {
			m, _ := p.(map[string]any)
			labels = append(labels, text(m, "dist")+text(m, "section")+text(m, "road")+"地號")
		}
		land = labelList(labels)
	}

	addr := text(detail, "addr")
	if owners, ok := list(detail, "p01addr"); ok {
		labels := make([]string, 0, len(owners))
		for _, o := range owners {
			m, _ := o.(map[string]any)
			labels = append(labels, text(m, "addr"))
		}
		addr = labelList(labels)
	}

	remarks := ""
	if memos, ok := list(detail, "memo_seq"); ok {
		labels := make([]string, 0, len(memos))
		for _, memo := range memos {
			m, _ := memo.(map[string]any)
			labels = append(labels, text(m, "dese"))
		}
		remarks = labelList(labels)
	}

	return model.PermitRecord{
		ID:                   id,
		IssueDate:            clean(detail, "IDlicedate"),
		PermitType:           permitType,
		OccupancyRegDate:     unavailable,
		StartDate:            clean(detail, "commence_date"),
		CompletionDate:       clean(detail, "complete_date"),
		CompletionDeadline:   unavailable,
		CompletionExtendedTo: unavailable,
		ReportProgress:       unavailable,
		LicenseNo:            clean(detail, "license_desc"),
		OriginalLicenseNo:    clean(detail, "license_desc_old"),
		DesignChanges:        unavailable,
		SiteArea:             clean(detail, "base_area_total"),
		BuildingArea:         clean(detail, "building_area_other"),
		TotalFloorArea:       clean(detail, "total_con_area"),
		CoverageRatio:        clean(detail, "coverrate"),
		FloorAreaRatio:       clean(detail, "spacerate"),
		BuildingHeight:       clean(detail, "buildheight"),
		ShelterArea:          clean(detail, "airraid_d_area"),
		OpenSpaceArea:        clean(detail, "openspace"),
		ConstructionCategory: clean(detail, "buildcategory"),
		StructureType:        clean(detail, "buildkind"),
		Counts:               normalize.ExtractBuildingCounts(clean(detail, "buildfloor")),
		Owner:                clean(detail, "bmp01_name"),
		Designer:             clean(detail, "bmp02_name"),
		DesignerOffice:       clean(detail, "p02_officename"),
		Supervisor:           clean(detail, "bmp03_name"),
		SupervisorOffice:     clean(detail, "p03_officename"),
		Contractor:           clean(detail, "bmp04_boss"),
		ContractorCompany:    clean(detail, "p04_companyname"),
		Zoning:               clean(detail, "lanusage"),
		Usage:                usage.String(),
		Cost:                 normalize.ExtractCost(text(detail, "price")),
		FloorSummary:         normalize.CleanText(floorSummary),
		LandParcels:          normalize.CleanText(land),
		Addresses:            normalize.CleanText(addr),
		Remarks:              normalize.CleanText(remarks),
	}, true
}
