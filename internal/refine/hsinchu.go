package refine

import (
	"strconv"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
)

// HsinchuCounty 整理 queryInfoAction.do 的多层标题解析结果
func HsinchuCounty(page parser.Nested, id string) (model.PermitRecord, bool) {
	kv := page.Fields
	permitType := normalize.ClassifyPermitType(kv["核發執照字號"])
	if permitType == model.PermitOther {
		return model.PermitRecord{}, false
	}

	// 建造执照尚未开工,日期栏位一律留空
	var startDate, completionDate string
	if permitType == model.PermitOccupancy {
		startDate = kv["建築執照-開工日期"]
		completionDate = kv["建築執照-開工日期-竣工日期"]
	}

	owner := kv["起造人-姓名"]
	if office, ok := kv["起造人-姓名-事務所"]; ok {
		owner += " (" + office + ")"
	}

	usage := usageSet{}
	floorSummary := ""
	if floors, ok := page.Tables[FloorSection]; ok {
		for _, u := range floors.Column("使用類組") {
			usage.add(u, UsageSeparator)
		}
		floorSummary = floors.String()
	}

	remarks := ""
	if notes, ok := page.Tables["備註資料"]; ok {
		// 每笔备注以列序号为键
		entries := make([]map[string]string, 0, len(notes.Rows))
		for i, row := range notes.Rows {
			entries = append(entries, map[string]string{strconv.Itoa(i): row["內容"]})
		}
		remarks = jsonText(entries)
	}

	return model.PermitRecord{
		ID:                   id,
		IssueDate:            normalize.CleanText(kv["建物概要-發照日期"]),
		PermitType:           permitType,
		OccupancyRegDate:     unavailable,
		StartDate:            normalize.CleanText(startDate),
		CompletionDate:       normalize.CleanText(completionDate),
		CompletionDeadline:   unavailable,
		CompletionExtendedTo: unavailable,
		ReportProgress:       unavailable,
		LicenseNo:            kv["核發執照字號"],
		OriginalLicenseNo:    kv["原領執照字號"],
		DesignChanges:        unavailable,
		SiteArea:             normalize.CleanText(kv["基地概要-基地面積-退縮地-合計"]),
		BuildingArea:         normalize.CleanText(kv["建物概要-建築面積-騎樓面積-其他"]),
		TotalFloorArea:       normalize.CleanText(kv["建物概要-設計建蔽率-總樓地板面積"]),
		CoverageRatio:        unavailable,
		FloorAreaRatio:       unavailable,
		BuildingHeight:       normalize.CleanText(kv["建物概要-設計容積率-建物高度"]),
		ShelterArea:          normalize.CleanText(kv["建物概要-防空避難面積-地上-地下"]),
		OpenSpaceArea:        normalize.CleanText(kv["建物概要-層棧戶數-法定空地面積"]),
		ConstructionCategory: normalize.CleanText(kv["建物概要-建造類別"]),
		StructureType:        normalize.CleanText(kv["建物概要-建造類別-構造種類"]),
		Counts:               normalize.ExtractBuildingCounts(kv["建物概要-層棧戶數"]),
		Owner:                normalize.CleanText(owner),
		Designer:             normalize.CleanText(kv["設計人-姓名"]),
		DesignerOffice:       normalize.CleanText(kv["設計人-姓名-事務所"]),
		Supervisor:           normalize.CleanText(kv["監造人-姓名"]),
		SupervisorOffice:     normalize.CleanText(kv["監造人-姓名-事務所"]),
		Contractor:           normalize.CleanText(kv["承造人-姓名"]),
		ContractorCompany:    normalize.CleanText(kv["承造人-姓名-營造廠"]),
		Zoning:               normalize.CleanText(kv["基地概要-使用分區"]),
		Usage:                usage.String(),
		Cost:                 normalize.ExtractCost(kv["建物概要-工程造價"]),
		FloorSummary:         normalize.CleanText(floorSummary),
		LandParcels:          normalize.CleanText(kv["基地概要-地號"]),
		Addresses:            normalize.CleanText(kv["基地概要-地址"]),
		Remarks:              normalize.CleanText(remarks),
	}, true
}
