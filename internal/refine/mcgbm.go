package refine

import (
	"strconv"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
)

// MCGBM 整理开放资料 API 的一笔 JSON 资料
func MCGBM(row map[string]any) (model.PermitRecord, bool) {
	permitType := normalize.ClassifyPermitType(text(row, "執照類別"))
	if permitType == model.PermitOther {
		return model.PermitRecord{}, false
	}

	usage := usageSet{}
	usage.add(text(row, "建築物用途"), ", ")
	floors, _ := list(row, "樓層概要")
	for _, f := range floors {
		if m, ok := f.(map[string]any); ok {
			usage.add(text(m, "樓層用途"), UsageSeparator)
		}
	}
	if floors == nil {
		floors = []any{}
	}

	return model.PermitRecord{
		ID:                   mcgbmID(row["_id"]),
		IssueDate:            clean(row, "發照日期"),
		PermitType:           permitType,
		OccupancyRegDate:     unavailable,
		StartDate:            clean(row, "實際開工日期"),
		CompletionDate:       clean(row, "竣工日期"),
		CompletionDeadline:   unavailable,
		CompletionExtendedTo: unavailable,
		ReportProgress:       unavailable,
		LicenseNo:            clean(row, "核發執照字號"),
		OriginalLicenseNo:    clean(row, "原領執照字號"),
		DesignChanges:        strconv.Itoa(normalize.ParseCount(text(row, "變更設計次數"))),
		SiteArea:             clean(row, "基地面積"),
		BuildingArea:         clean(row, "建築面積"),
		TotalFloorArea:       clean(row, "總樓地板面積"),
		CoverageRatio:        unavailable,
		FloorAreaRatio:       unavailable,
		BuildingHeight:       clean(row, "建築物高度"),
		ShelterArea:          clean(row, "地下避難面積"),
		OpenSpaceArea:        clean(row, "法定空地面積"),
		ConstructionCategory: clean(row, "建造類別"),
		StructureType:        clean(row, "構造別"),
		Counts: model.BuildingCounts{
			Buildings:   normalize.ParseCount(text(row, "棟數")),
			FloorsAbove: normalize.ParseCount(text(row, "地上層數")),
			FloorsBelow: normalize.ParseCount(text(row, "地下層數")),
			Units:       normalize.ParseCount(text(row, "戶數")),
		},
		Owner:             clean(row, "起造人代表人"),
		Designer:          clean(row, "設計人"),
		DesignerOffice:    unavailable,
		Supervisor:        clean(row, "監造人"),
		SupervisorOffice:  unavailable,
		Contractor:        clean(row, "承造人"),
		ContractorCompany: unavailable,
		Zoning:            clean(row, "土地使用分區"),
		Usage:             usage.String(),
		Cost:              normalize.ParseCost(text(row, "工程造價")),
		FloorSummary:      normalize.CleanText(jsonText(floors)),
		LandParcels:       normalize.CleanText(collectionText(row["地號"])),
		Addresses:         normalize.CleanText(collectionText(row["門牌"])),
		Remarks:           unavailable,
	}, true
}

// mcgbmID 开放资料的 _id 形如 {"$oid": "..."}
func mcgbmID(v any) string {
	if m, ok := v.(map[string]any); ok {
		return stringify(m["$oid"])
	}
	return stringify(v)
}
