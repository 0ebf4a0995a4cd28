package refine

import (
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/parser"
)

// FloorSection 楼层概要区块名称
const FloorSection = "樓層概要資料"

// NBUPIC 整理 licInfo.jsp 的解析结果
// 进度相关的五个栏位先留空,之后由 MergeProgress 填入
func NBUPIC(page parser.Structured, id string) (model.PermitRecord, bool) {
	f := page.Fields
	permitType := normalize.ClassifyPermitType(f["執照字號"])
	if permitType == model.PermitOther {
		return model.PermitRecord{}, false
	}

	floors := page.Sections[FloorSection]
	usage := usageSet{}
	for _, u := range floors.Column("使用類組") {
		usage.add(u, UsageSeparator)
	}

	buildingArea := f["建築面積(其他)"]
	if buildingArea == "" {
		buildingArea = f["建築面積"]
	}

	return model.PermitRecord{
		ID:                   id,
		IssueDate:            f["發照日期"],
		PermitType:           permitType,
		CompletionDate:       unavailable,
		LicenseNo:            f["執照字號"],
		OriginalLicenseNo:    f["原領執照字號"],
		DesignChanges:        unavailable,
		SiteArea:             f["基地面積(合計)"],
		BuildingArea:         buildingArea,
		TotalFloorArea:       f["總樓地板面積"],
		CoverageRatio:        f["設計建蔽率"],
		FloorAreaRatio:       f["設計容積率"],
		BuildingHeight:       f["建物高度"],
		ShelterArea:          f["防空避難面積(地下)"],
		OpenSpaceArea:        f["法定空地面積"],
		ConstructionCategory: f["建造類別"],
		StructureType:        f["構造種類"],
		Counts:               normalize.ExtractBuildingCounts(f["層棧戶數"]),
		Owner:                f["起造人"],
		Designer:             f["設計人(姓名)"],
		DesignerOffice:       f["設計人(事務所)"],
		Supervisor:           f["監造人(姓名)"],
		SupervisorOffice:     f["監造人(事務所)"],
		Contractor:           f["承造人(姓名)"],
		ContractorCompany:    f["承造人( 營造廠 )"],
		Zoning:               f["使用分區"],
		Usage:                usage.String(),
		Cost:                 normalize.ExtractCost(f["工程造價"]),
		FloorSummary:         floors.String(),
		LandParcels:          f["地號"],
		Addresses:            f["地址"],
		Remarks:              unavailable,
	}, true
}

// MergeProgress 用 schedule.jsp 的进度资料覆盖五个进度栏位,缺少的栏位为空字符串
func MergeProgress(rec model.PermitRecord, progress map[string]string) model.PermitRecord {
	rec.OccupancyRegDate = progress["使照掛號日期"]
	rec.StartDate = progress["開工日期"]
	rec.CompletionDeadline = progress["竣工期限"]
	rec.CompletionExtendedTo = progress["竣工展期至"]
	rec.ReportProgress = progress["申報進度"]
	return rec
}
