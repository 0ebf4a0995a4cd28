package entity

import (
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
)

// PermitItem 适配器逐笔产出的资料
// Date 为零值表示发照日期无法解析
type PermitItem struct {
	Site     string
	Date     time.Time
	SourceID string
	Record   model.PermitRecord
}

// HasDate 发照日期是否可用
func (it *PermitItem) HasDate() bool {
	return !it.Date.IsZero()
}

// SheetKey 按年月分表的键,例如 2023-01
func (it *PermitItem) SheetKey() string {
	return it.Date.Format("2006-01")
}

// ToDocument 转为索引文档,文档 ID 为 "站点:来源编号"
func (it *PermitItem) ToDocument() *model.PermitDoc {
	r := &it.Record
	doc := &model.PermitDoc{
		ID:                   it.Site + ":" + it.SourceID,
		Site:                 it.Site,
		SourceID:             it.SourceID,
		IssueDate:            r.IssueDate,
		PermitType:           string(r.PermitType),
		OccupancyRegDate:     r.OccupancyRegDate,
		StartDate:            r.StartDate,
		CompletionDate:       r.CompletionDate,
		CompletionDeadline:   r.CompletionDeadline,
		CompletionExtendedTo: r.CompletionExtendedTo,
		ReportProgress:       r.ReportProgress,
		LicenseNo:            r.LicenseNo,
		OriginalLicenseNo:    r.OriginalLicenseNo,
		DesignChanges:        r.DesignChanges,
		SiteArea:             r.SiteArea,
		BuildingArea:         r.BuildingArea,
		TotalFloorArea:       r.TotalFloorArea,
		CoverageRatio:        r.CoverageRatio,
		FloorAreaRatio:       r.FloorAreaRatio,
		BuildingHeight:       r.BuildingHeight,
		ShelterArea:          r.ShelterArea,
		OpenSpaceArea:        r.OpenSpaceArea,
		ConstructionCategory: r.ConstructionCategory,
		StructureType:        r.StructureType,
		Buildings:            r.Counts.Buildings,
		Blocks:               r.Counts.Blocks,
		FloorsAbove:          r.Counts.FloorsAbove,
		FloorsBelow:          r.Counts.FloorsBelow,
		Units:                r.Counts.Units,
		Owner:                r.Owner,
		Designer:             r.Designer,
		DesignerOffice:       r.DesignerOffice,
		Supervisor:           r.Supervisor,
		SupervisorOffice:     r.SupervisorOffice,
		Contractor:           r.Contractor,
		ContractorCompany:    r.ContractorCompany,
		Zoning:               r.Zoning,
		Usage:                r.Usage,
		Cost:                 r.Cost,
		FloorSummary:         r.FloorSummary,
		LandParcels:          r.LandParcels,
		Addresses:            r.Addresses,
		Remarks:              r.Remarks,
	}
	if it.HasDate() {
		doc.IssuedOn = it.Date.Format("2006-01-02")
	}
	return doc
}
