package model

import (
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// Document 可写入 Elasticsearch 的文档
type Document interface {
	*PermitDoc
	GetID() string
	GetIndex() string
	GetTypeMapping() *types.TypeMapping
}

// PermitIndex 执照资料的默认索引名
const PermitIndex = "building_permits"

// PermitDoc 执照资料在索引中的形态
// ID 由网站名与来源编号组成,来源编号只在单一网站内唯一
type PermitDoc struct {
	ID                   string `json:"id"`
	Site                 string `json:"site"`
	SourceID             string `json:"source_id"`
	IssuedOn             string `json:"issued_on"`
	IssueDate            string `json:"issue_date"`
	PermitType           string `json:"permit_type"`
	OccupancyRegDate     string `json:"occupancy_reg_date,omitempty"`
	StartDate            string `json:"start_date,omitempty"`
	CompletionDate       string `json:"completion_date,omitempty"`
	CompletionDeadline   string `json:"completion_deadline,omitempty"`
	CompletionExtendedTo string `json:"completion_extended_to,omitempty"`
	ReportProgress       string `json:"report_progress,omitempty"`
	LicenseNo            string `json:"license_no"`
	OriginalLicenseNo    string `json:"original_license_no,omitempty"`
	DesignChanges        string `json:"design_changes,omitempty"`
	SiteArea             string `json:"site_area,omitempty"`
	BuildingArea         string `json:"building_area,omitempty"`
	TotalFloorArea       string `json:"total_floor_area,omitempty"`
	CoverageRatio        string `json:"coverage_ratio,omitempty"`
	FloorAreaRatio       string `json:"floor_area_ratio,omitempty"`
	BuildingHeight       string `json:"building_height,omitempty"`
	ShelterArea          string `json:"shelter_area,omitempty"`
	OpenSpaceArea        string `json:"open_space_area,omitempty"`
	ConstructionCategory string `json:"construction_category,omitempty"`
	StructureType        string `json:"structure_type,omitempty"`
	Buildings            int    `json:"buildings"`
	Blocks               int    `json:"blocks"`
	FloorsAbove          int    `json:"floors_above"`
	FloorsBelow          int    `json:"floors_below"`
	Units                int    `json:"units"`
	Owner                string `json:"owner,omitempty"`
	Designer             string `json:"designer,omitempty"`
	DesignerOffice       string `json:"designer_office,omitempty"`
	Supervisor           string `json:"supervisor,omitempty"`
	SupervisorOffice     string `json:"supervisor_office,omitempty"`
	Contractor           string `json:"contractor,omitempty"`
	ContractorCompany    string `json:"contractor_company,omitempty"`
	Zoning               string `json:"zoning,omitempty"`
	Usage                string `json:"usage,omitempty"`
	Cost                 *int64 `json:"cost,omitempty"`
	FloorSummary         string `json:"floor_summary,omitempty"`
	LandParcels          string `json:"land_parcels,omitempty"`
	Addresses            string `json:"addresses,omitempty"`
	Remarks              string `json:"remarks,omitempty"`
}

func (d *PermitDoc) GetID() string {
	return d.ID
}

func (d *PermitDoc) GetIndex() string {
	return PermitIndex
}

// GetTypeMapping 返回索引映射,筛选用字段设为 keyword,其余为 text
func (d *PermitDoc) GetTypeMapping() *types.TypeMapping {
	keywordFields := []string{"id", "site", "source_id", "permit_type", "license_no", "original_license_no"}
	dateFields := []string{"issued_on"}
	intFields := []string{"buildings", "blocks", "floors_above", "floors_below", "units"}
	textFields := []string{
		"issue_date", "occupancy_reg_date", "start_date", "completion_date", "completion_deadline",
		"completion_extended_to", "report_progress", "design_changes", "site_area", "building_area",
		"total_floor_area", "coverage_ratio", "floor_area_ratio", "building_height", "shelter_area",
		"open_space_area", "construction_category", "structure_type", "owner", "designer",
		"designer_office", "supervisor", "supervisor_office", "contractor", "contractor_company",
		"zoning", "usage", "floor_summary", "land_parcels", "addresses", "remarks",
	}

	properties := make(map[string]types.Property, len(keywordFields)+len(dateFields)+len(intFields)+len(textFields)+1)
	for _, f := range keywordFields {
		properties[f] = types.NewKeywordProperty()
	}
	for _, f := range dateFields {
		properties[f] = types.NewDateProperty()
	}
	for _, f := range intFields {
		properties[f] = types.NewIntegerNumberProperty()
	}
	properties["cost"] = types.NewLongNumberProperty()
	for _, f := range textFields {
		properties[f] = types.NewTextProperty()
	}
	return &types.TypeMapping{Properties: properties}
}
