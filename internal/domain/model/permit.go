package model

// PermitType 执照类别
type PermitType string

const (
	PermitConstruction PermitType = "construction"
	PermitOccupancy    PermitType = "occupancy"
	PermitOther        PermitType = "other"
)

// PermitTypes 需要输出的两种执照类别,顺序即输出顺序
var PermitTypes = []PermitType{PermitConstruction, PermitOccupancy}

// Label 返回网站与表格中使用的中文名称
func (pt PermitType) Label() string {
	switch pt {
	case PermitConstruction:
		return "建造執照"
	case PermitOccupancy:
		return "使用執照"
	default:
		return "其它"
	}
}

// BuildingCounts 棟數、幢數、地上層數、地下層數、戶數
type BuildingCounts struct {
	Buildings   int
	Blocks      int
	FloorsAbove int
	FloorsBelow int
	Units       int
}

// PermitRecord 各网站统一后的执照资料
// 字段顺序与 Columns 一一对应
type PermitRecord struct {
	ID                   string
	IssueDate            string
	PermitType           PermitType
	OccupancyRegDate     string
	StartDate            string
	CompletionDate       string
	CompletionDeadline   string
	CompletionExtendedTo string
	ReportProgress       string
	LicenseNo            string
	OriginalLicenseNo    string
	DesignChanges        string
	SiteArea             string
	BuildingArea         string
	TotalFloorArea       string
	CoverageRatio        string
	FloorAreaRatio       string
	BuildingHeight       string
	ShelterArea          string
	OpenSpaceArea        string
	ConstructionCategory string
	StructureType        string
	Counts               BuildingCounts
	Owner                string
	Designer             string
	DesignerOffice       string
	Supervisor           string
	SupervisorOffice     string
	Contractor           string
	ContractorCompany    string
	Zoning               string
	Usage                string
	Cost                 *int64
	FloorSummary         string
	LandParcels          string
	Addresses            string
	Remarks              string
}

// Columns 表格标题列
var Columns = []string{
	"_id",
	"發照日期",
	"執照類別",
	"使照掛號日期",
	"開工日期",
	"竣工日期",
	"竣工期限",
	"竣工展期至",
	"申報進度",
	"核發執照字號",
	"原領執照字號",
	"變更設計次數",
	"基地面積",
	"建築面積",
	"總樓地板面積",
	"設計建蔽率",
	"設計容積率",
	"建築物高度",
	"地下避難面積",
	"法定空地面積",
	"建造類別",
	"構造別",
	"棟數",
	"幢數",
	"地上層數",
	"地下層數",
	"戶數",
	"起造人代表人",
	"設計人",
	"設計人事務所",
	"監造人",
	"監造人事務所",
	"承造人",
	"承造人營造廠",
	"土地使用分區",
	"建築物用途",
	"工程造價",
	"樓層概要",
	"地號",
	"門牌",
	"備註資料",
}

// Values 按 Columns 顺序输出一行,数值列保持数值类型
func (r *PermitRecord) Values() []any {
	var cost any = ""
	if r.Cost != nil {
		cost = *r.Cost
	}
	return []any{
		r.ID,
		r.IssueDate,
		r.PermitType.Label(),
		r.OccupancyRegDate,
		r.StartDate,
		r.CompletionDate,
		r.CompletionDeadline,
		r.CompletionExtendedTo,
		r.ReportProgress,
		r.LicenseNo,
		r.OriginalLicenseNo,
		r.DesignChanges,
		r.SiteArea,
		r.BuildingArea,
		r.TotalFloorArea,
		r.CoverageRatio,
		r.FloorAreaRatio,
		r.BuildingHeight,
		r.ShelterArea,
		r.OpenSpaceArea,
		r.ConstructionCategory,
		r.StructureType,
		r.Counts.Buildings,
		r.Counts.Blocks,
		r.Counts.FloorsAbove,
		r.Counts.FloorsBelow,
		r.Counts.Units,
		r.Owner,
		r.Designer,
		r.DesignerOffice,
		r.Supervisor,
		r.SupervisorOffice,
		r.Contractor,
		r.ContractorCompany,
		r.Zoning,
		r.Usage,
		cost,
		r.FloorSummary,
		r.LandParcels,
		r.Addresses,
		r.Remarks,
	}
}
