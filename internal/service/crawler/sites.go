package crawler

import "slices"

// Family 使用同一套查询流程的站点系统
type Family string

const (
	FamilyMCGBM         Family = "MCGBM"
	FamilyHsinchuCounty Family = "HsinchuCounty"
	FamilyKaohsiung     Family = "Kaohsiung"
	FamilyNBUPIC        Family = "NBUPIC"
)

// SiteConfig 站点的静态设定,BaseURL 为各请求地址的前缀
type SiteConfig struct {
	Name    string
	Family  Family
	BaseURL string
	Organ   string
}

const nbupicBaseURL = "https://cloudbm.nlma.gov.tw/NBUPIC"

var siteTable = []SiteConfig{
	{Name: "基隆市", Family: FamilyMCGBM, BaseURL: "https://master.klcg.gov.tw/opendata/OpenDataSearchUrl.do?"},
	{Name: "新北市", Family: FamilyMCGBM, BaseURL: "https://building-apply.publicwork.ntpc.gov.tw/opendata/OpenDataSearchUrl.do?"},
	{Name: "桃園市", Family: FamilyMCGBM, BaseURL: "https://building.tycg.gov.tw/opendata/OpenDataSearchUrl.do?"},
	{Name: "新竹市", Family: FamilyMCGBM, BaseURL: "https://build.hccg.gov.tw/opendata/OpenDataSearchUrl.do?"},
	{Name: "台中市", Family: FamilyMCGBM, BaseURL: "https://mcgbm.taichung.gov.tw/opendata/OpenDataSearchUrl.do?"},
	{Name: "竹科", Family: FamilyNBUPIC, BaseURL: nbupicBaseURL, Organ: "B10"},
	{Name: "中科", Family: FamilyNBUPIC, BaseURL: nbupicBaseURL, Organ: "B20"},
	{Name: "南科", Family: FamilyNBUPIC, BaseURL: nbupicBaseURL, Organ: "B30"},
	{Name: "台南市", Family: FamilyNBUPIC, BaseURL: nbupicBaseURL, Organ: "IF0"},
	{Name: "新竹縣", Family: FamilyHsinchuCounty, BaseURL: "https://build.hsinchu.gov.tw/bupic"},
	{Name: "高雄市", Family: FamilyKaohsiung, BaseURL: "https://buildmis.kcg.gov.tw/bupic"},
}

// Sites 返回站点表的副本
func Sites() []SiteConfig {
	return slices.Clone(siteTable)
}

func lookupSite(table []SiteConfig, name string) (SiteConfig, bool) {
	i := slices.IndexFunc(table, func(s SiteConfig) bool { return s.Name == name })
	if i < 0 {
		return SiteConfig{}, false
	}
	return table[i], true
}
