package es

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// textSearchFields 全文检索时比对的 text 字段
var textSearchFields = []string{"owner", "designer_office", "contractor_company", "usage", "land_parcels", "addresses", "remarks"}

// PermitFilter 执照索引的查询条件,空字段不参与筛选
type PermitFilter struct {
	Site       string
	PermitType string
	LicenseNo  string
	Text       string
}

// PermitQuery keyword 字段精确筛选,Text 对常用文字字段全文比对,没有条件时匹配全部
func PermitQuery(f PermitFilter) *types.Query {
	var filters []types.Query
	terms := []struct{ field, value string }{
		{"site", f.Site},
		{"permit_type", f.PermitType},
		{"license_no", f.LicenseNo},
	}
	for _, t := range terms {
		if value := strings.TrimSpace(t.value); value != "" {
			filters = append(filters, types.Query{Term: map[string]types.TermQuery{t.field: {Value: value}}})
		}
	}

	var must []types.Query
	if text := strings.TrimSpace(f.Text); text != "" {
		must = append(must, types.Query{MultiMatch: &types.MultiMatchQuery{Query: text, Fields: textSearchFields}})
	}

	if len(filters) == 0 && len(must) == 0 {
		return &types.Query{MatchAll: &types.MatchAllQuery{}}
	}
	return &types.Query{Bool: &types.BoolQuery{Filter: filters, Must: must}}
}
