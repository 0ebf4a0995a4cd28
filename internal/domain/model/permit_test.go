package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesFollowColumns(t *testing.T) {
	cost := int64(1200000)
	r := PermitRecord{
		ID:         "a1",
		IssueDate:  "112/03/05",
		PermitType: PermitOccupancy,
		Counts:     BuildingCounts{Buildings: 2, Units: 40},
		Cost:       &cost,
		Remarks:    "[]",
	}
	values := r.Values()
	assert.Len(t, values, len(Columns))
	assert.Equal(t, "a1", values[0])
	assert.Equal(t, "使用執照", values[2])
	assert.Equal(t, 2, values[22])
	assert.Equal(t, 40, values[26])
	assert.Equal(t, int64(1200000), values[36])
	assert.Equal(t, "[]", values[40])

	r.Cost = nil
	assert.Equal(t, "", r.Values()[36])
}

func TestPermitTypeLabel(t *testing.T) {
	assert.Equal(t, "建造執照", PermitConstruction.Label())
	assert.Equal(t, "使用執照", PermitOccupancy.Label())
	assert.Equal(t, "其它", PermitOther.Label())
}

func TestPermitDocMapping(t *testing.T) {
	doc := &PermitDoc{ID: "高雄市:k1"}
	assert.Equal(t, "高雄市:k1", doc.GetID())
	assert.Equal(t, PermitIndex, doc.GetIndex())

	props := doc.GetTypeMapping().Properties
	// 每个 json 字段都有映射
	assert.Len(t, props, 44)
	assert.Contains(t, props, "remarks")
	assert.Contains(t, props, "cost")
}
