package normalize

import (
	"testing"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBuildingCounts(t *testing.T) {
	assert.Equal(t,
		model.BuildingCounts{Buildings: 2, Blocks: 3, FloorsAbove: 12, FloorsBelow: 2, Units: 5},
		ExtractBuildingCounts("2棟3幢地上12層地下2層5戶"))
	assert.Equal(t, model.BuildingCounts{}, ExtractBuildingCounts(""))
	assert.Equal(t,
		model.BuildingCounts{Buildings: 1, FloorsAbove: 5, Units: 20},
		ExtractBuildingCounts("1棟 地上5層 20戶"))
	assert.Equal(t, model.BuildingCounts{}, ExtractBuildingCounts("棟幢層戶"))
}

func TestExtractCost(t *testing.T) {
	got := ExtractCost("工程造價($1,234,567)")
	require.NotNil(t, got)
	assert.Equal(t, int64(1234567), *got)

	assert.Nil(t, ExtractCost("工程造價 1,234,567"))
	assert.Nil(t, ExtractCost(""))
	assert.Nil(t, ExtractCost("($,,,)"))
	assert.Nil(t, ExtractCost("($99,999,999,999,999,999,999)"))
}

func TestParseCost(t *testing.T) {
	got := ParseCost("12345.6")
	require.NotNil(t, got)
	assert.Equal(t, int64(12346), *got)
	assert.Nil(t, ParseCost("abc"))
	assert.Nil(t, ParseCost(""))
	assert.Nil(t, ParseCost("1e19"))
	assert.Nil(t, ParseCost("-1e19"))

	got = ParseCost("-9.2e18")
	require.NotNil(t, got)
	assert.Equal(t, int64(-9200000000000000000), *got)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 5, ParseCount("5棟"))
	assert.Equal(t, 12, ParseCount("12層"))
	assert.Equal(t, 30, ParseCount("30戶"))
	assert.Equal(t, 7, ParseCount("7"))
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 0, ParseCount("五棟"))
}
