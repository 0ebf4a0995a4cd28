package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
)

var (
	buildingsPattern   = regexp.MustCompile(`(\d+)棟`)
	blocksPattern      = regexp.MustCompile(`(\d+)幢`)
	floorsAbovePattern = regexp.MustCompile(`地上(\d+)層`)
	floorsBelowPattern = regexp.MustCompile(`地下(\d+)層`)
	unitsPattern       = regexp.MustCompile(`(\d+)戶`)
	costPattern        = regexp.MustCompile(`\(\$([\d,]+)\)`)
)

// ExtractBuildingCounts 从 "2棟3幢地上12層地下2層5戶" 这类文字中取出五个数量,缺少的为 0
func ExtractBuildingCounts(s string) model.BuildingCounts {
	return model.BuildingCounts{
		Buildings:   firstInt(buildingsPattern, s),
		Blocks:      firstInt(blocksPattern, s),
		FloorsAbove: firstInt(floorsAbovePattern, s),
		FloorsBelow: firstInt(floorsBelowPattern, s),
		Units:       firstInt(unitsPattern, s),
	}
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ExtractCost 取出 "($1,234,567)" 形式的工程造价,找不到时返回 nil
func ExtractCost(s string) *int64 {
	m := costPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return ParseCost(strings.ReplaceAll(m[1], ",", ""))
}

// ParseCost 将数字文字四舍五入为整数,非数字返回 nil
func ParseCost(s string) *int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	r := math.RoundToEven(f)
	// 超出 int64 范围的转换结果未定义
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	v := int64(r)
	return &v
}

// ParseCount 解析 "5棟"、"12層"、"30戶" 或纯数字,失败时为 0
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{"棟", "層", "戶"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
