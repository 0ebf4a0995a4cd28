package normalize

import (
	"strings"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
)

// 网站资料中常见的杂讯与错字
var noiseReplacer = strings.NewReplacer(
	"　", "",
	"：", "",
	"* * *", "",
	"＊＊＊", "",
	"***", "",
	"年月日", "",
	"（", "(",
	"）", ")",
	"址址", "地址",
	"面績", "面積",
)

// CleanText 去除杂讯字符并修正已知错字,"-" 与空白视为空字符串
func CleanText(s string) string {
	// 替换后可能拼出新的杂讯 (例如 "址址址"),重复到不再变化为止
	for {
		next := strings.TrimSpace(noiseReplacer.Replace(s))
		if next == s {
			break
		}
		s = next
	}
	if s == "-" {
		return ""
	}
	return s
}

// ClassifyPermitType 根据执照字号或类别文字判断执照类别
// 建造类标记优先;含 "變使字" 的字号不算使用执照
func ClassifyPermitType(label string) model.PermitType {
	switch {
	case strings.Contains(label, "造字"), strings.Contains(label, "建字"), strings.Contains(label, "建造"):
		return model.PermitConstruction
	case hasOccupancyMarker(label), strings.Contains(label, "使用執照"), strings.Contains(label, "用字"):
		return model.PermitOccupancy
	default:
		return model.PermitOther
	}
}

func hasOccupancyMarker(label string) bool {
	return strings.Contains(label, "使字") && !strings.Contains(label, "變使字")
}
