// Package refine 将各网站解析后的资料整理为统一的 model.PermitRecord
// 每个函数都是纯函数,第二个返回值为 false 表示这笔资料应丢弃
package refine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
)

// 未提供的栏位使用的占位符
const unavailable = "-"

// UsageSeparator 建筑物用途输出时的分隔符
const UsageSeparator = "、"

// usageSet 建筑物用途去重集合
type usageSet map[string]struct{}

func (u usageSet) add(s, sep string) {
	for _, part := range strings.Split(s, sep) {
		if part = normalize.CleanText(part); part != "" {
			u[part] = struct{}{}
		}
	}
}

// String 排序后以 "、" 连接,输出稳定
func (u usageSet) String() string {
	parts := make([]string, 0, len(u))
	for k := range u {
		parts = append(parts, k)
	}
	slices.Sort(parts)
	return strings.Join(parts, UsageSeparator)
}

// text 取出 JSON 栏位的文字形式
func text(m map[string]any, key string) string {
	return stringify(m[key])
}

func clean(m map[string]any, key string) string {
	return normalize.CleanText(text(m, key))
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		return jsonText(x)
	default:
		return fmt.Sprint(x)
	}
}

func list(m map[string]any, key string) ([]any, bool) {
	v, ok := m[key].([]any)
	return v, ok
}

// jsonText 输出不转义 HTML 字符的 JSON
func jsonText(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// labelList 把子资料组成的标签输出为 JSON 字符串阵列
func labelList(labels []string) string {
	if labels == nil {
		labels = []string{}
	}
	return jsonText(labels)
}

// composeLabel 将一笔子资料组成一个标签,物件按键排序后串接各个值
func composeLabel(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return stringify(v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(stringify(m[k]))
	}
	return b.String()
}

// collectionText 子资料为阵列时组成标签清单,单一文字则原样使用
func collectionText(v any) string {
	items, ok := v.([]any)
	if !ok {
		return stringify(v)
	}
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, composeLabel(it))
	}
	return labelList(labels)
}
