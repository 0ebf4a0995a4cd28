package parser

import (
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// KeySeparator 多层标题组合成键时使用的分隔符
const KeySeparator = "-"

// Nested 多层标题的键值资料与表格
type Nested struct {
	Fields map[string]string
	Tables map[string]Table
}

var depthSuffix = regexp.MustCompile(`(\d+)$`)

type heading struct {
	sel   *goquery.Selection
	depth int
}

// ParseNested 解析以 div.tableCon 分块、标题 class 为 tit01/tit02... 的详情页
// 每个标题往前找深度递减的祖先标题直到第一层,以 "-" 串成键,值为标题的下一个兄弟节点
func ParseNested(content string) Nested {
	doc := newDocument(content)
	return Nested{
		Fields: extractSections(doc),
		Tables: extractTables(doc),
	}
}

func extractSections(doc *goquery.Document) map[string]string {
	results := map[string]string{}
	licenseSet := false

	doc.Find("div.tableCon").Each(func(_ int, section *goquery.Selection) {
		var headings []heading
		section.Find(`[class^="tit"]`).Each(func(_ int, s *goquery.Selection) {
			headings = append(headings, heading{sel: s, depth: headingDepth(s)})
		})

		leaf := 0
		for i, h := range headings {
			if h.depth < 0 {
				continue
			}
			key := branchKey(headings, i)
			value := ""
			if next := h.sel.Next(); next.Length() > 0 {
				value = cleanStripped(next)
			}
			if existing, ok := results[key]; !ok || existing == "" {
				results[key] = value
			}
			// 第一个区块的前两个值是核发与原领执照字号
			if !licenseSet {
				switch leaf {
				case 0:
					results["核發執照字號"] = value
				case 1:
					results["原領執照字號"] = value
				}
			}
			leaf++
		}
		if leaf > 0 {
			licenseSet = true
		}
	})

	if v, ok := results["號碼"]; ok {
		results["建造執照號碼"] = v
		delete(results, "號碼")
	}
	return results
}

// branchKey 从第 idx 个标题往前走,收集深度严格递减的标题直到深度 1
func branchKey(headings []heading, idx int) string {
	var path []string
	minDepth := math.MaxInt
	for j := idx; j >= 0; j-- {
		h := headings[j]
		if h.depth < 0 || h.depth >= minDepth {
			continue
		}
		minDepth = h.depth
		path = append(path, cleanText(h.sel))
		if h.depth <= 1 {
			break
		}
	}
	slices.Reverse(path)
	return strings.Join(path, KeySeparator)
}

// headingDepth 取第一个 class 的数字后缀,tit01 为 1;没有数字时为 -1
func headingDepth(s *goquery.Selection) int {
	class, _ := s.Attr("class")
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return -1
	}
	m := depthSuffix.FindStringSubmatch(fields[0])
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

func extractTables(doc *goquery.Document) map[string]Table {
	tables := map[string]Table{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, cleanText(th))
		})
		current := Table{Columns: slices.DeleteFunc(slices.Clone(headers), func(h string) bool { return h == "序號" })}

		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			row := map[string]string{}
			tr.Find("td").Each(func(i int, td *goquery.Selection) {
				if i < len(headers) {
					row[headers[i]] = cleanText(td)
				}
			})
			delete(row, "序號")
			if len(row) > 0 {
				current.Rows = append(current.Rows, row)
			}
		})

		if prev := table.Prev(); prev.Length() > 0 {
			tables[cleanText(prev)] = current
			return
		}
		prevOfParent := table.Parent().Prev()
		if prevOfParent.Length() == 0 {
			return
		}
		key := cleanText(prevOfParent)
		if existing, ok := tables[key]; ok {
			tables[key] = mergeTables(existing, current)
			return
		}
		tables[key] = current
	})
	return tables
}

// mergeTables 逐列合并两个表格,栏位取联集,同名栏位以后者为准
func mergeTables(earlier, later Table) Table {
	columns := slices.Clone(earlier.Columns)
	for _, c := range later.Columns {
		if !slices.Contains(columns, c) {
			columns = append(columns, c)
		}
	}
	n := max(len(earlier.Rows), len(later.Rows))
	rows := make([]map[string]string, 0, n)
	for i := range n {
		row := map[string]string{}
		if i < len(earlier.Rows) {
			maps.Copy(row, earlier.Rows[i])
		}
		if i < len(later.Rows) {
			maps.Copy(row, later.Rows[i])
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}
