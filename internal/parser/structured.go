package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// Structured 基本资料与各个子区块
type Structured struct {
	Fields   map[string]string
	Sections map[string]Table
}

// ParseHeaderBlocks 解析以 div.main-header 分块的执照详情页
// 第一块的 td 依序为 标签/值;其余每块以 h2 为区块名称,表头与每列的第一栏 (序号) 舍弃
func ParseHeaderBlocks(content string) Structured {
	result := Structured{
		Fields:   map[string]string{},
		Sections: map[string]Table{},
	}
	headers := newDocument(content).Find("div.main-header")
	if headers.Length() == 0 {
		return result
	}

	readPairs(headers.First(), result.Fields, cleanText)

	headers.Slice(1, goquery.ToEnd).Each(func(_ int, block *goquery.Selection) {
		key := ""
		if h2 := block.Find("h2").First(); h2.Length() > 0 {
			key = cleanText(h2)
		}
		if key == "" {
			return
		}

		var columns []string
		block.Find("thead th").Each(func(i int, th *goquery.Selection) {
			if i == 0 {
				return
			}
			columns = append(columns, cleanText(th))
		})

		table := Table{Columns: columns}
		block.Find("tbody").Each(func(_ int, tbody *goquery.Selection) {
			tbody.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				var cells []string
				tr.Find("td").Each(func(i int, td *goquery.Selection) {
					if i == 0 {
						return
					}
					cells = append(cells, cleanText(td))
				})
				if len(columns) == 0 || len(cells) == 0 {
					return
				}
				row := make(map[string]string, len(columns))
				for i := 0; i < len(columns) && i < len(cells); i++ {
					row[columns[i]] = cells[i]
				}
				table.Rows = append(table.Rows, row)
			})
		})
		result.Sections[key] = table
	})
	return result
}

// ParseProgressBlock 只读取第一块的 标签/值,值去掉每段文字两侧空白
func ParseProgressBlock(content string) map[string]string {
	fields := map[string]string{}
	headers := newDocument(content).Find("div.main-header")
	if headers.Length() == 0 {
		return fields
	}
	readPairs(headers.First(), fields, cleanStripped)
	return fields
}

func readPairs(block *goquery.Selection, into map[string]string, value func(*goquery.Selection) string) {
	cells := block.Find("td")
	for i := 0; i+1 < cells.Length(); i += 2 {
		key := cleanText(cells.Eq(i))
		into[key] = value(cells.Eq(i + 1))
	}
}
