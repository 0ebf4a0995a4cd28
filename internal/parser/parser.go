// Package parser 将各网站的 HTML 详情页解析为扁平的键值资料
// 解析器不会因为格式不符而报错,找不到的区块返回空值
package parser

import (
	"encoding/json"
	"strings"

	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Table 一组重复的子资料,Columns 保留网页中的栏位顺序
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Len 资料笔数
func (t Table) Len() int {
	return len(t.Rows)
}

// Column 取出每一笔的某个栏位
func (t Table) Column(name string) []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row[name]; ok {
			values = append(values, v)
		}
	}
	return values
}

// String 以 JSON 阵列输出,栏位按 Columns 顺序排列
func (t Table) String() string {
	if len(t.Rows) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('{')
		first := true
		for _, col := range t.Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			writeJSONString(&b, col)
			b.WriteByte(':')
			writeJSONString(&b, v)
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

func writeJSONString(b *strings.Builder, s string) {
	enc, err := json.Marshal(s)
	if err != nil {
		b.WriteString(`""`)
		return
	}
	b.Write(enc)
}

func newDocument(content string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// html.Parse 对任意输入都能产生文档树,这里只在读取失败时发生
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

func cleanText(s *goquery.Selection) string {
	return normalize.CleanText(s.Text())
}

func cleanStripped(s *goquery.Selection) string {
	return normalize.CleanText(strippedText(s))
}

// strippedText 去掉每个文字节点两侧空白后直接拼接
func strippedText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}
