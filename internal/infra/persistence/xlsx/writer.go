// Package xlsx 将执照资料按执照类别写成 Excel 档案,每个年月一个工作表
package xlsx

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/LouYuanbo1/permitcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

const (
	// defaultSheet 新建活页簿自带的工作表,没有资料时保留
	defaultSheet   = "Sheet1"
	maxColumnWidth = 255
)

// DefaultColumnWidths 各栏位的固定宽度,未列出的栏位 (樓層概要等自由文字) 按最长内容计算
var DefaultColumnWidths = map[string]float64{
	"_id": 10, "發照日期": 15, "執照類別": 10, "使照掛號日期": 15, "開工日期": 15,
	"竣工日期": 15, "竣工期限": 20, "竣工展期至": 20, "申報進度": 20, "核發執照字號": 35,
	"原領執照字號": 35, "變更設計次數": 15, "基地面積": 15, "建築面積": 15, "總樓地板面積": 15,
	"設計建蔽率": 15, "設計容積率": 15, "建築物高度": 15, "地下避難面積": 15, "法定空地面積": 15,
	"建造類別": 10, "構造別": 18, "棟數": 10, "幢數": 10, "地上層數": 10,
	"地下層數": 10, "戶數": 10, "起造人代表人": 20, "設計人": 15, "設計人事務所": 20,
	"監造人": 15, "監造人事務所": 20, "承造人": 20, "承造人營造廠": 20, "土地使用分區": 25,
	"建築物用途": 25, "工程造價": 15,
}

// Writer 缓存资料直到 Save,不可并发使用
type Writer struct {
	site   string
	dir    string
	widths map[string]float64
	sheets map[model.PermitType]map[string][][]any
}

type Option func(*Writer)

// WithColumnWidths 替换固定栏宽表
func WithColumnWidths(widths map[string]float64) Option {
	return func(w *Writer) {
		w.widths = widths
	}
}

// NewWriter 建立输出目录,档案名为 {site}_{建造執照|使用執照}.xlsx
func NewWriter(site, dir string, opts ...Option) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	w := &Writer{
		site:   site,
		dir:    dir,
		widths: DefaultColumnWidths,
		sheets: map[model.PermitType]map[string][][]any{},
	}
	for _, pt := range model.PermitTypes {
		w.sheets[pt] = map[string][][]any{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write 缓存一笔资料;没有发照日期或不属于建造/使用执照的资料会被忽略
func (w *Writer) Write(item entity.PermitItem) {
	if !item.HasDate() {
		return
	}
	sheets, ok := w.sheets[item.Record.PermitType]
	if !ok {
		return
	}
	key := item.SheetKey()
	sheets[key] = append(sheets[key], item.Record.Values())
}

// Stats 每种执照已缓存的笔数
func (w *Writer) Stats() map[model.PermitType]int {
	stats := make(map[model.PermitType]int, len(w.sheets))
	for pt, sheets := range w.sheets {
		for _, rows := range sheets {
			stats[pt] += len(rows)
		}
	}
	return stats
}

// Path 某种执照的输出路径
func (w *Writer) Path(pt model.PermitType) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.xlsx", w.site, pt.Label()))
}

// Save 为两种执照各写一个档案,返回执照类别到路径的对应
func (w *Writer) Save() (map[model.PermitType]string, error) {
	saved := make(map[model.PermitType]string, len(model.PermitTypes))
	for _, pt := range model.PermitTypes {
		path := w.Path(pt)
		if err := w.saveWorkbook(path, w.sheets[pt]); err != nil {
			return saved, fmt.Errorf("保存 %s 失败: %w", path, err)
		}
		saved[pt] = path
	}
	return saved, nil
}

func (w *Writer) saveWorkbook(path string, sheets map[string][][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, name := range slices.Sorted(maps.Keys(sheets)) {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := w.writeSheet(f, name, sheets[name]); err != nil {
			return fmt.Errorf("写入工作表 %s 失败: %w", name, err)
		}
	}

	if len(sheets) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
		f.SetActiveSheet(0)
	}
	return f.SaveAs(path)
}

func (w *Writer) writeSheet(f *excelize.File, name string, rows [][]any) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	// 流式写入要求先设定栏宽再写列
	for i, width := range w.columnWidths(rows) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// columnWidths 固定栏宽优先,否则取标题与内容中最宽的显示宽度 (中文字算两格)
func (w *Writer) columnWidths(rows [][]any) []float64 {
	widths := make([]float64, len(model.Columns))
	for i, col := range model.Columns {
		if fixed, ok := w.widths[col]; ok {
			widths[i] = fixed
			continue
		}
		longest := runewidth.StringWidth(col)
		for _, row := range rows {
			if i < len(row) {
				longest = max(longest, runewidth.StringWidth(fmt.Sprint(row[i])))
			}
		}
		widths[i] = float64(min(longest, maxColumnWidth))
	}
	return widths
}
