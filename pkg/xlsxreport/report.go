// Package xlsxreport writes a single-sheet tabular spreadsheet described by a
// YAML template.
package xlsxreport

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Template represents the YAML structure.
type Template struct {
	Sheet       string         `yaml:"sheet"`
	Title       string         `yaml:"title"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines one column.
type ColumnConfig struct {
	FieldName    string  `yaml:"field_name"` // Struct field name or map key
	Header       string  `yaml:"header"`
	Width        float64 `yaml:"width"`
	NumberFormat string  `yaml:"number_format"` // e.g. "#,##0.00"
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Bold      bool   `yaml:"bold"`
	FontColor string `yaml:"font_color"` // Hex color
	FillColor string `yaml:"fill_color"` // Hex color
}

// Footer is an optional closing row, e.g. a total. Value is placed under
// the last column and takes that column's number format.
type Footer struct {
	Label string
	Value interface{}
}

// Parse decodes a YAML template.
func Parse(text string) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal([]byte(text), &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Columns) == 0 {
		return nil, fmt.Errorf("template has no columns")
	}
	if tmpl.Sheet == "" {
		tmpl.Sheet = "Sheet1"
	}
	return &tmpl, nil
}

// Write renders rows into a workbook and writes it to w. rows must be a
// slice of structs, struct pointers or maps keyed by string.
func (t *Template) Write(w io.Writer, rows interface{}, footer *Footer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
		return err
	}

	r := 1
	if t.Title != "" {
		if err := f.SetCellValue(t.Sheet, cell(0, r), t.Title); err != nil {
			return err
		}
		r += 2
	}

	headerStyle, err := t.headerStyle(f)
	if err != nil {
		return err
	}
	for i, c := range t.Columns {
		if err := f.SetCellValue(t.Sheet, cell(i, r), c.Header); err != nil {
			return err
		}
		if c.Width > 0 {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(t.Sheet, col, col, c.Width); err != nil {
				return err
			}
		}
	}
	if headerStyle != 0 {
		if err := f.SetCellStyle(t.Sheet, cell(0, r), cell(len(t.Columns)-1, r), headerStyle); err != nil {
			return err
		}
	}
	r++
	firstRow := r

	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("rows must be a slice, got %T", rows)
	}
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for j, c := range t.Columns {
			if err := f.SetCellValue(t.Sheet, cell(j, r), fieldValue(item, c.FieldName)); err != nil {
				return err
			}
		}
		r++
	}

	if footer != nil {
		last := len(t.Columns) - 1
		if last > 0 {
			if err := f.SetCellValue(t.Sheet, cell(last-1, r), footer.Label); err != nil {
				return err
			}
		}
		if err := f.SetCellValue(t.Sheet, cell(last, r), cellValue(footer.Value)); err != nil {
			return err
		}
		r++
	}

	if r > firstRow {
		if err := t.applyNumberFormats(f, firstRow, r-1); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (t *Template) headerStyle(f *excelize.File) (int, error) {
	s := t.HeaderStyle
	if s == nil {
		return 0, nil
	}
	style := &excelize.Style{Font: &excelize.Font{Bold: s.Bold, Color: strings.TrimPrefix(s.FontColor, "#")}}
	if s.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(s.FillColor, "#")}}
	}
	id, err := f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	return id, nil
}

func (t *Template) applyNumberFormats(f *excelize.File, from, to int) error {
	for i, c := range t.Columns {
		if c.NumberFormat == "" {
			continue
		}
		numFmt := c.NumberFormat
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return fmt.Errorf("number format of %s: %w", c.FieldName, err)
		}
		if err := f.SetCellStyle(t.Sheet, cell(i, from), cell(i, to), id); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

// fieldValue resolves name against a struct field or map key. Nil pointers
// and missing fields render as empty cells.
func fieldValue(v reflect.Value, name string) interface{} {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	var fv reflect.Value
	switch v.Kind() {
	case reflect.Struct:
		fv = v.FieldByName(name)
	case reflect.Map:
		fv = v.MapIndex(reflect.ValueOf(name))
	}
	if !fv.IsValid() {
		return nil
	}
	for fv.Kind() == reflect.Ptr || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return cellValue(fv.Interface())
}

// cellValue writes decimals as numbers and other fmt.Stringer values as text.
func cellValue(val interface{}) interface{} {
	switch d := val.(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		return d.Decimal.InexactFloat64()
	case fmt.Stringer:
		return d.String()
	}
	return val
}
