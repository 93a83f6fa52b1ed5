package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX renders one sheet per table, header row first.
func WriteXLSX(tables []Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, table := range tables {
		sheet := sheetName(table.Field, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		for col, name := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return nil, err
			}
		}
		for r, row := range table.Rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(sheet, cell, cellValue(value)); err != nil {
					return nil, err
				}
			}
		}
		if len(table.Columns) > 0 {
			last, _ := excelize.ColumnNumberToName(len(table.Columns))
			_ = f.SetColWidth(sheet, "A", last, 18)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case string, bool, float64, int, int64:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// sheetName strips characters Excel rejects and keeps names unique.
func sheetName(field string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, field)
	if name == "" {
		name = fmt.Sprintf("table_%d", index+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		if len(base)+len(suffix) > maxSheetName {
			name = base[:maxSheetName-len(suffix)] + suffix
		} else {
			name = base + suffix
		}
	}
	used[strings.ToLower(name)] = true
	return name
}
