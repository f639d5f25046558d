package dashboard

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// tableMeta captures scan bookkeeping shared by both dashboard operations.
type tableMeta struct {
	ProcessedRows  int  `json:"processed_rows"`
	ProcessedCells int  `json:"processed_cells"`
	MaxCells       int  `json:"max_cells"`
	Truncated      bool `json:"truncated"`
}

// readTable streams the header+data rows of an A1-style range (or defined
// name) into a string table, bounded by maxCells.
func readTable(f *excelize.File, sheet, rangeRef string, maxCells int) ([][]string, string, tableMeta, error) {
	meta := tableMeta{MaxCells: maxCells}

	x1, y1, x2, y2, normalized, err := resolveRange(f, sheet, rangeRef)
	if err != nil {
		return nil, "", meta, err
	}
	colCount := x2 - x1 + 1

	r, err := f.Rows(sheet)
	if err != nil {
		return nil, normalized, meta, err
	}
	defer r.Close()

	var table [][]string
	rowIdx := 0
	for r.Next() {
		rowIdx++
		if rowIdx < y1 {
			continue
		}
		if rowIdx > y2 {
			break
		}
		vals, cerr := r.Columns()
		if cerr != nil {
			return nil, normalized, meta, cerr
		}
		meta.ProcessedCells += minInt(len(vals), colCount)
		if meta.ProcessedCells > maxCells {
			meta.Truncated = true
			break
		}
		row := make([]string, colCount)
		for i := 0; i < colCount; i++ {
			abs := x1 + i - 1
			if abs >= 0 && abs < len(vals) {
				row[i] = vals[abs]
			}
		}
		table = append(table, row)
		if rowIdx > y1 {
			meta.ProcessedRows++
		}
	}
	if err := r.Error(); err != nil {
		return nil, normalized, meta, err
	}
	return table, normalized, meta, nil
}

// resolveRange parses an A1-style or defined-name range relative to a sheet.
// Returns x1,y1,x2,y2 and the normalized textual range without sheet
// qualifier.
func resolveRange(f *excelize.File, sheet, input string) (int, int, int, int, string, error) {
	in := strings.TrimSpace(input)
	if in == "" {
		return 0, 0, 0, 0, "", fmt.Errorf("invalid range: empty")
	}
	if strings.Contains(in, "!") {
		parts := strings.SplitN(in, "!", 2)
		if len(parts) == 2 {
			s := strings.Trim(parts[0], "'")
			if s != "" && !strings.EqualFold(s, sheet) {
				return 0, 0, 0, 0, "", fmt.Errorf("invalid range: sheet mismatch")
			}
			in = parts[1]
		}
	}
	if strings.Contains(in, ":") {
		return normalizeA1(in, input)
	}
	// Named range: find a match scoped to this sheet.
	for _, dn := range f.GetDefinedName() {
		if dn.Name != in {
			continue
		}
		ref := strings.TrimPrefix(dn.RefersTo, "=")
		if strings.Contains(ref, "!") {
			parts := strings.SplitN(ref, "!", 2)
			if len(parts) == 2 {
				s := strings.Trim(parts[0], "'")
				if s != "" && !strings.EqualFold(s, sheet) {
					continue
				}
				ref = parts[1]
			}
		}
		ref = strings.ReplaceAll(ref, "$", "")
		if strings.Contains(ref, ":") {
			if x1, y1, x2, y2, norm, err := normalizeA1(ref, input); err == nil {
				return x1, y1, x2, y2, norm, nil
			}
		}
	}
	return 0, 0, 0, 0, "", fmt.Errorf("invalid range: %s", input)
}

func normalizeA1(ref, original string) (int, int, int, int, string, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, "", fmt.Errorf("invalid range: %s", original)
	}
	x1, y1, err1 := excelize.CellNameToCoordinates(strings.TrimSpace(parts[0]))
	x2, y2, err2 := excelize.CellNameToCoordinates(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, 0, 0, "", fmt.Errorf("invalid range coordinates")
	}
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	l, _ := excelize.CoordinatesToCellName(x1, y1)
	r, _ := excelize.CoordinatesToCellName(x2, y2)
	return x1, y1, x2, y2, l + ":" + r, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
