package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vinodismyname/mcpdash/config"
)

// RawRecord is one normalized transactional row. Records are values; once
// loaded they are read-only for the rest of the pipeline.
type RawRecord struct {
	Product string
	Period  Period
	Revenue float64
	Margin  float64
}

// LoaderConfig names the dataset columns. Zero-value fields fall back to the
// defaults in config; only the margin column tends to vary across workbooks.
type LoaderConfig struct {
	ProductColumn string
	YearColumn    string
	QuarterColumn string
	RevenueColumn string
	MarginColumn  string
}

func (c LoaderConfig) withDefaults() LoaderConfig {
	if strings.TrimSpace(c.ProductColumn) == "" {
		c.ProductColumn = config.DefaultProductHeader
	}
	if strings.TrimSpace(c.YearColumn) == "" {
		c.YearColumn = config.DefaultYearHeader
	}
	if strings.TrimSpace(c.QuarterColumn) == "" {
		c.QuarterColumn = config.DefaultQuarterHeader
	}
	if strings.TrimSpace(c.RevenueColumn) == "" {
		c.RevenueColumn = config.DefaultRevenueHeader
	}
	if strings.TrimSpace(c.MarginColumn) == "" {
		c.MarginColumn = config.DefaultMarginHeader
	}
	return c
}

// SchemaError reports a required header missing from the dataset's header
// row. It aborts the whole computation before any aggregation begins.
type SchemaError struct {
	Header string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dashboard: required header %q not found", e.Header)
}

// ErrEmptyDataset indicates the table has a header row but no data rows.
var ErrEmptyDataset = errors.New("dashboard: dataset has no data rows")

// LoadRecords normalizes a header+rows table into RawRecords.
//
// Headers are located by exact match after trimming. Rows whose year or
// quarter cell is blank or unparseable are skipped: a blank key cannot be
// aggregated. Non-numeric revenue/margin cells coerce to 0 so a single dirty
// cell never aborts the batch.
func LoadRecords(table [][]string, cfg LoaderConfig) ([]RawRecord, error) {
	cfg = cfg.withDefaults()
	if len(table) == 0 {
		return nil, &SchemaError{Header: cfg.ProductColumn}
	}

	header := table[0]
	cols := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, seen := cols[h]; !seen {
			cols[h] = i
		}
	}
	required := []string{cfg.ProductColumn, cfg.YearColumn, cfg.QuarterColumn, cfg.RevenueColumn, cfg.MarginColumn}
	idx := make([]int, len(required))
	for i, name := range required {
		j, ok := cols[name]
		if !ok {
			return nil, &SchemaError{Header: name}
		}
		idx[i] = j
	}
	productIdx, yearIdx, quarterIdx, revenueIdx, marginIdx := idx[0], idx[1], idx[2], idx[3], idx[4]

	if len(table) < 2 {
		return nil, ErrEmptyDataset
	}

	records := make([]RawRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		yearCell := strings.TrimSpace(cell(row, yearIdx))
		quarterCell := strings.TrimSpace(cell(row, quarterIdx))
		if yearCell == "" || quarterCell == "" {
			continue
		}
		year, err := strconv.Atoi(yearCell)
		if err != nil {
			continue
		}
		q, ok := parseQuarter(quarterCell)
		if !ok {
			continue
		}
		records = append(records, RawRecord{
			Product: strings.TrimSpace(cell(row, productIdx)),
			Period:  Period{Year: year, Quarter: q},
			Revenue: coerceNumber(cell(row, revenueIdx)),
			Margin:  coerceNumber(cell(row, marginIdx)),
		})
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// coerceNumber parses a numeric cell, stripping common formatting. Anything
// unparseable coerces to 0 rather than failing the row.
func coerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',':
			return -1
		case '$':
			return -1
		default:
			return r
		}
	}, s)
	if strings.HasSuffix(clean, "%") {
		v := strings.TrimSpace(strings.TrimSuffix(clean, "%"))
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f / 100.0
		}
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return f
}
